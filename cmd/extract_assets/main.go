package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/assets"
	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		pdfPath    = flag.String("pdf", "", "Source PDF (default "+config.DefaultSourcePDF+")")
		outDir     = flag.String("out", "", "Output directory (default "+config.DefaultOutputDir+")")
		scale      = flag.Float64("scale", 0, "Page render scale (default 2)")
		password   = flag.String("password", "", "Password for encrypted PDFs")
		backend    = flag.String("backend", "", "Text backend: content, ledongthuc or dslipak")
		quiet      = flag.Bool("quiet", false, "Print warnings only")
	)
	flag.Parse()

	log.SetFlags(0)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *pdfPath != "" {
		cfg.SourcePDF = *pdfPath
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *scale != 0 {
		cfg.ScaleFactor = *scale
	}
	if *password != "" {
		cfg.Password = *password
	}
	if *backend != "" {
		cfg.TextBackend = *backend
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep := assets.NewReporter(os.Stdout, *quiet)
	if _, err := assets.Run(ctx, cfg, rep); err != nil {
		stop()
		if errors.Cause(err) == assets.ErrSourceNotFound {
			fmt.Printf("Error: PDF not found at '%s'\n", cfg.SourcePDF)
			fmt.Println("Make sure you're running this command from the project root.")
			os.Exit(1)
		}
		log.Fatalf("Extraction failed: %+v", err)
	}
}
