package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-runewidth"

	"github.com/pyhub-apps/pdfassets-golang/pkg/assets"
	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

func main() {
	var (
		pdfPath  = flag.String("pdf", config.DefaultSourcePDF, "Path to PDF file")
		library  = flag.String("lib", pdf.BackendContent, "Text backend to use (content, ledongthuc, dslipak)")
		password = flag.String("password", "", "Password for encrypted PDFs")
		pageNum  = flag.Int("page", 0, "Show the spans of this page (1-based, 0 for none)")
		maxSpans = flag.Int("spans", 10, "Number of spans to show with -page")
	)
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := []pdf.Option{pdf.WithTextBackend(*library)}
	if *password != "" {
		opts = append(opts, pdf.WithPassword(*password))
	}
	doc, err := pdf.Open(*pdfPath, opts...)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	fmt.Printf("Using backend: %s\n", *library)
	fmt.Printf("Pages: %d\n\n", doc.PageCount())

	if *pageNum > 0 {
		showSpans(doc, *pageNum, *maxSpans)
	}

	fonts, err := assets.DetectFonts(doc)
	if err != nil {
		log.Fatalf("Failed to detect fonts: %v", err)
	}

	names := fonts.Names()
	width := 0
	for _, name := range names {
		width = max(width, runewidth.StringWidth(name))
	}

	fmt.Printf("Fonts (%d):\n", len(names))
	for _, name := range names {
		info, _ := fonts.Get(name)
		fmt.Printf("  %s  %5d spans  sizes %v  → %s\n",
			runewidth.FillRight(name, width), info.Count, info.Sizes, assets.SuggestFont(name))
	}
}

func showSpans(doc pdf.Document, pageNum, maxSpans int) {
	page, err := doc.GetPage(pageNum - 1)
	if err != nil {
		log.Fatalf("Failed to get page: %v", err)
	}
	blocks, err := page.ExtractTextBlocks()
	if err != nil {
		log.Fatalf("Failed to extract text: %v", err)
	}
	spans := pdf.Spans(blocks)

	fmt.Printf("Page %d - %d spans:\n", pageNum, len(spans))
	for i, s := range spans {
		if i >= maxSpans {
			fmt.Println("  ...")
			break
		}
		fmt.Printf("%d. %q - Font: %s, Size: %.2f, Color: %s, Flags: %d\n",
			i+1, s.Text, s.Font, s.Size, assets.HexColor(s.Color), s.Flags)
	}
	fmt.Println()
}
