package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfassets-golang/pkg/render"
)

func main() {
	scale := flag.Float64("scale", 2, "Page render scale")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: benchmark [-scale 2] <pdf-file>")
		os.Exit(1)
	}
	pdfPath := flag.Arg(0)

	// Warm-up run
	doc, err := pdf.Open(pdfPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	doc.Close()

	start := time.Now()
	doc, err = pdf.Open(pdfPath)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	openTime := time.Since(start)
	defer doc.Close()

	fmt.Printf("=== PDF Assets Benchmark ===\n")
	fmt.Printf("File: %s\n", pdfPath)
	fmt.Printf("Pages: %d\n", doc.PageCount())
	fmt.Printf("Open time: %v\n", openTime)

	// Page rendering
	var pixels int
	start = time.Now()
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			continue
		}
		img, err := render.RenderPage(page, *scale)
		if err != nil {
			log.Printf("page %d: %v", i+1, err)
			continue
		}
		pixels += img.Bounds().Dx() * img.Bounds().Dy()
	}
	renderTime := time.Since(start)

	fmt.Printf("\nRender time (scale %v): %v\n", *scale, renderTime)
	fmt.Printf("Pixels/sec: %.0f\n", float64(pixels)/renderTime.Seconds())

	// Embedded images
	var images, imageBytes int
	start = time.Now()
	for i := 0; i < doc.PageCount(); i++ {
		refs, err := doc.ImageRefs(i)
		if err != nil {
			continue
		}
		for _, ref := range refs {
			img, err := doc.ExtractImage(ref)
			if err != nil {
				continue
			}
			images++
			imageBytes += len(img.Data)
		}
	}
	imageTime := time.Since(start)

	fmt.Printf("\nImage extraction time: %v\n", imageTime)
	fmt.Printf("Images: %d (%d bytes)\n", images, imageBytes)

	// Text backends, each on a freshly opened document so no page cache is shared
	fmt.Printf("\n%-12s %12s %8s %10s\n", "Backend", "Time", "Spans", "Chars")
	for _, backend := range []string{pdf.BackendContent, pdf.BackendLedongthuc, pdf.BackendDslipak} {
		elapsed, spans, chars, err := benchmarkText(pdfPath, backend)
		if err != nil {
			fmt.Printf("%-12s failed: %v\n", backend, err)
			continue
		}
		fmt.Printf("%-12s %12v %8d %10d\n", backend, elapsed, spans, chars)
	}
}

func benchmarkText(pdfPath, backend string) (time.Duration, int, int, error) {
	doc, err := pdf.Open(pdfPath, pdf.WithTextBackend(backend))
	if err != nil {
		return 0, 0, 0, err
	}
	defer doc.Close()

	var spans, chars int
	start := time.Now()
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			return 0, 0, 0, err
		}
		blocks, err := page.ExtractTextBlocks()
		if err != nil {
			return 0, 0, 0, fmt.Errorf("page %d: %w", i+1, err)
		}
		for _, s := range pdf.Spans(blocks) {
			spans++
			chars += len([]rune(s.Text))
		}
	}
	return time.Since(start), spans, chars, nil
}
