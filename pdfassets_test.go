package pdfassets

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf/pdftest"
)

func samplePDF(t *testing.T) string {
	t.Helper()
	b := pdftest.New()
	b.AddPage(612, 792).Text(pdftest.Helvetica, 12, 72, 720, pdftest.Black, "Dummy PDF file")
	path, err := b.WriteFile(t.TempDir(), "sample.pdf")
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenPDF(t *testing.T) {
	doc, err := Open(samplePDF(t))
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 1 {
		t.Errorf("Expected 1 page, got %d", doc.PageCount())
	}
}

func TestOpenMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	tests := []struct {
		name string
		open func() (pdf.Document, error)
	}{
		{"Open", func() (pdf.Document, error) { return Open(missing) }},
		{"OpenWithPassword", func() (pdf.Document, error) { return OpenWithPassword(missing, "pw") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := tt.open()
			if err == nil {
				t.Fatal("expected an error for a missing file")
			}
			if doc != nil {
				t.Errorf("expected a nil Document on error, got %T", doc)
			}
		})
	}
}

func TestPageProperties(t *testing.T) {
	doc, err := Open(samplePDF(t), WithUnicodeNorm("NFKC"))
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	if page.GetPageNumber() != 1 {
		t.Errorf("Expected page number 1, got %d", page.GetPageNumber())
	}
	if page.GetWidth() != 612 || page.GetHeight() != 792 {
		t.Errorf("Expected 612x792, got %vx%v", page.GetWidth(), page.GetHeight())
	}

	blocks, err := page.ExtractTextBlocks()
	if err != nil {
		t.Fatalf("Failed to extract text: %v", err)
	}
	var text []string
	for _, b := range blocks {
		for _, l := range b.Lines {
			for _, s := range l.Spans {
				text = append(text, s.Text)
			}
		}
	}
	if !strings.Contains(strings.Join(text, ""), "Dummy PDF file") {
		t.Errorf("Expected text to contain 'Dummy PDF file', got: %q", text)
	}
}

func TestExtract(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourcePDF = samplePDF(t)
	cfg.OutputDir = filepath.Join(t.TempDir(), "assets")
	cfg.ScaleFactor = 1

	var out bytes.Buffer
	md, err := Extract(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if md.TotalPages != 1 || len(md.Pages) != 1 || md.Pages[0].ScaledWidth != 612 {
		t.Errorf("metadata = %+v", md)
	}
	if !strings.Contains(out.String(), "EXTRACTION COMPLETE") {
		t.Errorf("progress output lacks the summary:\n%s", out.String())
	}
}
