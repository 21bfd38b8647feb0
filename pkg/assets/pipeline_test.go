package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf/pdftest"
)

func portfolioPDF(t *testing.T) string {
	t.Helper()
	photo := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for i := range photo.Pix {
		photo.Pix[i] = 0x80
	}
	jpeg, err := pdftest.JPEGImage(photo)
	if err != nil {
		t.Fatal(err)
	}
	logo := image.NewRGBA(image.Rect(0, 0, 4, 4))
	logo.Set(1, 1, color.RGBA{G: 255, A: 255})

	b := pdftest.New()
	b.AddPage(200, 100).
		Text(pdftest.HelveticaBold, 18, 10, 70, pdftest.RGB{R: 1}, "Portfolio").
		Text(pdftest.TimesItalic, 10, 10, 40, pdftest.Black, "Selected work").
		PlaceImage(jpeg, 120, 10, 60, 40)
	b.AddPage(200, 100).
		PlaceImage(pdftest.BrokenJPEG(), 0, 0, 20, 20).
		PlaceImage(pdftest.FlateImage(logo), 100, 0, 40, 40).
		Text(pdftest.Courier, 9, 10, 80, pdftest.RGB{B: 1}, "fmt.Println")

	path, err := b.WriteFile(t.TempDir(), "portfolio.pdf")
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func runConfig(t *testing.T, source string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SourcePDF = source
	cfg.OutputDir = filepath.Join(t.TempDir(), "public", "assets", "portfolio")
	return cfg
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRun(t *testing.T) {
	cfg := runConfig(t, portfolioPDF(t))
	var out bytes.Buffer
	md, err := Run(context.Background(), cfg, NewReporter(&out, false))
	if err != nil {
		t.Fatalf("Run() error = %v\n%s", err, out.String())
	}

	if md.TotalPages != 2 || md.ScaleFactor != 2 || md.SourcePDF != cfg.SourcePDF {
		t.Errorf("metadata header = %d pages, scale %v, source %q", md.TotalPages, md.ScaleFactor, md.SourcePDF)
	}
	if diff := cmp.Diff([]string{"page-01.png", "page-02.png"}, listDir(t, cfg.PagesDir())); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	if md.Pages[0].ScaledWidth != 400 || md.Pages[0].ScaledHeight != 200 {
		t.Errorf("page 1 scaled to %dx%d, want 400x200", md.Pages[0].ScaledWidth, md.Pages[0].ScaledHeight)
	}

	// the broken JPEG yields a warning and no record
	if len(md.Images) != 2 {
		t.Fatalf("expected 2 image records, got %+v", md.Images)
	}
	if first := md.Images[0]; first.Filename != "img-001-page1.jpeg" || first.Width != 12 || first.Height != 8 {
		t.Errorf("first image = %+v", first)
	}
	if last := md.Images[1]; !strings.HasSuffix(last.Filename, "-page2.png") || last.Width != 4 || last.Page != 2 {
		t.Errorf("second image = %+v", last)
	}
	if !strings.Contains(out.String(), "Warning: Could not extract image") {
		t.Errorf("output lacks a warning for the broken image:\n%s", out.String())
	}

	if diff := cmp.Diff([]string{"Helvetica-Bold", "Times-Italic", "Courier"}, md.Fonts.Names()); diff != "" {
		t.Errorf("fonts mismatch (-want +got):\n%s", diff)
	}
	wantMapping := FontMapping{
		{Font: "Helvetica-Bold", Suggested: FontDMSans},
		{Font: "Times-Italic", Suggested: FontPlayfairDisplay},
		{Font: "Courier", Suggested: FontJetBrainsMono},
	}
	if diff := cmp.Diff(wantMapping, md.FontMapping); diff != "" {
		t.Errorf("font mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"#ff0000", "#0000ff"}, md.Colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}

	for _, line := range []string{
		"Portfolio PDF Asset Extraction",
		"✓ PDF opened: 2 pages",
		"  Page 1/2: page-01.png (400x200)",
		"EXTRACTION COMPLETE",
		"✓ Done!",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output lacks %q", line)
		}
	}
}

func TestRunMetadataShape(t *testing.T) {
	cfg := runConfig(t, portfolioPDF(t))
	if _, err := Run(context.Background(), cfg, NewReporter(&bytes.Buffer{}, true)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(cfg.MetadataPath())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("{\n  \"source_pdf\"")) {
		t.Errorf("metadata is not indented by two spaces:\n%s", data)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	var keys []string
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{"colors", "font_mapping", "fonts", "images", "pages", "scale_factor", "source_pdf", "total_pages"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("metadata keys mismatch (-want +got):\n%s", diff)
	}

	var scale float64
	if err := json.Unmarshal(doc["scale_factor"], &scale); err != nil || scale != 2.0 {
		t.Errorf("scale_factor = %s, want 2", doc["scale_factor"])
	}

	md, err := ReadMetadata(cfg.MetadataPath())
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	if len(md.Pages) != 2 || md.Fonts.Len() != 3 || len(md.FontMapping) != 3 {
		t.Errorf("read back %d pages, %d fonts, %d mappings", len(md.Pages), md.Fonts.Len(), len(md.FontMapping))
	}
}

func TestRunIdempotent(t *testing.T) {
	source := portfolioPDF(t)

	var outputs [2]config.Config
	for i := range outputs {
		outputs[i] = runConfig(t, source)
		if _, err := Run(context.Background(), outputs[i], NewReporter(&bytes.Buffer{}, true)); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	for _, dir := range []func(config.Config) string{config.Config.PagesDir, config.Config.ImagesDir} {
		if diff := cmp.Diff(listDir(t, dir(outputs[0])), listDir(t, dir(outputs[1]))); diff != "" {
			t.Errorf("file names differ between runs (-first +second):\n%s", diff)
		}
	}

	first, err := os.ReadFile(outputs[0].MetadataPath())
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(outputs[1].MetadataPath())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("metadata differs between runs")
	}
}

func TestRunRepeatedIntoSameDirectory(t *testing.T) {
	cfg := runConfig(t, portfolioPDF(t))
	for i := 0; i < 2; i++ {
		if _, err := Run(context.Background(), cfg, NewReporter(&bytes.Buffer{}, true)); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	if n := len(listDir(t, cfg.PagesDir())); n != 2 {
		t.Errorf("pages directory holds %d files after two runs, want 2", n)
	}
}

func TestRunMissingSource(t *testing.T) {
	cfg := runConfig(t, filepath.Join(t.TempDir(), "portfolio.pdf"))
	_, err := Run(context.Background(), cfg, NewReporter(&bytes.Buffer{}, true))
	if errors.Cause(err) != ErrSourceNotFound {
		t.Fatalf("Run() error = %v, want ErrSourceNotFound", err)
	}
	if !strings.Contains(err.Error(), cfg.SourcePDF) {
		t.Errorf("error %q should name the missing file", err)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Errorf("output directory should not be created, stat error = %v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := runConfig(t, portfolioPDF(t))
	cfg.ScaleFactor = -1
	if _, err := Run(context.Background(), cfg, NewReporter(&bytes.Buffer{}, true)); err == nil {
		t.Error("Run() should reject a negative scale")
	}
}
