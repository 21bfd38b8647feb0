package pdftest

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func TestBytes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	b := New()
	b.AddPage(200, 100).
		Text(Helvetica, 12, 10, 50, Black, "Hello").
		PlaceImage(FlateImage(img), 0, 0, 10, 10).
		PlaceImage(BrokenJPEG(), 20, 0, 10, 10)
	p := b.AddPage(100, 200)
	p.Rotate = 90
	p.Form(5, 5, func(form *Page) { form.Rect(0, 0, 10, 10, RGB{B: 1}) })

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:8])
	}
	if !bytes.Contains(data, []byte("this is not a jpeg")) {
		t.Error("broken image stream was not stored as given")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		t.Fatalf("ReadContext() error = %v", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("EnsurePageCount() error = %v", err)
	}
	if ctx.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", ctx.PageCount)
	}
}

func TestWriteFile(t *testing.T) {
	b := New()
	b.AddPage(612, 792).Text(Courier, 10, 72, 700, Black, `a (b) \c`)
	path, err := b.WriteFile(t.TempDir(), "doc.pdf")
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if path == "" {
		t.Error("WriteFile() returned an empty path")
	}
}
