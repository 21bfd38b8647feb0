package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// fakePage paints through draw instead of a content stream
type fakePage struct {
	width, height float64
	draw          func(dev pdf.Device, ctm pdf.Matrix)

	img       image.Image
	decodeErr error
	decodes   int
}

func (p *fakePage) GetPageNumber() int       { return 1 }
func (p *fakePage) GetWidth() float64        { return p.width }
func (p *fakePage) GetHeight() float64       { return p.height }
func (p *fakePage) GetRotation() int         { return 0 }
func (p *fakePage) GetBBox() pdf.BoundingBox { return pdf.BoundingBox{X1: p.width, Y1: p.height} }

func (p *fakePage) PageMatrix() pdf.Matrix {
	return pdf.Matrix{A: 1, D: -1, F: p.height}
}

func (p *fakePage) Interpret(dev pdf.Device, scale float64) error {
	if p.draw != nil {
		p.draw(dev, p.PageMatrix().Multiply(pdf.ScaleMatrix(scale, scale)))
	}
	return nil
}

func (p *fakePage) ExtractTextBlocks() ([]pdf.TextBlock, error) { return nil, nil }

func (p *fakePage) DecodeImage(pdf.ImageRef) (image.Image, error) {
	p.decodes++
	return p.img, p.decodeErr
}

func rect(x, y, w, h float64) pdf.Path {
	return pdf.Path{
		{Op: pdf.PathMoveTo, Points: []pdf.Point{{X: x, Y: y}}},
		{Op: pdf.PathLineTo, Points: []pdf.Point{{X: x + w, Y: y}}},
		{Op: pdf.PathLineTo, Points: []pdf.Point{{X: x + w, Y: y + h}}},
		{Op: pdf.PathLineTo, Points: []pdf.Point{{X: x, Y: y + h}}},
		{Op: pdf.PathClose},
	}
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func TestRenderPageSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		scale         float64
		wantW, wantH  int
	}{
		{"Letter at 2x", 612, 792, 2, 1224, 1584},
		{"Fractional size rounds", 100.4, 50.6, 1, 100, 51},
		{"Half scale", 200, 100, 0.5, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RenderPage(&fakePage{width: tt.width, height: tt.height}, tt.scale)
			if err != nil {
				t.Fatalf("RenderPage() error = %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if got := img.RGBAAt(0, 0); got != white {
				t.Errorf("background = %v, want white", got)
			}
		})
	}
}

func TestRenderPageInvalid(t *testing.T) {
	if _, err := RenderPage(&fakePage{width: 100, height: 100}, 0); err == nil {
		t.Error("scale 0 should fail")
	}
	if _, err := RenderPage(&fakePage{width: 0, height: 100}, 2); err == nil {
		t.Error("an empty page should fail")
	}
}

func TestFillPath(t *testing.T) {
	page := &fakePage{width: 100, height: 50, draw: func(dev pdf.Device, ctm pdf.Matrix) {
		// user space (10, 10)-(40, 20) is device (20, 60)-(80, 80) at scale 2
		dev.FillPath(rect(10, 10, 30, 10), ctm, pdf.Color{R: 1}, false)
		// entirely off the page
		dev.FillPath(rect(500, 500, 10, 10), ctm, pdf.Color{B: 1}, false)
	}}
	img, err := RenderPage(page, 2)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{50, 70, red},
		{21, 61, red},
		{78, 78, red},
		{10, 70, white},
		{50, 50, white},
		{50, 90, white},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestStrokePath(t *testing.T) {
	page := &fakePage{width: 100, height: 100, draw: func(dev pdf.Device, ctm pdf.Matrix) {
		line := pdf.Path{
			{Op: pdf.PathMoveTo, Points: []pdf.Point{{X: 10, Y: 50}}},
			{Op: pdf.PathLineTo, Points: []pdf.Point{{X: 90, Y: 50}}},
		}
		dev.StrokePath(line, ctm, pdf.Color{R: 1}, 4)
	}}
	img, err := RenderPage(page, 1)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if got := img.RGBAAt(50, 50); got != red {
		t.Errorf("pixel on the line = %v, want red", got)
	}
	if got := img.RGBAAt(50, 40); got != white {
		t.Errorf("pixel off the line = %v, want white", got)
	}
}

func countNonWhite(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != white {
				n++
			}
		}
	}
	return n
}

func TestShowGlyph(t *testing.T) {
	glyph := func(ctm pdf.Matrix, mode int) pdf.Glyph {
		return pdf.Glyph{
			Text:       "H",
			FontName:   "Helvetica",
			Trm:        pdf.Matrix{A: 40, D: 40, E: 20, F: 20}.Multiply(ctm),
			Width:      0.72,
			RenderMode: mode,
		}
	}

	tests := []struct {
		name    string
		mode    int
		painted bool
	}{
		{"Fill", 0, true},
		{"Invisible", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{width: 100, height: 100, draw: func(dev pdf.Device, ctm pdf.Matrix) {
				dev.ShowGlyph(glyph(ctm, tt.mode))
			}}
			img, err := RenderPage(page, 1)
			if err != nil {
				t.Fatalf("RenderPage() error = %v", err)
			}
			// baseline at device y=80, cap height about 0.7 em above it
			n := countNonWhite(img, image.Rect(15, 45, 55, 85))
			if tt.painted && n < 50 {
				t.Errorf("glyph painted %d pixels, expected an H", n)
			}
			if !tt.painted && n != 0 {
				t.Errorf("invisible glyph painted %d pixels", n)
			}
			if outside := countNonWhite(img, image.Rect(60, 0, 100, 100)); outside != 0 {
				t.Errorf("%d pixels painted right of the glyph box", outside)
			}
		})
	}
}

func TestDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, blue)
		}
	}

	page := &fakePage{width: 100, height: 100, img: src, draw: func(dev pdf.Device, ctm pdf.Matrix) {
		// unit square scaled to 40x40 at the bottom left of the page
		placed := pdf.Matrix{A: 40, D: 40}.Multiply(ctm)
		dev.DrawImage(pdf.ImageRef{ObjNr: 7}, placed)
		dev.DrawImage(pdf.ImageRef{ObjNr: 7}, placed)
	}}
	img, err := RenderPage(page, 1)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	// bilinear sampling may be off by a rounding step
	if got := img.RGBAAt(20, 80); got.B < 250 || got.R > 5 || got.G > 5 {
		t.Errorf("pixel inside the image = %v, want blue", got)
	}
	if got := img.RGBAAt(20, 40); got != white {
		t.Errorf("pixel above the image = %v, want white", got)
	}
	if page.decodes != 1 {
		t.Errorf("decoded %d times, want 1", page.decodes)
	}
}

func TestDrawImageDecodeFailure(t *testing.T) {
	page := &fakePage{width: 50, height: 50, decodeErr: errors.New("bad image"), draw: func(dev pdf.Device, ctm pdf.Matrix) {
		for i := 0; i < 3; i++ {
			dev.DrawImage(pdf.ImageRef{ObjNr: 3}, pdf.Matrix{A: 50, D: 50}.Multiply(ctm))
		}
	}}
	img, err := RenderPage(page, 1)
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if n := countNonWhite(img, img.Bounds()); n != 0 {
		t.Errorf("failed image painted %d pixels", n)
	}
	if page.decodes != 1 {
		t.Errorf("decoded %d times, want 1", page.decodes)
	}
}

func TestCompressionLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    png.CompressionLevel
		wantErr bool
	}{
		{"", png.DefaultCompression, false},
		{CompressionDefault, png.DefaultCompression, false},
		{CompressionSpeed, png.BestSpeed, false},
		{CompressionBest, png.BestCompression, false},
		{CompressionNone, png.NoCompression, false},
		{"extreme", 0, true},
	}
	for _, tt := range tests {
		t.Run("level="+tt.name, func(t *testing.T) {
			got, err := CompressionLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CompressionLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CompressionLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, red)
	path := filepath.Join(t.TempDir(), "page-01.png")

	// writing twice replaces the file
	for i := 0; i < 2; i++ {
		if err := WritePNG(path, img, png.BestSpeed); err != nil {
			t.Fatalf("WritePNG() error = %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	r, _, _, _ := decoded.At(1, 1).RGBA()
	if r>>8 != 255 {
		t.Errorf("pixel (1, 1) red = %d, want 255", r>>8)
	}

	if err := WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), img, png.BestSpeed); err == nil {
		t.Error("WritePNG() into a missing directory should fail")
	}
}
