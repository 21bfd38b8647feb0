package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// fakePage is a blank page carrying prepared spans
type fakePage struct {
	number        int
	width, height float64
	spans         []pdf.TextSpan
	textErr       error
}

func (p *fakePage) GetPageNumber() int { return p.number }
func (p *fakePage) GetWidth() float64  { return p.width }
func (p *fakePage) GetHeight() float64 { return p.height }
func (p *fakePage) GetRotation() int   { return 0 }

func (p *fakePage) GetBBox() pdf.BoundingBox {
	return pdf.BoundingBox{X1: p.width, Y1: p.height}
}

func (p *fakePage) PageMatrix() pdf.Matrix {
	return pdf.Matrix{A: 1, D: -1, F: p.height}
}

func (p *fakePage) Interpret(pdf.Device, float64) error { return nil }

// ExtractTextBlocks puts the spans in one text block, preceded by an image block
func (p *fakePage) ExtractTextBlocks() ([]pdf.TextBlock, error) {
	if p.textErr != nil {
		return nil, p.textErr
	}
	return []pdf.TextBlock{
		{Type: pdf.BlockTypeImage, BBox: pdf.BoundingBox{X1: 10, Y1: 10}},
		{Type: pdf.BlockTypeText, Lines: []pdf.TextLine{{Spans: p.spans}}},
	}, nil
}

func (p *fakePage) DecodeImage(pdf.ImageRef) (image.Image, error) {
	return nil, errors.New("no images")
}

// fakeDoc serves fake pages and a fixed list of images per page
type fakeDoc struct {
	pages   []*fakePage
	images  map[int][]fakeImage
	refsErr map[int]error
}

type fakeImage struct {
	ref       pdf.ImageRef
	extracted *pdf.ExtractedImage
	err       error
}

func newFakeDoc(pages int) *fakeDoc {
	d := &fakeDoc{images: make(map[int][]fakeImage)}
	for i := 0; i < pages; i++ {
		d.pages = append(d.pages, &fakePage{number: i + 1, width: 100, height: 50})
	}
	return d
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) GetPage(index int) (pdf.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, errors.New("out of range")
	}
	return d.pages[index], nil
}

func (d *fakeDoc) ImageRefs(index int) ([]pdf.ImageRef, error) {
	if err := d.refsErr[index]; err != nil {
		return nil, err
	}
	var refs []pdf.ImageRef
	for _, img := range d.images[index] {
		refs = append(refs, img.ref)
	}
	return refs, nil
}

func (d *fakeDoc) ExtractImage(ref pdf.ImageRef) (*pdf.ExtractedImage, error) {
	for _, imgs := range d.images {
		for _, img := range imgs {
			if img.ref.ObjNr == ref.ObjNr {
				return img.extracted, img.err
			}
		}
	}
	return nil, errors.New("no such image")
}

func (d *fakeDoc) addImage(page, objNr int, extracted *pdf.ExtractedImage, err error) {
	d.images[page-1] = append(d.images[page-1], fakeImage{
		ref:       pdf.ImageRef{ObjNr: objNr, Name: "Im", PageNr: page},
		extracted: extracted,
		err:       err,
	})
}

func pngImage(t *testing.T, w, h int) *pdf.ExtractedImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &pdf.ExtractedImage{Data: buf.Bytes(), Ext: "png", Width: w, Height: h}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	if err := EnsureDirectories(cfg); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func span(text, font string, size float64, color int) pdf.TextSpan {
	return pdf.TextSpan{Text: text, Font: font, Size: size, Color: color}
}
