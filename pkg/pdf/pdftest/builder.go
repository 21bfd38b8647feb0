// Package pdftest builds small PDF files for tests on top of pdfcpu's object model.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Font is one of the standard 14 font names
type Font string

const (
	Helvetica     Font = "Helvetica"
	HelveticaBold Font = "Helvetica-Bold"
	TimesRoman    Font = "Times-Roman"
	TimesItalic   Font = "Times-Italic"
	Courier       Font = "Courier"
)

// RGB is a color with components in [0, 1]
type RGB struct {
	R, G, B float64
}

// Black is the default text color
var Black = RGB{}

// Builder collects pages and writes them as a PDF
type Builder struct {
	pages []*Page
}

// New returns an empty document
func New() *Builder {
	return &Builder{}
}

// Page is a page or form XObject under construction
type Page struct {
	Width, Height float64
	Rotate        int

	content strings.Builder
	fonts   []Font
	xobjs   []*xobject
}

// Image is an image XObject; placing the same Image twice shares one object
type Image struct {
	width, height int
	filter        string
	data          []byte
}

type xobject struct {
	name  string
	image *Image
	form  *Page
}

// AddPage appends a page with a media box of width x height points
func (b *Builder) AddPage(width, height float64) *Page {
	p := &Page{Width: width, Height: height}
	b.pages = append(b.pages, p)
	return p
}

// Raw appends content stream operators
func (p *Page) Raw(ops string) *Page {
	p.content.WriteString(ops)
	p.content.WriteByte('\n')
	return p
}

// Text shows s at (x, y) in font at size with fill color c
func (p *Page) Text(font Font, size, x, y float64, c RGB, s string) *Page {
	return p.Raw(fmt.Sprintf("BT /%s %s Tf %s %s %s rg %s %s Td (%s) Tj ET",
		p.fontName(font), num(size), num(c.R), num(c.G), num(c.B), num(x), num(y), escape(s)))
}

// Rect fills a rectangle
func (p *Page) Rect(x, y, w, h float64, c RGB) *Page {
	return p.Raw(fmt.Sprintf("q %s %s %s rg %s %s %s %s re f Q",
		num(c.R), num(c.G), num(c.B), num(x), num(y), num(w), num(h)))
}

// PlaceImage draws img into the rectangle (x, y, w, h)
func (p *Page) PlaceImage(img *Image, x, y, w, h float64) *Page {
	name := ""
	for _, xo := range p.xobjs {
		if xo.image == img {
			name = xo.name
		}
	}
	if name == "" {
		name = fmt.Sprintf("Im%d", len(p.xobjs)+1)
		p.xobjs = append(p.xobjs, &xobject{name: name, image: img})
	}
	return p.Raw(fmt.Sprintf("q %s 0 0 %s %s %s cm /%s Do Q", num(w), num(h), num(x), num(y), name))
}

// Form adds a form XObject built by fill and draws it translated by (x, y)
func (p *Page) Form(x, y float64, fill func(form *Page)) *Page {
	form := &Page{Width: p.Width, Height: p.Height}
	fill(form)
	name := fmt.Sprintf("Fm%d", len(p.xobjs)+1)
	p.xobjs = append(p.xobjs, &xobject{name: name, form: form})
	return p.Raw(fmt.Sprintf("q 1 0 0 1 %s %s cm /%s Do Q", num(x), num(y), name))
}

func (p *Page) fontName(font Font) string {
	for i, f := range p.fonts {
		if f == font {
			return fmt.Sprintf("F%d", i+1)
		}
	}
	p.fonts = append(p.fonts, font)
	return fmt.Sprintf("F%d", len(p.fonts))
}

// JPEGImage encodes img as a DCTDecode image
func JPEGImage(img image.Image) (*Image, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Image{width: b.Dx(), height: b.Dy(), filter: filter.DCT, data: buf.Bytes()}, nil
}

// FlateImage stores img as 8 bit RGB samples with FlateDecode
func FlateImage(img image.Image) *Image {
	b := img.Bounds()
	raw := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			raw = append(raw, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(raw)
	zw.Close()
	return &Image{width: b.Dx(), height: b.Dy(), filter: filter.Flate, data: buf.Bytes()}
}

// BrokenJPEG is a DCTDecode image whose data is not a JPEG
func BrokenJPEG() *Image {
	return &Image{width: 4, height: 4, filter: filter.DCT, data: []byte("this is not a jpeg")}
}

// Bytes serializes the document with pdfcpu. Streams are stored as given,
// so a broken image stays broken in the output.
func (b *Builder) Bytes() ([]byte, error) {
	// a classic xref table keeps the file readable by every text backend
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	ctx, err := pdfcpu.CreateContextWithXRefTable(conf, types.PaperSize["Letter"])
	if err != nil {
		return nil, err
	}
	pagesRef, err := ctx.Pages()
	if err != nil {
		return nil, err
	}
	pagesDict, err := ctx.DereferenceDict(*pagesRef)
	if err != nil {
		return nil, err
	}

	w := &writer{
		xref:   ctx.XRefTable,
		fonts:  make(map[Font]types.IndirectRef),
		images: make(map[*Image]types.IndirectRef),
	}
	for _, p := range b.pages {
		contents, err := w.stream(types.NewDict(), []byte(p.content.String()), "")
		if err != nil {
			return nil, err
		}
		resources, err := w.resources(p)
		if err != nil {
			return nil, err
		}
		page := types.Dict{
			"Type":      types.Name("Page"),
			"Parent":    *pagesRef,
			"MediaBox":  types.NewNumberArray(0, 0, p.Width, p.Height),
			"Resources": resources,
			"Contents":  contents,
		}
		if p.Rotate != 0 {
			page["Rotate"] = types.Integer(p.Rotate)
		}
		ref, err := ctx.IndRefForNewObject(page)
		if err != nil {
			return nil, err
		}
		if err := model.AppendPageTree(ref, 1, pagesDict); err != nil {
			return nil, err
		}
		ctx.PageCount++
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to dir/name and returns the path
func (b *Builder) WriteFile(dir, name string) (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, data, 0o644)
}

type writer struct {
	xref   *model.XRefTable
	fonts  map[Font]types.IndirectRef
	images map[*Image]types.IndirectRef
}

// stream adds a stream object whose data is already encoded with filterName
func (w *writer) stream(d types.Dict, raw []byte, filterName string) (types.IndirectRef, error) {
	n := int64(len(raw))
	d["Length"] = types.Integer(n)
	sd := types.StreamDict{Dict: d, Raw: raw, StreamLength: &n}
	if filterName != "" {
		d["Filter"] = types.Name(filterName)
		sd.FilterPipeline = []types.PDFFilter{{Name: filterName}}
	}
	ref, err := w.xref.IndRefForNewObject(sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

func (w *writer) font(f Font) (types.IndirectRef, error) {
	if ref, ok := w.fonts[f]; ok {
		return ref, nil
	}
	ref, err := w.xref.IndRefForNewObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name(string(f)),
		"Encoding": types.Name("WinAnsiEncoding"),
	})
	if err != nil {
		return types.IndirectRef{}, err
	}
	w.fonts[f] = *ref
	return *ref, nil
}

func (w *writer) image(img *Image) (types.IndirectRef, error) {
	if ref, ok := w.images[img]; ok {
		return ref, nil
	}
	ref, err := w.stream(types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(img.width),
		"Height":           types.Integer(img.height),
		"ColorSpace":       types.Name("DeviceRGB"),
		"BitsPerComponent": types.Integer(8),
	}, img.data, img.filter)
	if err != nil {
		return types.IndirectRef{}, err
	}
	w.images[img] = ref
	return ref, nil
}

func (w *writer) resources(p *Page) (types.Dict, error) {
	res := types.NewDict()
	if len(p.fonts) > 0 {
		fonts := types.NewDict()
		for i, f := range p.fonts {
			ref, err := w.font(f)
			if err != nil {
				return nil, err
			}
			fonts[fmt.Sprintf("F%d", i+1)] = ref
		}
		res["Font"] = fonts
	}
	if len(p.xobjs) > 0 {
		xobjs := types.NewDict()
		for _, xo := range p.xobjs {
			var (
				ref types.IndirectRef
				err error
			)
			if xo.image != nil {
				ref, err = w.image(xo.image)
			} else {
				ref, err = w.form(xo.form)
			}
			if err != nil {
				return nil, err
			}
			xobjs[xo.name] = ref
		}
		res["XObject"] = xobjs
	}
	return res, nil
}

func (w *writer) form(form *Page) (types.IndirectRef, error) {
	res, err := w.resources(form)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return w.stream(types.Dict{
		"Type":      types.Name("XObject"),
		"Subtype":   types.Name("Form"),
		"BBox":      types.NewNumberArray(0, 0, form.Width, form.Height),
		"Resources": res,
	}, []byte(form.content.String()), "")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
