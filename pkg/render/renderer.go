// Package render rasterizes PDF pages to images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// ImageDecoder decodes the image XObjects a page paints
type ImageDecoder interface {
	DecodeImage(ref pdf.ImageRef) (image.Image, error)
}

// Renderer paints content stream operations onto an opaque RGBA image.
// It implements pdf.Device; the matrices it receives map to pixels.
type Renderer struct {
	img    *image.RGBA
	raster *vector.Rasterizer
	fonts  *fontSet
	images ImageDecoder

	decoded map[int]image.Image
	failed  map[int]bool
}

// NewRenderer creates a renderer with a white width x height canvas.
// images may be nil, in which case image XObjects are skipped.
func NewRenderer(width, height int, images ImageDecoder) *Renderer {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	return &Renderer{
		img:     img,
		raster:  vector.NewRasterizer(0, 0),
		fonts:   defaultFonts(),
		images:  images,
		decoded: make(map[int]image.Image),
		failed:  make(map[int]bool),
	}
}

// Image returns the canvas
func (r *Renderer) Image() *image.RGBA {
	return r.img
}

// RenderPage renders page at scale into a new image of
// round(width*scale) x round(height*scale) pixels
func RenderPage(page pdf.Page, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}
	width := int(math.Round(page.GetWidth() * scale))
	height := int(math.Round(page.GetHeight() * scale))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("page %d has an empty area", page.GetPageNumber())
	}

	r := NewRenderer(width, height, page)
	if err := page.Interpret(r, scale); err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page.GetPageNumber(), err)
	}
	return r.Image(), nil
}

// FillPath fills path with the nonzero winding rule. The rasterizer has no
// even-odd mode, so evenOdd fills are painted nonzero as well.
func (r *Renderer) FillPath(path pdf.Path, ctm pdf.Matrix, c pdf.Color, evenOdd bool) {
	var o outline
	o.addPath(path, ctm)
	r.fill(&o, c)
}

// StrokePath strokes each segment of path as a quad of the device line width
func (r *Renderer) StrokePath(path pdf.Path, ctm pdf.Matrix, c pdf.Color, lineWidth float64) {
	w := lineWidth * ctm.Expansion()
	// zero width lines are drawn one pixel wide
	if w < 1 {
		w = 1
	}
	var o outline
	o.addStroke(path, ctm, w/2)
	r.fill(&o, c)
}

// ShowGlyph fills the glyph outline. Invisible text is skipped.
func (r *Renderer) ShowGlyph(g pdf.Glyph) {
	if g.Invisible() || g.Text == "" {
		return
	}
	var o outline
	r.fonts.addGlyph(&o, g)
	r.fill(&o, g.Color)
}

// DrawImage paints an image XObject. Images that fail to decode are skipped.
func (r *Renderer) DrawImage(ref pdf.ImageRef, ctm pdf.Matrix) {
	if r.images == nil || r.failed[ref.ObjNr] {
		return
	}
	src, ok := r.decoded[ref.ObjNr]
	if !ok {
		var err error
		src, err = r.images.DecodeImage(ref)
		if err != nil || src == nil {
			r.failed[ref.ObjNr] = true
			return
		}
		r.decoded[ref.ObjNr] = src
	}
	drawImage(r.img, src, ctm)
}

// fill rasterizes o into a mask covering only its device bounds
func (r *Renderer) fill(o *outline, c pdf.Color) {
	if o.empty() {
		return
	}
	rect := o.bounds().Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}

	r.raster.Reset(rect.Dx(), rect.Dy())
	o.replay(r.raster, float32(rect.Min.X), float32(rect.Min.Y))
	r.raster.Draw(r.img, rect, image.NewUniform(rgba(c)), image.Point{})
}

func rgba(c pdf.Color) color.RGBA {
	p := c.Packed()
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: 0xff}
}
