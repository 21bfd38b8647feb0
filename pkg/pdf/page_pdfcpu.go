package pdf

import (
	"bytes"
	"fmt"
	"image"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	// decoders for the formats embedded images are extracted as
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/hhrutter/tiff"
)

// PDFCPUPage implements the Page interface using pdfcpu
type PDFCPUPage struct {
	doc        *PDFDocument
	pageNumber int
	pageDict   types.Dict
	resources  types.Dict
	box        BoundingBox // crop box in user space
	rotation   int
	content    []byte

	blocks []TextBlock
}

// NewPDFCPUPage creates a new page of doc
func NewPDFCPUPage(doc *PDFDocument, pageNumber int) (*PDFCPUPage, error) {
	ctx := doc.ctx
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	if pageNumber < 1 || pageNumber > ctx.PageCount {
		return nil, fmt.Errorf("page number %d out of range [1, %d]", pageNumber, ctx.PageCount)
	}

	// Get page dictionary and inherited attributes
	pageDict, _, attrs, err := ctx.PageDict(pageNumber, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict: %w", err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d not found", pageNumber)
	}

	page := &PDFCPUPage{
		doc:        doc,
		pageNumber: pageNumber,
		pageDict:   pageDict,
		// Default US Letter size
		box: BoundingBox{X1: 612, Y1: 792},
	}

	if attrs != nil {
		switch {
		case attrs.CropBox != nil:
			page.box = rectangleBox(attrs.CropBox)
		case attrs.MediaBox != nil:
			page.box = rectangleBox(attrs.MediaBox)
		}
		page.rotation = attrs.Rotate
		page.resources = attrs.Resources
	}
	if page.box.IsEmpty() {
		page.box = BoundingBox{X1: 612, Y1: 792}
	}
	page.rotation = ((page.rotation % 360) + 360) % 360
	if page.rotation%90 != 0 {
		page.rotation = 0
	}
	if page.resources == nil {
		page.resources = resolveDict(ctx, pageDict["Resources"])
	}

	if err := page.extractContent(); err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	return page, nil
}

func rectangleBox(r *types.Rectangle) BoundingBox {
	return BoundingBox{
		X0: min(r.LL.X, r.UR.X),
		Y0: min(r.LL.Y, r.UR.Y),
		X1: max(r.LL.X, r.UR.X),
		Y1: max(r.LL.Y, r.UR.Y),
	}
}

// extractContent decodes and joins the page content streams
func (p *PDFCPUPage) extractContent() error {
	contents := p.pageDict["Contents"]
	if contents == nil {
		return nil // No content
	}

	ctx := p.doc.ctx
	var streams [][]byte

	if arr := resolveArray(ctx, contents); arr != nil {
		for i, item := range arr {
			sd := resolveStream(ctx, item)
			if sd == nil {
				continue
			}
			decoded, err := decodedContent(sd)
			if err != nil {
				return fmt.Errorf("failed to decode stream %d: %w", i, err)
			}
			streams = append(streams, decoded)
		}
	} else if sd := resolveStream(ctx, contents); sd != nil {
		decoded, err := decodedContent(sd)
		if err != nil {
			return fmt.Errorf("failed to decode stream: %w", err)
		}
		streams = append(streams, decoded)
	}

	p.content = bytes.Join(streams, []byte{'\n'})
	return nil
}

// GetPageNumber returns the page number (1-based)
func (p *PDFCPUPage) GetPageNumber() int {
	return p.pageNumber
}

// GetWidth returns the page width
func (p *PDFCPUPage) GetWidth() float64 {
	if p.rotation == 90 || p.rotation == 270 {
		return p.box.Height()
	}
	return p.box.Width()
}

// GetHeight returns the page height
func (p *PDFCPUPage) GetHeight() float64 {
	if p.rotation == 90 || p.rotation == 270 {
		return p.box.Width()
	}
	return p.box.Height()
}

// GetRotation returns the page rotation in degrees
func (p *PDFCPUPage) GetRotation() int {
	return p.rotation
}

// GetBBox returns the page bounding box
func (p *PDFCPUPage) GetBBox() BoundingBox {
	return p.box
}

// PageMatrix maps user space to the rotated page with a top-left origin
func (p *PDFCPUPage) PageMatrix() Matrix {
	return pageMatrix(p.box, p.rotation)
}

func pageMatrix(box BoundingBox, rotation int) Matrix {
	switch rotation {
	case 90:
		return Matrix{A: 0, B: 1, C: 1, D: 0, E: -box.Y0, F: -box.X0}
	case 180:
		return Matrix{A: -1, B: 0, C: 0, D: 1, E: box.X1, F: -box.Y0}
	case 270:
		return Matrix{A: 0, B: -1, C: -1, D: 0, E: box.Y1, F: box.X1}
	default:
		return Matrix{A: 1, B: 0, C: 0, D: -1, E: -box.X0, F: box.Y1}
	}
}

// Interpret runs the page content stream through dev
func (p *PDFCPUPage) Interpret(dev Device, scale float64) error {
	if len(p.content) == 0 {
		return nil
	}
	ctm := p.PageMatrix().Multiply(ScaleMatrix(scale, scale))
	parser := NewContentStreamParser(p.doc.ctx, p.resources, dev, ctm)
	if err := parser.Parse(p.content); err != nil {
		return fmt.Errorf("page %d: %w", p.pageNumber, err)
	}
	return nil
}

// ExtractTextBlocks returns the page text layout. The result is cached.
func (p *PDFCPUPage) ExtractTextBlocks() ([]TextBlock, error) {
	if p.blocks != nil {
		return p.blocks, nil
	}

	var blocks []TextBlock
	if p.doc.text != nil {
		var err error
		blocks, err = p.doc.text.PageBlocks(p.pageNumber, p.PageMatrix())
		if err != nil {
			return nil, err
		}
	} else {
		dev := NewTextDevice(p.doc.config.unicodeNorm)
		if err := p.Interpret(dev, 1); err != nil {
			return nil, err
		}
		blocks = dev.Blocks()
	}

	if blocks == nil {
		blocks = []TextBlock{}
	}
	p.blocks = blocks
	return blocks, nil
}

// DecodeImage decodes an image XObject to pixels
func (p *PDFCPUPage) DecodeImage(ref ImageRef) (image.Image, error) {
	extracted, err := p.doc.ExtractImage(ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(extracted.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image %d: %w", extracted.Ext, ref.ObjNr, err)
	}
	return img, nil
}
