package pdf

import (
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// BoundingBox represents a rectangular area with coordinates.
// Page-space boxes use a top-left origin with y growing downwards.
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// IsEmpty reports whether the box has no area
func (b BoundingBox) IsEmpty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0
}

// Union returns the smallest box containing b and other. An empty b is ignored.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if b == (BoundingBox{}) {
		return other
	}
	return BoundingBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Array returns the box as [x0, y0, x1, y1]
func (b BoundingBox) Array() [4]float64 {
	return [4]float64{b.X0, b.Y0, b.X1, b.Y1}
}

// Color is an RGB color with components in [0, 1]
type Color struct {
	R, G, B float64
}

// Packed returns the color as a 24-bit integer r<<16 | g<<8 | b
func (c Color) Packed() int {
	return int(channel(c.R))<<16 | int(channel(c.G))<<8 | int(channel(c.B))
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Span flags, bit-compatible with the flags reported by MuPDF-based tools
const (
	FlagSuperscript = 1 << 0
	FlagItalic      = 1 << 1
	FlagSerif       = 1 << 2
	FlagMonospace   = 1 << 3
	FlagBold        = 1 << 4
)

// Block types
const (
	BlockTypeText  = 0
	BlockTypeImage = 1
)

// TextSpan is a run of text sharing font, size, color and flags
type TextSpan struct {
	Text  string
	BBox  BoundingBox
	Font  string
	Size  float64
	Color int
	Flags int
}

// TextLine is a sequence of spans sharing a baseline
type TextLine struct {
	BBox  BoundingBox
	Spans []TextSpan
}

// TextBlock groups lines into a paragraph-like unit. Image blocks carry no lines.
type TextBlock struct {
	Type  int
	BBox  BoundingBox
	Lines []TextLine
}

// Spans returns all spans of all text blocks in reading order
func Spans(blocks []TextBlock) []TextSpan {
	var spans []TextSpan
	for _, b := range blocks {
		if b.Type != BlockTypeText {
			continue
		}
		for _, l := range b.Lines {
			spans = append(spans, l.Spans...)
		}
	}
	return spans
}

// ImageRef identifies an image XObject used by a page
type ImageRef struct {
	// ObjNr is the object number of the image stream (the xref)
	ObjNr int
	// Name is the resource name the image was found under
	Name string
	// PageNr is the 1-based page the image was enumerated on
	PageNr int

	ref types.IndirectRef
}

// ExtractedImage holds the native bytes of an embedded image
type ExtractedImage struct {
	Data []byte
	// Ext is the file extension matching Data, "jpeg", "png", "tif" or "jpx"
	Ext    string
	Width  int
	Height int
}
