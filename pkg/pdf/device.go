package pdf

import "math"

// Device receives what a content stream paints. All coordinates reach the
// device through the matrices it is handed, which already include the
// initial CTM the parser was created with.
type Device interface {
	// FillPath fills path (user space) transformed by ctm
	FillPath(path Path, ctm Matrix, color Color, evenOdd bool)

	// StrokePath strokes path (user space) transformed by ctm; lineWidth is in user space units
	StrokePath(path Path, ctm Matrix, color Color, lineWidth float64)

	// ShowGlyph is called once per shown character code
	ShowGlyph(g Glyph)

	// DrawImage paints an image XObject into the unit square mapped by ctm
	DrawImage(img ImageRef, ctm Matrix)
}

// Glyph is a single shown character
type Glyph struct {
	// Text is the Unicode text of the character code, possibly more than one rune
	Text string

	// Font is nil when text is shown before any Tf
	Font     *FontInfo
	FontName string
	Flags    int

	// Trm maps glyph em units to device space; the glyph box spans
	// x in [0, Width] and y in [Font.Descent, Font.Ascent]
	Trm   Matrix
	Width float64

	Color      Color
	RenderMode int
}

// Size returns the effective font size in device units, measured along the glyph's vertical axis
func (g Glyph) Size() float64 {
	return math.Hypot(g.Trm.C, g.Trm.D)
}

// Ascent returns the font ascent in em units, or a default
func (g Glyph) Ascent() float64 {
	if g.Font == nil {
		return 0.8
	}
	return g.Font.Ascent
}

// Descent returns the font descent in em units, or a default
func (g Glyph) Descent() float64 {
	if g.Font == nil {
		return -0.2
	}
	return g.Font.Descent
}

// BBox returns the device space box covered by the glyph
func (g Glyph) BBox() BoundingBox {
	asc, desc := g.Ascent(), g.Descent()
	corners := [4]Point{{0, desc}, {g.Width, desc}, {0, asc}, {g.Width, asc}}
	var box BoundingBox
	for i, c := range corners {
		x, y := g.Trm.Transform(c.X, c.Y)
		if i == 0 {
			box = BoundingBox{X0: x, Y0: y, X1: x, Y1: y}
			continue
		}
		box.X0 = math.Min(box.X0, x)
		box.Y0 = math.Min(box.Y0, y)
		box.X1 = math.Max(box.X1, x)
		box.Y1 = math.Max(box.Y1, y)
	}
	return box
}

// Origin returns the device space position of the glyph origin (on the baseline)
func (g Glyph) Origin() Point {
	x, y := g.Trm.Transform(0, 0)
	return Point{X: x, Y: y}
}

// Invisible reports whether the glyph paints nothing (render modes 3 and 7)
func (g Glyph) Invisible() bool {
	return g.RenderMode == 3 || g.RenderMode == 7
}
