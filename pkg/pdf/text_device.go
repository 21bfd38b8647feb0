package pdf

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TextDevice collects shown glyphs into blocks, lines and spans.
// Glyphs are grouped in content stream order:
//   - a span continues while font, size, color and flags stay the same and
//     the glyph follows on the same baseline
//   - a line continues while glyphs follow on the same baseline
//   - a block continues while each new line starts just below the previous one
type TextDevice struct {
	blocks []TextBlock

	// normalization applied to span text, nil for none
	form *norm.Form

	prev       *glyphPos
	lineOrigin Point
}

// glyphPos remembers where the previous glyph ended
type glyphPos struct {
	end  Point
	dir  Point // unit baseline direction
	size float64
}

// NewTextDevice creates a text collecting device. unicodeNorm is "", "NFC" or "NFKC".
func NewTextDevice(unicodeNorm string) *TextDevice {
	d := &TextDevice{}
	switch strings.ToUpper(unicodeNorm) {
	case "NFC":
		f := norm.NFC
		d.form = &f
	case "NFKC":
		f := norm.NFKC
		d.form = &f
	}
	return d
}

// FillPath is a no-op; text extraction ignores vector graphics
func (d *TextDevice) FillPath(Path, Matrix, Color, bool) {}

// StrokePath is a no-op
func (d *TextDevice) StrokePath(Path, Matrix, Color, float64) {}

// DrawImage records an image block covering the image's footprint
func (d *TextDevice) DrawImage(_ ImageRef, ctm Matrix) {
	var box BoundingBox
	for i, c := range [4]Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := ctm.Transform(c.X, c.Y)
		if i == 0 {
			box = BoundingBox{X0: x, Y0: y, X1: x, Y1: y}
			continue
		}
		box.X0, box.Y0 = math.Min(box.X0, x), math.Min(box.Y0, y)
		box.X1, box.Y1 = math.Max(box.X1, x), math.Max(box.Y1, y)
	}
	d.blocks = append(d.blocks, TextBlock{Type: BlockTypeImage, BBox: box})
	d.prev = nil
}

// ShowGlyph adds a glyph to the current span, line or block
func (d *TextDevice) ShowGlyph(g Glyph) {
	size := g.Size()
	if size <= 0 {
		return
	}
	origin := g.Origin()
	ex, ey := g.Trm.Transform(g.Width, 0)
	end := Point{X: ex, Y: ey}
	dir := unit(g.Trm.A, g.Trm.B)
	bbox := g.BBox()

	span := TextSpan{
		Font:  g.FontName,
		Size:  size,
		Color: g.Color.Packed(),
		Flags: g.Flags,
	}

	switch {
	case d.prev == nil:
		d.newBlock()
		d.newLine(origin)
	case d.sameLine(origin, dir, size):
		gap := dot(sub(origin, d.prev.end), d.prev.dir)
		if gap > 0.2*math.Max(size, d.prev.size) && g.Text != " " {
			d.appendSpace()
		}
	case d.nextLineOfBlock(origin, dir, size):
		d.newLine(origin)
	default:
		d.newBlock()
		d.newLine(origin)
	}

	line := d.currentLine()
	if n := len(line.Spans); n == 0 || !sameStyle(line.Spans[n-1], span) {
		line.Spans = append(line.Spans, span)
	}
	cur := &line.Spans[len(line.Spans)-1]
	cur.Text += g.Text
	cur.BBox = cur.BBox.Union(bbox)
	line.BBox = line.BBox.Union(bbox)
	block := &d.blocks[len(d.blocks)-1]
	block.BBox = block.BBox.Union(bbox)

	d.prev = &glyphPos{end: end, dir: dir, size: size}
}

// Blocks returns the collected blocks. Span text is normalized if requested.
func (d *TextDevice) Blocks() []TextBlock {
	var out []TextBlock
	for _, b := range d.blocks {
		if b.Type == BlockTypeText {
			var lines []TextLine
			for _, l := range b.Lines {
				var spans []TextSpan
				for _, s := range l.Spans {
					if d.form != nil {
						s.Text = d.form.String(s.Text)
					}
					if s.Text == "" {
						continue
					}
					spans = append(spans, s)
				}
				if len(spans) > 0 {
					l.Spans = spans
					lines = append(lines, l)
				}
			}
			if len(lines) == 0 {
				continue
			}
			b.Lines = lines
		}
		out = append(out, b)
	}
	return out
}

func (d *TextDevice) sameLine(origin, dir Point, size float64) bool {
	if dot(dir, d.prev.dir) < 0.99 {
		return false
	}
	delta := sub(origin, d.prev.end)
	along := dot(delta, d.prev.dir)
	across := math.Abs(cross(d.prev.dir, delta))
	ref := math.Max(size, d.prev.size)
	return across < 0.5*ref && along > -0.5*ref && along < 3*ref
}

// nextLineOfBlock reports whether origin starts a line directly below the current one
func (d *TextDevice) nextLineOfBlock(origin, dir Point, size float64) bool {
	if dot(dir, d.prev.dir) < 0.99 {
		return false
	}
	delta := sub(origin, d.lineOrigin)
	// in device space y grows downwards, so a following line is on the
	// clockwise side of the baseline direction
	down := cross(d.prev.dir, delta)
	along := dot(delta, d.prev.dir)
	ref := math.Max(size, d.prev.size)
	if down <= 0 || down > 2*ref {
		return false
	}
	block := d.blocks[len(d.blocks)-1]
	width := math.Max(block.BBox.Width(), block.BBox.Height())
	return along > -2*ref && along < width+ref
}

func (d *TextDevice) newBlock() {
	d.blocks = append(d.blocks, TextBlock{Type: BlockTypeText})
}

func (d *TextDevice) newLine(origin Point) {
	block := &d.blocks[len(d.blocks)-1]
	block.Lines = append(block.Lines, TextLine{})
	d.lineOrigin = origin
}

func (d *TextDevice) currentLine() *TextLine {
	block := &d.blocks[len(d.blocks)-1]
	return &block.Lines[len(block.Lines)-1]
}

func (d *TextDevice) appendSpace() {
	line := d.currentLine()
	if len(line.Spans) == 0 {
		return
	}
	last := &line.Spans[len(line.Spans)-1]
	if !strings.HasSuffix(last.Text, " ") {
		last.Text += " "
	}
}

func sameStyle(a, b TextSpan) bool {
	return a.Font == b.Font && math.Abs(a.Size-b.Size) < 0.01 && a.Color == b.Color && a.Flags == b.Flags
}

func unit(x, y float64) Point {
	l := math.Hypot(x, y)
	if l == 0 {
		return Point{X: 1}
	}
	return Point{X: x / l, Y: y / l}
}

func sub(a, b Point) Point { return Point{X: a.X - b.X, Y: a.Y - b.Y} }

func dot(a, b Point) float64 { return a.X*b.X + a.Y*b.Y }

func cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }
