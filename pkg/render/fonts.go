package render

import (
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// loadPPEM is the size outlines are loaded at; coordinates are divided back to em units
const loadPPEM = 1024

// Embedded PDF fonts are not rasterized. Glyphs are drawn with the Go fonts
// picked by the span style flags, stretched to the advance the PDF font declares.
type fontSet struct {
	regular, bold, italic, boldItalic *sfnt.Font
	mono, monoBold, monoItalic        *sfnt.Font
	monoBoldItalic                    *sfnt.Font

	buf sfnt.Buffer
}

var (
	goFonts     *fontSet
	goFontsOnce sync.Once
)

func defaultFonts() *fontSet {
	goFontsOnce.Do(func() {
		goFonts = &fontSet{
			regular:        mustParse(goregular.TTF),
			bold:           mustParse(gobold.TTF),
			italic:         mustParse(goitalic.TTF),
			boldItalic:     mustParse(gobolditalic.TTF),
			mono:           mustParse(gomono.TTF),
			monoBold:       mustParse(gomonobold.TTF),
			monoItalic:     mustParse(gomonoitalic.TTF),
			monoBoldItalic: mustParse(gomonobolditalic.TTF),
		}
	})
	// share the parsed fonts, not the scratch buffer
	fs := *goFonts
	fs.buf = sfnt.Buffer{}
	return &fs
}

func mustParse(ttf []byte) *sfnt.Font {
	f, err := sfnt.Parse(ttf)
	if err != nil {
		panic(err)
	}
	return f
}

func (fs *fontSet) face(flags int) *sfnt.Font {
	bold := flags&pdf.FlagBold != 0
	italic := flags&pdf.FlagItalic != 0
	if flags&pdf.FlagMonospace != 0 {
		switch {
		case bold && italic:
			return fs.monoBoldItalic
		case bold:
			return fs.monoBold
		case italic:
			return fs.monoItalic
		}
		return fs.mono
	}
	switch {
	case bold && italic:
		return fs.boldItalic
	case bold:
		return fs.bold
	case italic:
		return fs.italic
	}
	return fs.regular
}

// addGlyph appends the outlines of g's text to o in device space
func (fs *fontSet) addGlyph(o *outline, g pdf.Glyph) {
	f := fs.face(g.Flags)
	runes := []rune(g.Text)
	if len(runes) == 0 {
		return
	}
	ppem := fixed.I(loadPPEM)

	// the glyph box is shared by all runes of a multi-rune mapping (ligatures)
	slot := g.Width / float64(len(runes))
	for i, r := range runes {
		idx, err := f.GlyphIndex(&fs.buf, r)
		if err != nil || idx == 0 {
			continue
		}
		segs, err := f.LoadGlyph(&fs.buf, idx, ppem, nil)
		if err != nil {
			continue
		}

		stretch := 1.0
		if adv, err := f.GlyphAdvance(&fs.buf, idx, ppem, font.HintingNone); err == nil && adv > 0 && slot > 0 {
			stretch = math.Max(0.5, math.Min(1.5, slot/emUnits(adv)))
		}

		offset := slot * float64(i)
		pt := func(p fixed.Point26_6) pdf.Point {
			// sfnt is y down, PDF glyph space is y up
			x := emUnits(p.X)*stretch + offset
			y := -emUnits(p.Y)
			dx, dy := g.Trm.Transform(x, y)
			return pdf.Point{X: dx, Y: dy}
		}

		for _, s := range segs {
			switch s.Op {
			case sfnt.SegmentOpMoveTo:
				o.add(segMove, pt(s.Args[0]))
			case sfnt.SegmentOpLineTo:
				o.add(segLine, pt(s.Args[0]))
			case sfnt.SegmentOpQuadTo:
				o.add(segQuad, pt(s.Args[0]), pt(s.Args[1]))
			case sfnt.SegmentOpCubeTo:
				o.add(segCube, pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2]))
			}
		}
		o.add(segClose)
	}
}

func emUnits(v fixed.Int26_6) float64 {
	return float64(v) / 64 / loadPPEM
}
