package pdf

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

// Font descriptor flags (PDF 32000-1, 9.8.2)
const (
	descFixedPitch = 1 << 0
	descSerif      = 1 << 1
	descSymbolic   = 1 << 2
	descItalic     = 1 << 6
	descForceBold  = 1 << 18
)

// FontInfo represents the font information the interpreter needs
type FontInfo struct {
	Name     string // resource name, e.g. F1
	BaseFont string // subset tag removed
	Subtype  string
	Encoding string

	// Composite fonts use two-byte codes
	Composite bool

	FirstChar    int
	Widths       []float64       // simple fonts, glyph space units / 1000
	CIDWidths    map[int]float64 // composite fonts
	DefaultWidth float64

	Ascent     float64 // em units
	Descent    float64 // em units, negative
	Flags      int     // font descriptor flags
	FontWeight float64

	// FontMatrix maps Type3 glyph space to text space
	FontMatrix Matrix

	ToUnicodeCMap *ToUnicodeCMap

	differences map[int]string
}

// charCode is one decoded character code
type charCode struct {
	code  int
	text  string
	width float64 // em units
	space bool    // single-byte code 32, subject to word spacing
}

// loadFont builds a FontInfo from a font dictionary
func loadFont(ctx *model.Context, name string, fontDict types.Dict) *FontInfo {
	f := &FontInfo{
		Name:         name,
		Subtype:      nameValue(resolve(ctx, fontDict["Subtype"])),
		BaseFont:     StripSubsetTag(nameValue(resolve(ctx, fontDict["BaseFont"]))),
		DefaultWidth: 0.5,
		Ascent:       0.8,
		Descent:      -0.2,
		FontMatrix:   ScaleMatrix(0.001, 0.001),
	}

	descriptor := resolveDict(ctx, fontDict["FontDescriptor"])

	if f.Subtype == "Type0" {
		f.Composite = true
		f.DefaultWidth = 1
		if descendants := resolveArray(ctx, fontDict["DescendantFonts"]); len(descendants) > 0 {
			if cidFont := resolveDict(ctx, descendants[0]); cidFont != nil {
				if f.BaseFont == "" {
					f.BaseFont = StripSubsetTag(nameValue(resolve(ctx, cidFont["BaseFont"])))
				}
				if dw, ok := numberValue(resolve(ctx, cidFont["DW"])); ok {
					f.DefaultWidth = dw / 1000
				}
				f.CIDWidths = parseCIDWidths(ctx, cidFont["W"])
				descriptor = resolveDict(ctx, cidFont["FontDescriptor"])
			}
		}
	} else {
		if fc, ok := numberValue(resolve(ctx, fontDict["FirstChar"])); ok {
			f.FirstChar = int(fc)
		}
		widths := numberArray(ctx, fontDict["Widths"])
		scale := 0.001
		if f.Subtype == "Type3" {
			f.FontMatrix = matrixValue(ctx, fontDict["FontMatrix"])
			scale = f.FontMatrix.A
		}
		for _, w := range widths {
			f.Widths = append(f.Widths, w*scale)
		}
		if len(widths) == 0 {
			f.DefaultWidth = standardFontWidth(f.BaseFont)
		}
		f.loadEncoding(ctx, fontDict["Encoding"])
	}

	if descriptor != nil {
		if flags, ok := numberValue(resolve(ctx, descriptor["Flags"])); ok {
			f.Flags = int(flags)
		}
		if a, ok := numberValue(resolve(ctx, descriptor["Ascent"])); ok && a != 0 {
			f.Ascent = a / 1000
		}
		if d, ok := numberValue(resolve(ctx, descriptor["Descent"])); ok && d != 0 {
			f.Descent = d / 1000
		}
		if w, ok := numberValue(resolve(ctx, descriptor["FontWeight"])); ok {
			f.FontWeight = w
		}
		if mw, ok := numberValue(resolve(ctx, descriptor["MissingWidth"])); ok && mw > 0 && !f.Composite {
			f.DefaultWidth = mw / 1000
		}
	}
	// keep the box sane for fonts with bogus metrics
	if f.Ascent <= f.Descent || f.Ascent-f.Descent > 3 {
		f.Ascent, f.Descent = 0.8, -0.2
	}

	if sd := resolveStream(ctx, fontDict["ToUnicode"]); sd != nil {
		if data, err := decodedContent(sd); err == nil && len(data) > 0 {
			cmap := NewToUnicodeCMap()
			if err := cmap.Parse(data); err == nil && cmap.GetMappingCount() > 0 {
				f.ToUnicodeCMap = cmap
			}
		}
	}

	return f
}

// parseCIDWidths parses a CIDFont W array: c [w1 w2 ...] or cfirst clast w
func parseCIDWidths(ctx *model.Context, obj types.Object) map[int]float64 {
	arr := resolveArray(ctx, obj)
	if arr == nil {
		return nil
	}
	widths := make(map[int]float64)
	for i := 0; i < len(arr); {
		first, ok := numberValue(resolve(ctx, arr[i]))
		if !ok || i+1 >= len(arr) {
			break
		}
		next := resolve(ctx, arr[i+1])
		if list, ok := next.(types.Array); ok {
			for j, w := range list {
				if v, ok := numberValue(resolve(ctx, w)); ok {
					widths[int(first)+j] = v / 1000
				}
			}
			i += 2
			continue
		}
		last, ok := numberValue(next)
		if !ok || i+2 >= len(arr) {
			break
		}
		w, _ := numberValue(resolve(ctx, arr[i+2]))
		for c := int(first); c <= int(last) && c-int(first) < 65536; c++ {
			widths[c] = w / 1000
		}
		i += 3
	}
	return widths
}

func (f *FontInfo) loadEncoding(ctx *model.Context, obj types.Object) {
	switch v := resolve(ctx, obj).(type) {
	case types.Name:
		f.Encoding = string(v)
	case types.Dict:
		f.Encoding = nameValue(resolve(ctx, v["BaseEncoding"]))
		diffs := resolveArray(ctx, v["Differences"])
		if len(diffs) > 0 {
			f.differences = make(map[int]string)
		}
		code := 0
		for _, d := range diffs {
			switch e := resolve(ctx, d).(type) {
			case types.Integer:
				code = int(e)
			case types.Float:
				code = int(e)
			case types.Name:
				f.differences[code] = string(e)
				code++
			}
		}
	}
}

// decode splits a shown string into character codes with Unicode text and widths
func (f *FontInfo) decode(s []byte) []charCode {
	var codes []charCode
	if f.Composite {
		for i := 0; i < len(s); i += 2 {
			code := int(s[i])
			if i+1 < len(s) {
				code = code<<8 | int(s[i+1])
			}
			codes = append(codes, charCode{
				code:  code,
				text:  f.unicodeFor(code),
				width: f.width(code),
			})
		}
		return codes
	}
	for _, b := range s {
		code := int(b)
		codes = append(codes, charCode{
			code:  code,
			text:  f.unicodeFor(code),
			width: f.width(code),
			space: code == 32,
		})
	}
	return codes
}

func (f *FontInfo) width(code int) float64 {
	if f.Composite {
		if w, ok := f.CIDWidths[code]; ok {
			return w
		}
		return f.DefaultWidth
	}
	idx := code - f.FirstChar
	if idx >= 0 && idx < len(f.Widths) {
		return f.Widths[idx]
	}
	return f.DefaultWidth
}

// unicodeFor maps a character code to text: ToUnicode first, then the font encoding
func (f *FontInfo) unicodeFor(code int) string {
	if f.ToUnicodeCMap != nil {
		if s, ok := f.ToUnicodeCMap.MapCIDToUnicode(uint16(code)); ok {
			return s
		}
	}
	if f.Composite {
		return "\uFFFD"
	}
	if name, ok := f.differences[code]; ok {
		if r, ok := glyphNameToRune(name); ok {
			return string(r)
		}
	}
	b := byte(code)
	switch f.Encoding {
	case "MacRomanEncoding":
		return string(charmap.Macintosh.DecodeByte(b))
	case "StandardEncoding":
		switch b {
		case 0x27:
			return "’"
		case 0x60:
			return "‘"
		}
	}
	if f.Flags&descSymbolic != 0 && f.Encoding == "" && b < 0x20 {
		return "\uFFFD"
	}
	return string(charmap.Windows1252.DecodeByte(b))
}

// SpanFlags derives span style flags from the font descriptor and the font name
func (f *FontInfo) SpanFlags() int {
	if f == nil {
		return 0
	}
	return styleFlags(f.BaseFont, f.Flags, f.FontWeight)
}

func styleFlags(name string, descFlags int, weight float64) int {
	lower := strings.ToLower(name)
	flags := 0
	if descFlags&descItalic != 0 || strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= FlagItalic
	}
	if descFlags&descSerif != 0 || strings.Contains(lower, "times") || strings.Contains(lower, "georgia") ||
		strings.Contains(lower, "garamond") || (strings.Contains(lower, "serif") && !strings.Contains(lower, "sans")) {
		flags |= FlagSerif
	}
	if descFlags&descFixedPitch != 0 || strings.Contains(lower, "mono") || strings.Contains(lower, "courier") {
		flags |= FlagMonospace
	}
	if descFlags&descForceBold != 0 || weight >= 600 || strings.Contains(lower, "bold") ||
		strings.Contains(lower, "black") || strings.Contains(lower, "heavy") {
		flags |= FlagBold
	}
	return flags
}

// StripSubsetTag removes a subset prefix such as "ABCDEF+" from a font name
func StripSubsetTag(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}

// standardFontWidth gives an average advance for fonts without a Widths array
// (usually one of the standard 14)
func standardFontWidth(baseFont string) float64 {
	lower := strings.ToLower(baseFont)
	switch {
	case strings.Contains(lower, "courier"):
		return 0.6
	case strings.Contains(lower, "times"):
		return 0.45
	case strings.Contains(lower, "helvetica"), strings.Contains(lower, "arial"):
		return 0.52
	}
	return 0.5
}

// glyphNameToRune resolves common Adobe glyph names
func glyphNameToRune(name string) (rune, bool) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return r, true
	}
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if strings.HasPrefix(name, "uni") && len(name) == 7 {
		if v, err := strconv.ParseUint(name[3:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	return 0, false
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#', "dollar": '$',
	"percent": '%', "ampersand": '&', "quotesingle": '\'', "quoteright": '’',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+', "comma": ',',
	"hyphen": '-', "period": '.', "slash": '/', "zero": '0', "one": '1', "two": '2',
	"three": '3', "four": '4', "five": '5', "six": '6', "seven": '7', "eight": '8',
	"nine": '9', "colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[', "backslash": '\\',
	"bracketright": ']', "asciicircum": '^', "underscore": '_', "quoteleft": '‘',
	"grave": '`', "braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"bullet": '•', "endash": '–', "emdash": '—', "ellipsis": '…',
	"quotedblleft": '“', "quotedblright": '”', "quotesinglbase": '‚',
	"quotedblbase": '„', "fi": 'ﬁ', "fl": 'ﬂ', "copyright": '©',
	"registered": '®', "trademark": '™', "degree": '°', "section": '§',
	"paragraph": '¶', "dagger": '†', "daggerdbl": '‡', "minus": '−',
	"multiply": '×', "divide": '÷', "Euro": '€', "sterling": '£',
	"yen": '¥', "cent": '¢', "nbspace": '\u00a0', "eacute": 'é',
	"egrave": 'è', "aacute": 'á', "agrave": 'à', "oacute": 'ó',
	"uacute": 'ú', "iacute": 'í', "ntilde": 'ñ', "ccedilla": 'ç',
	"udieresis": 'ü', "odieresis": 'ö', "adieresis": 'ä', "germandbls": 'ß',
}
