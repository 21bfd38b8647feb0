package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// unknownFont names spans without a font
const unknownFont = "unknown"

// FontInfo summarizes the use of one font
type FontInfo struct {
	Sizes []float64 `json:"sizes"`
	Count int       `json:"count"`
}

// FontTable maps font names to their usage, remembering the order fonts were
// first seen in. It encodes as a JSON object in that order.
type FontTable struct {
	names []string
	fonts map[string]*FontInfo
}

// NewFontTable returns an empty table
func NewFontTable() *FontTable {
	return &FontTable{fonts: make(map[string]*FontInfo)}
}

// Add records one span of font at size. Sizes are kept rounded to one decimal.
func (t *FontTable) Add(font string, size float64) {
	info, ok := t.fonts[font]
	if !ok {
		info = &FontInfo{Sizes: []float64{}}
		t.fonts[font] = info
		t.names = append(t.names, font)
	}
	info.Count++

	size = math.Round(size*10) / 10
	i := sort.SearchFloat64s(info.Sizes, size)
	if i < len(info.Sizes) && info.Sizes[i] == size {
		return
	}
	info.Sizes = append(info.Sizes, 0)
	copy(info.Sizes[i+1:], info.Sizes[i:])
	info.Sizes[i] = size
}

// Names returns the font names in first-seen order
func (t *FontTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Get returns the usage of a font
func (t *FontTable) Get(font string) (FontInfo, bool) {
	info, ok := t.fonts[font]
	if !ok {
		return FontInfo{}, false
	}
	return *info, true
}

// Len returns the number of distinct fonts
func (t *FontTable) Len() int {
	return len(t.names)
}

// MarshalJSON encodes the table as an object keyed by font name
func (t *FontTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, name, t.fonts[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by font name, keeping key order
func (t *FontTable) UnmarshalJSON(data []byte) error {
	*t = FontTable{fonts: make(map[string]*FontInfo)}
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		var info FontInfo
		if err := dec.Decode(&info); err != nil {
			return err
		}
		if _, dup := t.fonts[key]; !dup {
			t.names = append(t.names, key)
		}
		t.fonts[key] = &info
		return nil
	})
}

// DetectFonts tallies the font and size of every span of every page
func DetectFonts(doc PageSource) (*FontTable, error) {
	table := NewFontTable()
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			return nil, errors.Wrapf(err, "page %d", i+1)
		}
		spans, err := pageSpans(page)
		if err != nil {
			return nil, errors.Wrapf(err, "text of page %d", i+1)
		}
		for _, s := range spans {
			font, size := s.Font, s.Size
			if font == "" {
				font = unknownFont
			}
			if size == 0 {
				size = defaultSpanSize
			}
			table.Add(font, size)
		}
	}
	return table, nil
}

// writeMember writes "key":value. json.Marshal re-escapes the result of
// MarshalJSON, so unescaped output needs an Encoder with SetEscapeHTML(false).
func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshalNoEscape(key)
	if err != nil {
		return err
	}
	v, err := marshalNoEscape(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeObject walks the members of a JSON object in document order
func decodeObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
