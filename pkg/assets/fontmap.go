package assets

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Web font substitutes
const (
	FontPlayfairDisplay = "Playfair Display"
	FontDMSans          = "DM Sans"
	FontJetBrainsMono   = "JetBrains Mono"
)

// fontRules are tried in order; the first rule with a matching substring wins
var fontRules = []struct {
	substrings []string
	font       string
}{
	{[]string{"playfair"}, FontPlayfairDisplay},
	{[]string{"dm sans", "dmsans"}, FontDMSans},
	{[]string{"helvetica", "arial"}, FontDMSans},
	{[]string{"georgia", "times"}, FontPlayfairDisplay},
	{[]string{"mono", "courier"}, FontJetBrainsMono},
}

// SuggestFont picks a web font for a PDF font name, case-insensitively.
// Names matching no rule get DM Sans.
func SuggestFont(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range fontRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.font
			}
		}
	}
	return FontDMSans
}

// FontSuggestion pairs a PDF font with its web substitute
type FontSuggestion struct {
	Font      string
	Suggested string
}

// FontMapping lists suggestions in font table order. It encodes as a JSON object.
type FontMapping []FontSuggestion

// MapFonts suggests a substitute for every font of the table
func MapFonts(fonts *FontTable) FontMapping {
	mapping := FontMapping{}
	for _, name := range fonts.Names() {
		mapping = append(mapping, FontSuggestion{Font: name, Suggested: SuggestFont(name)})
	}
	return mapping
}

// Lookup returns the suggestion for font
func (m FontMapping) Lookup(font string) (string, bool) {
	for _, s := range m {
		if s.Font == font {
			return s.Suggested, true
		}
	}
	return "", false
}

// MarshalJSON encodes the mapping as {"font": "suggestion", ...}
func (m FontMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, s.Font, s.Suggested); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes {"font": "suggestion", ...} keeping key order
func (m *FontMapping) UnmarshalJSON(data []byte) error {
	mapping := FontMapping{}
	err := decodeObject(data, func(key string, dec *json.Decoder) error {
		var suggested string
		if err := dec.Decode(&suggested); err != nil {
			return err
		}
		mapping = append(mapping, FontSuggestion{Font: key, Suggested: suggested})
		return nil
	})
	if err != nil {
		return err
	}
	*m = mapping
	return nil
}
