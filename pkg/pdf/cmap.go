package pdf

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

var (
	codespaceSectionRe = regexp.MustCompile(`begincodespacerange\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]+>\s*)+)endcodespacerange`)
	bfcharSectionRe    = regexp.MustCompile(`beginbfchar\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f\s]*>\s*)+)endbfchar`)
	bfrangeSectionRe   = regexp.MustCompile(`beginbfrange\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]+>\s*(?:<[0-9A-Fa-f\s]*>|\[[^\]]*\])\s*)+)endbfrange`)

	hexPairRe  = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f\s]*)>`)
	hexRangeRe = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*(<[0-9A-Fa-f\s]*>|\[([^\]]*)\])`)
	hexTokenRe = regexp.MustCompile(`<([0-9A-Fa-f\s]*)>`)
)

// ToUnicodeCMap represents a PDF ToUnicode CMap that maps character codes to Unicode text
type ToUnicodeCMap struct {
	// Direct character mappings (from beginbfchar sections)
	cidToUnicode map[uint16]string

	// Range mappings (from beginbfrange sections)
	ranges []cmapRange

	// codeLength is the byte length of codes declared by the codespace ranges, 0 if undeclared
	codeLength int
}

// cmapRange represents a contiguous range mapping from beginbfrange
type cmapRange struct {
	startCID     uint16
	endCID       uint16
	startUnicode []uint16 // UTF-16 units; the last unit is incremented across the range
	unicodeArray []string // For non-contiguous mappings
}

// NewToUnicodeCMap creates a new ToUnicode CMap parser
func NewToUnicodeCMap() *ToUnicodeCMap {
	return &ToUnicodeCMap{
		cidToUnicode: make(map[uint16]string),
		ranges:       []cmapRange{},
	}
}

// Parse parses a ToUnicode CMap stream
func (cmap *ToUnicodeCMap) Parse(data []byte) error {
	content := string(data)

	cmap.parseCodespace(content)

	if err := cmap.parseBeginBFChar(content); err != nil {
		return fmt.Errorf("failed to parse beginbfchar: %w", err)
	}

	if err := cmap.parseBeginBFRange(content); err != nil {
		return fmt.Errorf("failed to parse beginbfrange: %w", err)
	}

	return nil
}

// CodeLength returns the byte length of character codes, or 0 if the CMap does not say
func (cmap *ToUnicodeCMap) CodeLength() int {
	return cmap.codeLength
}

func (cmap *ToUnicodeCMap) parseCodespace(content string) {
	for _, section := range codespaceSectionRe.FindAllStringSubmatch(content, -1) {
		for _, pair := range hexPairRe.FindAllStringSubmatch(section[1], -1) {
			n := len(pair[1]) / 2
			if n > cmap.codeLength {
				cmap.codeLength = n
			}
		}
	}
}

// parseBeginBFChar parses beginbfchar...endbfchar sections
//
//	N beginbfchar
//	<src> <dst>
//	endbfchar
func (cmap *ToUnicodeCMap) parseBeginBFChar(content string) error {
	for _, section := range bfcharSectionRe.FindAllStringSubmatch(content, -1) {
		for _, mapping := range hexPairRe.FindAllStringSubmatch(section[1], -1) {
			srcCID, ok := parseCode(mapping[1])
			if !ok {
				continue
			}
			units, ok := parseUTF16(mapping[2])
			if !ok {
				continue
			}
			cmap.cidToUnicode[srcCID] = string(utf16.Decode(units))
		}
	}
	return nil
}

// parseBeginBFRange parses beginbfrange...endbfrange sections
//
//	N beginbfrange
//	<srcStart> <srcEnd> <dst>
//	<srcStart> <srcEnd> [<dst1> <dst2> ...]
//	endbfrange
func (cmap *ToUnicodeCMap) parseBeginBFRange(content string) error {
	for _, section := range bfrangeSectionRe.FindAllStringSubmatch(content, -1) {
		for _, r := range hexRangeRe.FindAllStringSubmatch(section[1], -1) {
			startCID, ok1 := parseCode(r[1])
			endCID, ok2 := parseCode(r[2])
			if !ok1 || !ok2 || endCID < startCID {
				continue
			}

			if strings.HasPrefix(r[3], "[") {
				var values []string
				for _, tok := range hexTokenRe.FindAllStringSubmatch(r[4], -1) {
					units, ok := parseUTF16(tok[1])
					if !ok {
						units = nil
					}
					values = append(values, string(utf16.Decode(units)))
				}
				cmap.ranges = append(cmap.ranges, cmapRange{
					startCID:     startCID,
					endCID:       endCID,
					unicodeArray: values,
				})
				continue
			}

			units, ok := parseUTF16(strings.Trim(r[3], "<>"))
			if !ok || len(units) == 0 {
				continue
			}
			cmap.ranges = append(cmap.ranges, cmapRange{
				startCID:     startCID,
				endCID:       endCID,
				startUnicode: units,
			})
		}
	}
	return nil
}

// parseCode parses a 1 or 2 byte source code
func parseCode(s string) (uint16, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, false
	}
	switch len(b) {
	case 1:
		return uint16(b[0]), true
	case 2:
		return uint16(b[0])<<8 | uint16(b[1]), true
	}
	return 0, false
}

// parseUTF16 parses a UTF-16BE destination string, dropping a leading byte order mark.
// Single-byte destinations are taken as Latin-1.
func parseUTF16(s string) ([]uint16, bool) {
	s = strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	if len(b) == 1 {
		return []uint16{uint16(b[0])}, true
	}
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	if len(units) > 1 && units[0] == 0xFEFF {
		units = units[1:]
	}
	return units, true
}

// MapCIDToUnicode maps a character code to its Unicode string
func (cmap *ToUnicodeCMap) MapCIDToUnicode(cid uint16) (string, bool) {
	if unicode, ok := cmap.cidToUnicode[cid]; ok {
		return unicode, true
	}

	for _, r := range cmap.ranges {
		if cid < r.startCID || cid > r.endCID {
			continue
		}
		offset := int(cid - r.startCID)
		if r.unicodeArray != nil {
			if offset < len(r.unicodeArray) {
				return r.unicodeArray[offset], true
			}
			continue
		}
		units := append([]uint16(nil), r.startUnicode...)
		units[len(units)-1] += uint16(offset)
		return string(utf16.Decode(units)), true
	}

	return "", false
}

// GetMappingCount returns the total number of mappings in this CMap
func (cmap *ToUnicodeCMap) GetMappingCount() int {
	count := len(cmap.cidToUnicode)
	for _, r := range cmap.ranges {
		if r.unicodeArray != nil {
			count += len(r.unicodeArray)
		} else {
			count += int(r.endCID-r.startCID) + 1
		}
	}
	return count
}

// String returns a short description of the CMap for debugging
func (cmap *ToUnicodeCMap) String() string {
	return fmt.Sprintf("ToUnicodeCMap{direct: %d, ranges: %d, total: %d, codeLength: %d}",
		len(cmap.cidToUnicode), len(cmap.ranges), cmap.GetMappingCount(), cmap.codeLength)
}
