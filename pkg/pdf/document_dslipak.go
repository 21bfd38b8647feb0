package pdf

import (
	"fmt"

	gopdf "github.com/dslipak/pdf"
)

// DslipakText extracts page text with the dslipak/pdf library
type DslipakText struct {
	reader      *gopdf.Reader
	unicodeNorm string
}

// OpenDslipakText opens a PDF file using the dslipak/pdf library
func OpenDslipakText(filepath, unicodeNorm string) (*DslipakText, error) {
	r, err := gopdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &DslipakText{reader: r, unicodeNorm: unicodeNorm}, nil
}

// PageBlocks extracts the text of a page
func (s *DslipakText) PageBlocks(pageNumber int, pageMatrix Matrix) (blocks []TextBlock, err error) {
	if pageNumber < 1 || pageNumber > s.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dslipak: page %d: %v", pageNumber, r)
		}
	}()

	page := s.reader.Page(pageNumber)
	if page.V.IsNull() {
		return []TextBlock{}, nil
	}

	var items []textItem
	for _, t := range page.Content().Text {
		items = append(items, textItem{font: t.Font, size: t.FontSize, x: t.X, y: t.Y, w: t.W, s: t.S})
	}
	return layoutTextItems(items, pageMatrix, s.unicodeNorm), nil
}

// Close is a no-op; the dslipak reader owns no closable handle
func (s *DslipakText) Close() error {
	return nil
}
