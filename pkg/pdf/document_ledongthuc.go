package pdf

import (
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
)

// LedongthucText extracts page text with the ledongthuc/pdf library
type LedongthucText struct {
	file        io.Closer
	reader      *lpdf.Reader
	unicodeNorm string
}

// OpenLedongthucText opens a PDF file using the ledongthuc/pdf library
func OpenLedongthucText(filepath, unicodeNorm string) (*LedongthucText, error) {
	f, r, err := lpdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &LedongthucText{file: f, reader: r, unicodeNorm: unicodeNorm}, nil
}

// PageBlocks extracts the text of a page
func (s *LedongthucText) PageBlocks(pageNumber int, pageMatrix Matrix) (blocks []TextBlock, err error) {
	if pageNumber < 1 || pageNumber > s.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}

	// the library panics on malformed content streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ledongthuc: page %d: %v", pageNumber, r)
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

// Close releases the underlying file
func (s *LedongthucText) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
