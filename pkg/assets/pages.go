package assets

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfassets-golang/pkg/render"
)

// defaultSpanSize replaces a zero span size
const defaultSpanSize = 12

// PageSource is the part of a document the page and text analysis steps read
type PageSource interface {
	PageCount() int
	GetPage(index int) (pdf.Page, error)
}

// PageRecord describes one rendered page
type PageRecord struct {
	Page         int          `json:"page"`
	Filename     string       `json:"filename"`
	Width        float64      `json:"width"`
	Height       float64      `json:"height"`
	ScaledWidth  int          `json:"scaled_width"`
	ScaledHeight int          `json:"scaled_height"`
	TextBlocks   []SpanRecord `json:"text_blocks"`
}

// SpanRecord is a text span positioned on the page
type SpanRecord struct {
	Text  string     `json:"text"`
	BBox  [4]float64 `json:"bbox"`
	Font  string     `json:"font"`
	Size  float64    `json:"size"`
	Color int        `json:"color"`
	Flags int        `json:"flags"`
}

// ExtractPages renders every page to a PNG under the pages directory and
// collects its dimensions and leading text spans. Any failure aborts.
func ExtractPages(ctx context.Context, doc PageSource, cfg config.Config, rep *Reporter) ([]PageRecord, error) {
	level, err := render.CompressionLevel(cfg.PNGCompression)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	total := doc.PageCount()
	records := make([]PageRecord, 0, total)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		page, err := doc.GetPage(i)
		if err != nil {
			return nil, errors.Wrapf(err, "page %d", i+1)
		}

		img, err := render.RenderPage(page, cfg.ScaleFactor)
		if err != nil {
			return nil, errors.Wrapf(err, "render page %d", i+1)
		}

		filename := PageFilename(i + 1)
		if err := render.WritePNG(filepath.Join(cfg.PagesDir(), filename), img, level); err != nil {
			return nil, errors.Wrapf(err, "save page %d", i+1)
		}

		spans, err := pageSpans(page)
		if err != nil {
			return nil, errors.Wrapf(err, "text of page %d", i+1)
		}
		if cfg.MaxSpansPerPage > 0 && len(spans) > cfg.MaxSpansPerPage {
			spans = spans[:cfg.MaxSpansPerPage]
		}

		bounds := img.Bounds()
		records = append(records, PageRecord{
			Page:         i + 1,
			Filename:     filename,
			Width:        page.GetWidth(),
			Height:       page.GetHeight(),
			ScaledWidth:  bounds.Dx(),
			ScaledHeight: bounds.Dy(),
			TextBlocks:   spanRecords(spans),
		})

		rep.Printf("  Page %d/%d: %s (%dx%d)\n", i+1, total, filename, bounds.Dx(), bounds.Dy())
	}

	return records, nil
}

// pageSpans returns the spans of the text blocks of page, in reading order
func pageSpans(page pdf.Page) ([]pdf.TextSpan, error) {
	blocks, err := page.ExtractTextBlocks()
	if err != nil {
		return nil, err
	}
	return pdf.Spans(blocks), nil
}

func spanRecords(spans []pdf.TextSpan) []SpanRecord {
	records := make([]SpanRecord, 0, len(spans))
	for _, s := range spans {
		size := s.Size
		if size == 0 {
			size = defaultSpanSize
		}
		records = append(records, SpanRecord{
			Text:  s.Text,
			BBox:  s.BBox.Array(),
			Font:  s.Font,
			Size:  size,
			Color: s.Color,
			Flags: s.Flags,
		})
	}
	return records
}
