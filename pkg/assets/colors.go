package assets

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
)

// DetectColors collects the distinct non-black span colors of the first
// cfg.ColorSamplePages pages as lowercase #rrggbb, in order of first appearance
func DetectColors(doc PageSource, cfg config.Config) ([]string, error) {
	colors := []string{}
	seen := make(map[int]bool)

	pages := min(cfg.ColorSamplePages, doc.PageCount())
	for i := 0; i < pages; i++ {
		page, err := doc.GetPage(i)
		if err != nil {
			return nil, errors.Wrapf(err, "page %d", i+1)
		}
		spans, err := pageSpans(page)
		if err != nil {
			return nil, errors.Wrapf(err, "text of page %d", i+1)
		}
		for _, s := range spans {
			if s.Color == 0 || seen[s.Color] {
				continue
			}
			seen[s.Color] = true
			colors = append(colors, HexColor(s.Color))
		}
	}

	return colors, nil
}

// HexColor formats a packed r<<16|g<<8|b color as #rrggbb
func HexColor(c int) string {
	return fmt.Sprintf("#%02x%02x%02x", (c>>16)&0xff, (c>>8)&0xff, c&0xff)
}
