package assets

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const bannerWidth = 60

// maxSummaryColors is how many colors the summary lists before eliding the rest
const maxSummaryColors = 10

// Reporter prints progress and the run summary. Warnings are printed even when quiet.
type Reporter struct {
	out  io.Writer
	warn io.Writer
}

// NewReporter prints to w. A quiet reporter prints warnings only.
func NewReporter(w io.Writer, quiet bool) *Reporter {
	r := &Reporter{out: w, warn: w}
	if quiet {
		r.out = io.Discard
	}
	return r
}

// Printf prints a progress line
func (r *Reporter) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Warnf prints a warning
func (r *Reporter) Warnf(format string, args ...any) {
	fmt.Fprintf(r.warn, format, args...)
}

// Done prints a completed step
func (r *Reporter) Done(format string, args ...any) {
	fmt.Fprintf(r.out, "✓ "+format+"\n", args...)
}

// Banner prints title between two rules
func (r *Reporter) Banner(title string) {
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(r.out, "\n%s\n%s\n%s\n", rule, title, rule)
}

// Summary prints the closing overview of a run
func (r *Reporter) Summary(md *Metadata, outputDir string) {
	r.Banner("EXTRACTION COMPLETE")

	colors := md.Colors
	more := ""
	if len(colors) > maxSummaryColors {
		colors, more = colors[:maxSummaryColors], "..."
	}

	fmt.Fprintf(r.out, "\nPages extracted: %d\n", len(md.Pages))
	fmt.Fprintf(r.out, "Images extracted: %d\n", len(md.Images))
	fmt.Fprintf(r.out, "Fonts detected: %s\n", listString(md.Fonts.Names()))
	fmt.Fprintf(r.out, "Colors detected: %s%s\n", listString(colors), more)
	fmt.Fprintf(r.out, "\nFiles saved to: %s/\n", outputDir)
	fmt.Fprintln(r.out, "  └── pages/      (page renders)")
	fmt.Fprintln(r.out, "  └── images/     (embedded images)")
	fmt.Fprintln(r.out, "  └── metadata.json")

	fmt.Fprintln(r.out, "\nSuggested Font Mapping (Google Fonts):")
	width := 0
	for _, s := range md.FontMapping {
		width = max(width, runewidth.StringWidth(s.Font))
	}
	for _, s := range md.FontMapping {
		fmt.Fprintf(r.out, "  %s → %s\n", runewidth.FillRight(s.Font, width), s.Suggested)
	}
}

func listString(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
