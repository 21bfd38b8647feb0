// Package assets turns a PDF into page renders, extracted images and a metadata document.
package assets

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// Run performs one extraction: pages, embedded images, font and color
// analysis, then metadata.json and the summary.
func Run(ctx context.Context, cfg config.Config, rep *Reporter) (*Metadata, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	rep.Banner("Portfolio PDF Asset Extraction")
	rep.Printf("\n")

	if _, err := os.Stat(cfg.SourcePDF); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithMessage(ErrSourceNotFound, cfg.SourcePDF)
		}
		return nil, errors.Wrap(err, "check source")
	}

	rep.Printf("Source: %s\n", cfg.SourcePDF)
	rep.Printf("Output: %s/\n\n", cfg.OutputDir)

	if err := EnsureDirectories(cfg); err != nil {
		return nil, err
	}
	rep.Done("Output directories created")

	doc, err := pdf.Open(cfg.SourcePDF, cfg.OpenOptions()...)
	if err != nil {
		return nil, errors.Wrap(err, "open PDF")
	}
	defer doc.Close()
	rep.Done("PDF opened: %d pages\n", doc.PageCount())

	rep.Printf("Extracting page images...\n")
	pages, err := ExtractPages(ctx, doc, cfg, rep)
	if err != nil {
		return nil, err
	}
	rep.Done("Extracted %d pages\n", len(pages))

	rep.Printf("Extracting embedded images...\n")
	images, err := ExtractImages(ctx, doc, cfg, rep)
	if err != nil {
		return nil, err
	}
	rep.Done("Extracted %d images\n", len(images))

	rep.Printf("Analyzing fonts...\n")
	fonts, err := DetectFonts(doc)
	if err != nil {
		return nil, err
	}
	rep.Done("Found %d font families\n", fonts.Len())

	rep.Printf("Analyzing colors...\n")
	colors, err := DetectColors(doc, cfg)
	if err != nil {
		return nil, err
	}
	rep.Done("Found %d colors\n", len(colors))

	md := &Metadata{
		SourcePDF:   cfg.SourcePDF,
		TotalPages:  doc.PageCount(),
		ScaleFactor: cfg.ScaleFactor,
		Pages:       pages,
		Images:      images,
		Fonts:       fonts,
		FontMapping: MapFonts(fonts),
		Colors:      colors,
	}

	if err := WriteMetadata(cfg.MetadataPath(), md); err != nil {
		return nil, err
	}
	rep.Done("Metadata saved to %s", cfg.MetadataPath())

	rep.Summary(md, cfg.OutputDir)
	rep.Printf("\n")
	rep.Done("Done!\n")

	return md, nil
}
