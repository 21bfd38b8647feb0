package assets

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"

	// formats embedded images are probed for dimensions
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/hhrutter/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageSource enumerates and exports embedded images
type ImageSource interface {
	PageCount() int
	ImageRefs(index int) ([]pdf.ImageRef, error)
	ExtractImage(ref pdf.ImageRef) (*pdf.ExtractedImage, error)
}

// ImageRecord describes one extracted image file
type ImageRecord struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	XRef     int    `json:"xref"`
}

// ExtractImages writes every embedded image of every page under the images directory.
//
// The counter numbering the files advances as soon as an image's bytes are
// extracted, so an image whose write or dimension probe fails still consumes a
// number but gets no record. Per image failures are reported and skipped; a page
// whose images cannot be listed, or cancellation of ctx, stops the loop.
func ExtractImages(ctx context.Context, src ImageSource, cfg config.Config, rep *Reporter) ([]ImageRecord, error) {
	records := []ImageRecord{}
	counter := 0

	for i := 0; i < src.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		page := i + 1

		refs, err := src.ImageRefs(i)
		if err != nil {
			return nil, errors.Wrapf(err, "images of page %d", page)
		}

		for _, ref := range refs {
			extracted, err := src.ExtractImage(ref)
			if err != nil {
				rep.Warnf("  Warning: Could not extract image %d from page %d: %v\n", ref.ObjNr, page, err)
				continue
			}

			counter++
			filename := ImageFilename(counter, page, extracted.Ext)

			record, err := saveImage(filepath.Join(cfg.ImagesDir(), filename), extracted)
			if err != nil {
				rep.Warnf("  Warning: Could not extract image %d from page %d: %v\n", ref.ObjNr, page, err)
				continue
			}
			record.Filename = filename
			record.Page = page
			record.XRef = ref.ObjNr
			records = append(records, record)

			rep.Printf("  Image %d: %s (%dx%d)\n", counter, filename, record.Width, record.Height)
		}
	}

	return records, nil
}

// saveImage writes the image bytes and reads back their pixel dimensions
func saveImage(path string, img *pdf.ExtractedImage) (ImageRecord, error) {
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return ImageRecord{}, errors.Wrap(err, "write image")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return ImageRecord{}, errors.Wrapf(err, "decode %s header", img.Ext)
	}

	return ImageRecord{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: img.Ext,
	}, nil
}
