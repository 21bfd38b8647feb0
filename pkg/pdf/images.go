package pdf

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrUnsupportedImage is returned when an image stream cannot be exported in any native format
var ErrUnsupportedImage = errors.New("unsupported image")

// ImageRefs lists the image XObjects reachable from the page's resources,
// descending into form XObjects. Images are listed once each, in resource name order.
func (d *PDFDocument) ImageRefs(index int) ([]ImageRef, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	page := d.pages[index]

	var refs []ImageRef
	seen := make(map[int]bool)
	visited := make(map[int]bool)

	var walk func(resources types.Dict, depth int)
	walk = func(resources types.Dict, depth int) {
		if resources == nil || depth > maxFormDepth {
			return
		}
		xobjects := resolveDict(d.ctx, resources["XObject"])
		names := make([]string, 0, len(xobjects))
		for name := range xobjects {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			obj := xobjects[name]
			ref, ok := indirectRef(obj)
			if !ok {
				// inline streams have no object number to export by
				continue
			}
			objNr := int(ref.ObjectNumber)
			sd := resolveStream(d.ctx, obj)
			if sd == nil {
				continue
			}
			switch nameValue(resolve(d.ctx, sd.Dict["Subtype"])) {
			case "Image":
				if seen[objNr] {
					continue
				}
				seen[objNr] = true
				refs = append(refs, ImageRef{ObjNr: objNr, Name: name, PageNr: page.pageNumber, ref: ref})
			case "Form":
				if visited[objNr] {
					continue
				}
				visited[objNr] = true
				walk(resolveDict(d.ctx, sd.Dict["Resources"]), depth+1)
			}
		}
	}
	walk(page.resources, 0)

	return refs, nil
}

// ExtractImage exports the image stream in its native format: JPEG streams as-is,
// everything else re-encoded by pdfcpu as PNG or TIFF.
func (d *PDFDocument) ExtractImage(ref ImageRef) (*ExtractedImage, error) {
	if d.ctx == nil {
		return nil, fmt.Errorf("document is closed")
	}
	obj := types.Object(ref.ref)
	if ref.ref.ObjectNumber == 0 {
		obj = *types.NewIndirectRef(ref.ObjNr, 0)
	}
	sd := resolveStream(d.ctx, obj)
	if sd == nil {
		return nil, fmt.Errorf("object %d is not an image stream", ref.ObjNr)
	}

	img, err := pdfcpu.ExtractImage(d.ctx, sd, false, ref.Name, ref.ObjNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract image %d: %w", ref.ObjNr, err)
	}
	if img == nil || img.Reader == nil {
		return nil, fmt.Errorf("image %d: %w", ref.ObjNr, ErrUnsupportedImage)
	}

	data, err := io.ReadAll(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %d: %w", ref.ObjNr, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %d: %w", ref.ObjNr, ErrUnsupportedImage)
	}

	return &ExtractedImage{
		Data:   data,
		Ext:    imageExt(img.FileType),
		Width:  img.Width,
		Height: img.Height,
	}, nil
}

// imageExt normalizes pdfcpu file types to extensions
func imageExt(fileType string) string {
	switch ft := strings.ToLower(strings.TrimPrefix(fileType, ".")); ft {
	case "jpg":
		return "jpeg"
	case "":
		return "png"
	default:
		return ft
	}
}
