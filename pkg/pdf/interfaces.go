package pdf

import (
	"image"
)

// Document represents an open PDF document
type Document interface {
	// GetPage returns a specific page by index (0-based)
	GetPage(index int) (Page, error)

	// PageCount returns the total number of pages
	PageCount() int

	// ImageRefs lists the image XObjects used by the page at index (0-based),
	// including images nested in form XObjects. Each object appears once.
	ImageRefs(index int) ([]ImageRef, error)

	// ExtractImage returns the native bytes of an embedded image
	ExtractImage(ref ImageRef) (*ExtractedImage, error)

	// Close releases resources associated with the document
	Close() error
}

// Page represents a single page in a PDF document
type Page interface {
	// GetPageNumber returns the page number (1-based)
	GetPageNumber() int

	// GetWidth returns the page width in points, after rotation
	GetWidth() float64

	// GetHeight returns the page height in points, after rotation
	GetHeight() float64

	// GetRotation returns the page rotation in degrees (0, 90, 180 or 270)
	GetRotation() int

	// GetBBox returns the visible page area in PDF user space
	GetBBox() BoundingBox

	// PageMatrix maps user space to page space: top-left origin, y down, in points
	PageMatrix() Matrix

	// Interpret runs the page content through dev. The device sees page space scaled by scale.
	Interpret(dev Device, scale float64) error

	// ExtractTextBlocks returns the page text grouped into blocks, lines and spans
	ExtractTextBlocks() ([]TextBlock, error)

	// DecodeImage decodes an image XObject of this page to pixels
	DecodeImage(ref ImageRef) (image.Image, error)
}

// TextSource is an alternate text extraction backend
type TextSource interface {
	// PageBlocks extracts the text of a 1-based page. pageMatrix maps the
	// backend's user space coordinates to page space.
	PageBlocks(pageNumber int, pageMatrix Matrix) ([]TextBlock, error)

	// Close releases the backend
	Close() error
}
