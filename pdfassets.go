// Package pdfassets converts a PDF into web assets: page renders, embedded images and layout metadata
package pdfassets

import (
	"context"
	"io"

	"github.com/pyhub-apps/pdfassets-golang/pkg/assets"
	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// Re-export types for the public API
type (
	Config      = config.Config
	Metadata    = assets.Metadata
	Document    = pdf.Document
	Page        = pdf.Page
	TextBlock   = pdf.TextBlock
	TextSpan    = pdf.TextSpan
	BoundingBox = pdf.BoundingBox
)

// Re-export option functions
var (
	WithPassword    = pdf.WithPassword
	WithTextBackend = pdf.WithTextBackend
	WithUnicodeNorm = pdf.WithUnicodeNorm
	WithValidation  = pdf.WithValidation
)

// DefaultConfig returns the default run configuration
func DefaultConfig() Config {
	return config.Default()
}

// Open opens a PDF file and returns a Document
func Open(filepath string, opts ...pdf.Option) (pdf.Document, error) {
	doc, err := pdf.Open(filepath, opts...)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// OpenWithPassword opens a password-protected PDF file
func OpenWithPassword(filepath string, password string) (pdf.Document, error) {
	doc, err := pdf.OpenWithPassword(filepath, password)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Extract runs a full extraction with progress written to w
func Extract(ctx context.Context, cfg Config, w io.Writer) (*Metadata, error) {
	return assets.Run(ctx, cfg, assets.NewReporter(w, false))
}
