package pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Text extraction backends
const (
	BackendContent    = "content"
	BackendLedongthuc = "ledongthuc"
	BackendDslipak    = "dslipak"
)

// ErrUnknownBackend is returned for a text backend name that is not supported
var ErrUnknownBackend = errors.New("unknown text backend")

// Option configures how a document is opened
type Option func(*openConfig)

type openConfig struct {
	password    string
	textBackend string
	unicodeNorm string
	validate    bool
}

// WithPassword sets the user and owner password for encrypted documents
func WithPassword(password string) Option {
	return func(c *openConfig) {
		c.password = password
	}
}

// WithTextBackend selects the text extraction backend (content, ledongthuc or dslipak)
func WithTextBackend(name string) Option {
	return func(c *openConfig) {
		c.textBackend = name
	}
}

// WithUnicodeNorm applies NFC or NFKC normalization to extracted span text
func WithUnicodeNorm(form string) Option {
	return func(c *openConfig) {
		c.unicodeNorm = form
	}
}

// WithValidation runs relaxed pdfcpu validation after reading. Off by default.
func WithValidation(enabled bool) Option {
	return func(c *openConfig) {
		c.validate = enabled
	}
}

// PDFDocument implements the Document interface using pdfcpu
type PDFDocument struct {
	ctx      *model.Context
	filepath string
	pages    []*PDFCPUPage
	text     TextSource
	config   openConfig
}

// Open opens a PDF file and returns a Document
func Open(filepath string, opts ...Option) (*PDFDocument, error) {
	cfg := openConfig{textBackend: BackendContent}
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if cfg.password != "" {
		conf.UserPW = cfg.password
		conf.OwnerPW = cfg.password
	}

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if cfg.validate {
		if err := api.ValidateContext(ctx); err != nil {
			return nil, fmt.Errorf("invalid PDF: %w", err)
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	doc := &PDFDocument{
		ctx:      ctx,
		filepath: filepath,
		config:   cfg,
	}

	if err := doc.initializePages(); err != nil {
		return nil, fmt.Errorf("failed to initialize pages: %w", err)
	}

	if err := doc.openTextSource(); err != nil {
		return nil, err
	}

	return doc, nil
}

// OpenWithPassword opens a password-protected PDF file
func OpenWithPassword(filepath string, password string) (*PDFDocument, error) {
	return Open(filepath, WithPassword(password))
}

// initializePages initializes all pages in the document
func (d *PDFDocument) initializePages() error {
	pageCount := d.ctx.PageCount
	d.pages = make([]*PDFCPUPage, pageCount)

	for i := 1; i <= pageCount; i++ {
		page, err := NewPDFCPUPage(d, i)
		if err != nil {
			return fmt.Errorf("failed to create page %d: %w", i, err)
		}
		d.pages[i-1] = page
	}

	return nil
}

func (d *PDFDocument) openTextSource() error {
	var err error
	switch d.config.textBackend {
	case "", BackendContent:
		return nil
	case BackendLedongthuc:
		d.text, err = OpenLedongthucText(d.filepath, d.config.unicodeNorm)
	case BackendDslipak:
		d.text, err = OpenDslipakText(d.filepath, d.config.unicodeNorm)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, d.config.textBackend)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s text backend: %w", d.config.textBackend, err)
	}
	return nil
}

// GetPage returns a specific page by index (0-based)
func (d *PDFDocument) GetPage(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// PageCount returns the total number of pages
func (d *PDFDocument) PageCount() int {
	return len(d.pages)
}

// Close releases resources associated with the document
func (d *PDFDocument) Close() error {
	var err error
	if d.text != nil {
		err = d.text.Close()
		d.text = nil
	}
	d.ctx = nil
	d.pages = nil
	return err
}
