// Package config holds the settings of an asset extraction run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfassets-golang/pkg/render"
)

// Defaults used when neither a config file nor flags override them
const (
	DefaultSourcePDF        = "Miti Karia Portfolio.pdf"
	DefaultOutputDir        = "public/assets/portfolio"
	DefaultScaleFactor      = 2.0
	DefaultMaxSpansPerPage  = 100
	DefaultColorSamplePages = 5
)

// Config describes one extraction run
type Config struct {
	SourcePDF   string  `yaml:"source_pdf"`
	OutputDir   string  `yaml:"output_dir"`
	ScaleFactor float64 `yaml:"scale_factor"`
	Password    string  `yaml:"password"`

	// TextBackend is "content" (built-in interpreter), "ledongthuc" or "dslipak"
	TextBackend string `yaml:"text_backend"`
	// UnicodeNorm is "", "NFC" or "NFKC"
	UnicodeNorm string `yaml:"unicode_norm"`
	ValidatePDF bool   `yaml:"validate"`

	// MaxSpansPerPage caps the spans kept per page record; 0 keeps all
	MaxSpansPerPage  int `yaml:"max_spans_per_page"`
	ColorSamplePages int `yaml:"color_sample_pages"`

	PNGCompression string `yaml:"png_compression"`
}

// Default returns the configuration of a run without overrides
func Default() Config {
	return Config{
		SourcePDF:        DefaultSourcePDF,
		OutputDir:        DefaultOutputDir,
		ScaleFactor:      DefaultScaleFactor,
		TextBackend:      pdf.BackendContent,
		ValidatePDF:      false,
		MaxSpansPerPage:  DefaultMaxSpansPerPage,
		ColorSamplePages: DefaultColorSamplePages,
		PNGCompression:   render.CompressionDefault,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run
func (c Config) Validate() error {
	if strings.TrimSpace(c.SourcePDF) == "" {
		return fmt.Errorf("source_pdf must not be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be positive, got %v", c.ScaleFactor)
	}
	if c.MaxSpansPerPage < 0 {
		return fmt.Errorf("max_spans_per_page must not be negative, got %d", c.MaxSpansPerPage)
	}
	if c.ColorSamplePages < 0 {
		return fmt.Errorf("color_sample_pages must not be negative, got %d", c.ColorSamplePages)
	}
	switch c.TextBackend {
	case "", pdf.BackendContent, pdf.BackendLedongthuc, pdf.BackendDslipak:
	default:
		return fmt.Errorf("unknown text_backend %q", c.TextBackend)
	}
	switch strings.ToUpper(c.UnicodeNorm) {
	case "", "NFC", "NFKC":
	default:
		return fmt.Errorf("unknown unicode_norm %q", c.UnicodeNorm)
	}
	if _, err := render.CompressionLevel(c.PNGCompression); err != nil {
		return err
	}
	return nil
}

// PagesDir is where page renders are written
func (c Config) PagesDir() string {
	return filepath.Join(c.OutputDir, "pages")
}

// ImagesDir is where embedded images are written
func (c Config) ImagesDir() string {
	return filepath.Join(c.OutputDir, "images")
}

// MetadataPath is the metadata document location
func (c Config) MetadataPath() string {
	return filepath.Join(c.OutputDir, "metadata.json")
}

// OpenOptions translates the configuration into document options
func (c Config) OpenOptions() []pdf.Option {
	opts := []pdf.Option{
		pdf.WithTextBackend(c.TextBackend),
		pdf.WithUnicodeNorm(c.UnicodeNorm),
		pdf.WithValidation(c.ValidatePDF),
	}
	if c.Password != "" {
		opts = append(opts, pdf.WithPassword(c.Password))
	}
	return opts
}
