package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.SourcePDF != "Miti Karia Portfolio.pdf" || cfg.OutputDir != "public/assets/portfolio" || cfg.ScaleFactor != 2 {
		t.Errorf("Default() = %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		modify  func(c *Config)
		wantErr bool
	}{
		{
			name: "Partial file keeps defaults",
			yaml: "source_pdf: deck.pdf\nscale_factor: 3\n",
			modify: func(c *Config) {
				c.SourcePDF = "deck.pdf"
				c.ScaleFactor = 3
			},
		},
		{
			name: "All keys",
			yaml: `source_pdf: in.pdf
output_dir: out
scale_factor: 1.5
password: secret
text_backend: ledongthuc
unicode_norm: NFKC
validate: true
max_spans_per_page: 0
color_sample_pages: 2
png_compression: best
`,
			modify: func(c *Config) {
				*c = Config{
					SourcePDF:        "in.pdf",
					OutputDir:        "out",
					ScaleFactor:      1.5,
					Password:         "secret",
					TextBackend:      "ledongthuc",
					UnicodeNorm:      "NFKC",
					ValidatePDF:      true,
					MaxSpansPerPage:  0,
					ColorSamplePages: 2,
					PNGCompression:   "best",
				}
			},
		},
		{
			name:    "Unknown key is rejected",
			yaml:    "source: deck.pdf\n",
			wantErr: true,
		},
		{
			name:    "Malformed yaml",
			yaml:    "scale_factor: [1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "assets.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			want := Default()
			tt.modify(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Empty source", func(c *Config) { c.SourcePDF = " " }, true},
		{"Empty output", func(c *Config) { c.OutputDir = "" }, true},
		{"Zero scale", func(c *Config) { c.ScaleFactor = 0 }, true},
		{"Negative span cap", func(c *Config) { c.MaxSpansPerPage = -1 }, true},
		{"Unlimited spans", func(c *Config) { c.MaxSpansPerPage = 0 }, false},
		{"Negative color pages", func(c *Config) { c.ColorSamplePages = -2 }, true},
		{"Dslipak backend", func(c *Config) { c.TextBackend = "dslipak" }, false},
		{"Unknown backend", func(c *Config) { c.TextBackend = "mupdf" }, true},
		{"Lower case normalization", func(c *Config) { c.UnicodeNorm = "nfc" }, false},
		{"Unknown normalization", func(c *Config) { c.UnicodeNorm = "NFD" }, true},
		{"Unknown compression", func(c *Config) { c.PNGCompression = "max" }, true},
		{"PDF validation on", func(c *Config) { c.ValidatePDF = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = filepath.Join("site", "assets")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"pages", cfg.PagesDir(), filepath.Join("site", "assets", "pages")},
		{"images", cfg.ImagesDir(), filepath.Join("site", "assets", "images")},
		{"metadata", cfg.MetadataPath(), filepath.Join("site", "assets", "metadata.json")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestOpenOptions(t *testing.T) {
	cfg := Default()
	if n := len(cfg.OpenOptions()); n != 3 {
		t.Errorf("OpenOptions() without password = %d options, want 3", n)
	}
	cfg.Password = "pw"
	if n := len(cfg.OpenOptions()); n != 4 {
		t.Errorf("OpenOptions() with password = %d options, want 4", n)
	}
}
