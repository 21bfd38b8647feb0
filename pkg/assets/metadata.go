package assets

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Metadata is the document written to metadata.json
type Metadata struct {
	SourcePDF   string        `json:"source_pdf"`
	TotalPages  int           `json:"total_pages"`
	ScaleFactor float64       `json:"scale_factor"`
	Pages       []PageRecord  `json:"pages"`
	Images      []ImageRecord `json:"images"`
	Fonts       *FontTable    `json:"fonts"`
	FontMapping FontMapping   `json:"font_mapping"`
	Colors      []string      `json:"colors"`
}

// WriteMetadata writes md as indented JSON, replacing path
func WriteMetadata(path string, md *Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create metadata")
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(md); err != nil {
		f.Close()
		return errors.Wrap(err, "encode metadata")
	}
	return errors.Wrap(f.Close(), "write metadata")
}

// ReadMetadata loads a metadata document written by WriteMetadata
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read metadata")
	}
	md := &Metadata{Fonts: NewFontTable()}
	if err := json.Unmarshal(data, md); err != nil {
		return nil, errors.Wrap(err, "parse metadata")
	}
	return md, nil
}
