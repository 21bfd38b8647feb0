package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Compression levels accepted by WritePNG
const (
	CompressionDefault = "default"
	CompressionSpeed   = "speed"
	CompressionBest    = "best"
	CompressionNone    = "none"
)

// CompressionLevel maps a compression name to a png level. Unknown names are rejected.
func CompressionLevel(name string) (png.CompressionLevel, error) {
	switch name {
	case "", CompressionDefault:
		return png.DefaultCompression, nil
	case CompressionSpeed:
		return png.BestSpeed, nil
	case CompressionBest:
		return png.BestCompression, nil
	case CompressionNone:
		return png.NoCompression, nil
	}
	return 0, fmt.Errorf("unknown png compression %q", name)
}

// WritePNG encodes img to path, replacing any existing file
func WritePNG(path string, img image.Image, level png.CompressionLevel) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
