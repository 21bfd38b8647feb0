package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
)

func TestPageFilename(t *testing.T) {
	tests := []struct {
		page     int
		expected string
	}{
		{1, "page-01.png"},
		{9, "page-09.png"},
		{10, "page-10.png"},
		{123, "page-123.png"},
	}
	for _, tt := range tests {
		if got := PageFilename(tt.page); got != tt.expected {
			t.Errorf("PageFilename(%d) = %q, want %q", tt.page, got, tt.expected)
		}
	}
}

func TestImageFilename(t *testing.T) {
	tests := []struct {
		counter, page int
		ext           string
		expected      string
	}{
		{1, 1, "png", "img-001-page1.png"},
		{42, 12, "jpeg", "img-042-page12.jpeg"},
		{1000, 3, "tif", "img-1000-page3.tif"},
	}
	for _, tt := range tests {
		if got := ImageFilename(tt.counter, tt.page, tt.ext); got != tt.expected {
			t.Errorf("ImageFilename(%d, %d, %q) = %q, want %q", tt.counter, tt.page, tt.ext, got, tt.expected)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "public", "assets", "portfolio")

	// a second call over existing directories is not an error
	for i := 0; i < 2; i++ {
		if err := EnsureDirectories(cfg); err != nil {
			t.Fatalf("EnsureDirectories() call %d error = %v", i+1, err)
		}
	}
	for _, dir := range []string{cfg.PagesDir(), cfg.ImagesDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s was not created: %v", dir, err)
		}
	}
}

func TestEnsureDirectoriesBlockedByFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.OutputDir = blocker
	if err := EnsureDirectories(cfg); err == nil {
		t.Error("EnsureDirectories() should fail when the output root is a file")
	}
}
