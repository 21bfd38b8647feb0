package assets

import (
	"os"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/pdfassets-golang/pkg/config"
)

// EnsureDirectories creates the pages and images output directories, including parents.
// Existing directories are left as they are.
func EnsureDirectories(cfg config.Config) error {
	for _, dir := range []string{cfg.PagesDir(), cfg.ImagesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}
