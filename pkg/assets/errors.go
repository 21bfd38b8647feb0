package assets

import "github.com/pkg/errors"

// ErrSourceNotFound is returned by Run when the source PDF does not exist
var ErrSourceNotFound = errors.New("source PDF not found")
