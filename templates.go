package seoform

import (
	"io/fs"

	"github.com/goliatone/go-seoform/pkg/markup"
)

// EmbeddedTemplates exposes the built-in widget templates so callers can copy
// or override them without importing the markup package directly.
func EmbeddedTemplates() fs.FS {
	return markup.TemplatesFS()
}
