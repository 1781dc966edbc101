package sheetform

import (
	"io/fs"

	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
)

// EmbeddedTemplates exposes the built-in sheet templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return sheet.TemplatesFS()
}
