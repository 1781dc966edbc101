package render

import (
	"context"

	"github.com/goliatone/go-sheetform/pkg/schema"
)

// Renderer converts a schema document plus an entity into a byte
// representation such as an HTML form or a JSON control manifest.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc schema.Document, entity map[string]any, options RenderOptions) ([]byte, error)
}
