package sheetform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-sheetform/pkg/schema"
	"github.com/goliatone/go-sheetform/pkg/schema/openapi"
)

// DefaultSchemas loads the embedded player and monster documents.
func DefaultSchemas() (*schema.Store, error) {
	return schema.Defaults()
}

// LoadSchemas reads every JSON and YAML document in fsys.
func LoadSchemas(fsys fs.FS) (*schema.Store, error) {
	return schema.LoadFS(fsys)
}

// ImportOpenAPI builds a schema document from one component of an OpenAPI
// document.
func ImportOpenAPI(ctx context.Context, data []byte, component string, options ...openapi.Option) (schema.Document, error) {
	return openapi.Import(ctx, data, component, options...)
}
