package template

import (
	"io"
)

// TemplateRenderer is the contract renderers rely on. Render accepts either a
// template name or inline template content; RenderTemplate and RenderString
// force one or the other.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
