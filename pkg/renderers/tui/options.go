package tui

import "github.com/goliatone/go-sheetform/pkg/renderers/sheet"

// OutputFormat controls how edited entities are serialized by Render.
type OutputFormat string

const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatFormURLEncoded flattens the entity into dotted keys.
	OutputFormatFormURLEncoded OutputFormat = "form"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithBuilder supplies the sheet renderer whose control set Render walks.
func WithBuilder(builder *sheet.Renderer) Option {
	return func(r *Renderer) {
		if builder != nil {
			r.builder = builder
		}
	}
}

// WithSectionHeadings prints a heading whenever the top-level path segment
// changes between prompts.
func WithSectionHeadings(enabled bool) Option {
	return func(r *Renderer) {
		r.headings = enabled
	}
}
