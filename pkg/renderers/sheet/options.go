package sheet

import (
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	rendertemplate "github.com/goliatone/go-sheetform/pkg/render/template"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet/components"
)

// Logger receives build warnings. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

type Option func(*config)

type config struct {
	templateFS       []fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	logger           Logger
	staged           bool

	themeSelector theme.ThemeSelector
	themeName     string
	themeVariant  string
}

// WithTemplatesFS layers an alternate template bundle over the built-in one.
// Templates present in files win, which is how theme partials are supplied.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = append(cfg.templateFS, files)
		}
	}
}

// WithTemplatesDir layers templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(path) == "" {
			return
		}
		cfg.templateFS = append(cfg.templateFS, os.DirFS(path))
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the component registry used for kind dispatch.
func WithRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithStagedRows makes Build emit empty repeating containers and report
// their configuration so rows can be materialised after insertion.
func WithStagedRows(staged bool) Option {
	return func(cfg *config) {
		cfg.staged = staged
	}
}

// WithThemeSelector resolves a go-theme selection when the renderer is
// constructed. Its templates override component partials and its tokens
// become CSS variables on the form element.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.themeSelector = selector
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}
