// Package sheet builds character-sheet forms from schema documents. Field
// kinds are dispatched through a components.Registry; the resulting markup
// carries a data-field attribute on every bound control so the binding
// package can populate and harvest it.
package sheet

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/render"
	rendertemplate "github.com/goliatone/go-sheetform/pkg/render/template"
	"github.com/goliatone/go-sheetform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet/components"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

const (
	formTemplate = "form.tmpl"
	// PartialForm lets a theme replace the form wrapper.
	PartialForm = "forms.form"

	defaultMethod      = "POST"
	defaultSubmitLabel = "Save"
)

// Result is the outcome of a build. RepeatingStructures is only populated
// in staged mode.
type Result struct {
	Markup              string
	Controls            []binding.ControlSpec
	RepeatingStructures []schema.RepeatingStructure
	Warnings            []string
}

// Renderer builds sheet forms. It is safe for concurrent use once
// constructed.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	logger    Logger
	staged    bool
	theme     *render.Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the sheet renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOptions := make([]gotemplate.Option, 0, len(cfg.templateFS)+2)
		for i := len(cfg.templateFS) - 1; i >= 0; i-- {
			engineOptions = append(engineOptions, gotemplate.WithFS(cfg.templateFS[i]))
		}
		engineOptions = append(engineOptions,
			gotemplate.WithFS(TemplatesFS()),
			gotemplate.WithExtension(".tmpl"),
		)
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("sheet: configure template renderer: %w", err)
		}
		renderer = engine
	}

	out := &Renderer{
		templates: renderer,
		registry:  cfg.registry,
		logger:    cfg.logger,
		staged:    cfg.staged,
	}
	if out.registry == nil {
		out.registry = components.NewDefaultRegistry()
	}
	if out.logger == nil {
		out.logger = log.Default()
	}

	if cfg.themeSelector != nil {
		resolved, err := render.ResolveTheme(cfg.themeSelector, cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("sheet: %w", err)
		}
		out.theme = resolved
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Theme returns the theme resolved at construction, if any.
func (r *Renderer) Theme() *render.Theme {
	return r.theme
}

// Build renders sections bound to entity. Unknown kinds and fields whose
// renderer fails are logged, recorded as warnings and skipped.
func (r *Renderer) Build(sections []schema.Section, entity map[string]any) (Result, error) {
	return r.build(sections, entity, r.staged, r.theme)
}

// Render satisfies render.Renderer: it builds doc and wraps the sections in
// the form template.
func (r *Renderer) Render(ctx context.Context, doc schema.Document, entity map[string]any, options render.RenderOptions) ([]byte, error) {
	result, err := r.RenderResult(ctx, doc, entity, options)
	if err != nil {
		return nil, err
	}
	return []byte(result.Markup), nil
}

// RenderResult is Render returning the whole build result, with Markup
// holding the complete form.
func (r *Renderer) RenderResult(ctx context.Context, doc schema.Document, entity map[string]any, options render.RenderOptions) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if r.templates == nil {
		return Result{}, fmt.Errorf("sheet: template renderer is nil")
	}

	active := options.Theme
	if active == nil {
		active = r.theme
	}
	result, err := r.build(doc.Sections, entity, r.staged || options.Staged, active)
	if err != nil {
		return Result{}, err
	}

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = defaultMethod
	}
	submitLabel := strings.TrimSpace(options.SubmitLabel)
	if submitLabel == "" {
		submitLabel = defaultSubmitLabel
	}

	hidden := render.MergeHiddenFields(options.Hidden, render.SchemaFields(doc.Name, doc.Version)...)
	hiddenFields := make([]any, 0, len(hidden))
	for _, field := range render.SortedHiddenFields(hidden) {
		hiddenFields = append(hiddenFields, map[string]any{"name": field.Name, "value": field.Value})
	}

	themeData := map[string]any{}
	if active != nil {
		themeData["name"] = active.Name
		themeData["variant"] = active.Variant
		themeData["css_vars_style"] = active.CSSVarsStyle()
		themeData["assets"] = active.Assets
	}

	name := partialOr(active.PartialsOrNil(), PartialForm, formTemplate)
	markup, err := r.templates.RenderTemplate(name, map[string]any{
		"form": map[string]any{
			"method":       method,
			"action":       options.Action,
			"schema":       doc.Name,
			"version":      doc.Version,
			"title":        doc.Title,
			"hidden":       hiddenFields,
			"submit_label": submitLabel,
		},
		"theme": themeData,
		"body":  result.Markup,
	})
	if err != nil {
		return Result{}, fmt.Errorf("sheet: render form template: %w", err)
	}
	result.Markup = markup
	return result, nil
}

// Rows is the markup and control set of one materialised repeating
// structure.
type Rows struct {
	Markup   string
	Controls []binding.ControlSpec
}

// MaterializeRows renders the rows of a staged repeating structure bound to
// entity. The markup belongs inside the container element named by
// structure.ContainerID.
func (r *Renderer) MaterializeRows(structure schema.RepeatingStructure, entity map[string]any) (Rows, error) {
	var rows Rows
	data := components.ComponentData{
		Template:      r.templates,
		ThemePartials: r.theme.PartialsOrNil(),
		Entity:        entity,
		Bind: func(spec binding.ControlSpec) {
			rows.Controls = append(rows.Controls, spec)
		},
	}
	var buf bytes.Buffer
	if err := r.registry.RenderRows(&buf, structure, data); err != nil {
		return Rows{}, fmt.Errorf("sheet: materialize %q: %w", structure.ContainerID, err)
	}
	rows.Markup = buf.String()
	return rows, nil
}

func (r *Renderer) build(sections []schema.Section, entity map[string]any, staged bool, active *render.Theme) (Result, error) {
	if r.templates == nil {
		return Result{}, fmt.Errorf("sheet: template renderer is nil")
	}
	b := &builder{
		renderer: r,
		entity:   entity,
		staged:   staged,
		partials: active.PartialsOrNil(),
		bound:    make(map[string]string),
	}

	var out bytes.Buffer
	for _, section := range sections {
		markup, ok := b.section(section)
		if ok {
			out.WriteString(markup)
		}
	}
	b.result.Markup = out.String()
	return b.result, nil
}

// builder carries the state of a single build. Nothing outlives the call.
type builder struct {
	renderer *Renderer
	entity   map[string]any
	staged   bool
	partials map[string]string
	bound    map[string]string
	result   Result
}

func (b *builder) section(section schema.Section) (string, bool) {
	var body bytes.Buffer
	for _, field := range section.Fields {
		body.WriteString(b.field(field))
	}

	name := partialOr(b.partials, components.PartialSection, "components/section.tmpl")
	markup, err := b.renderer.templates.RenderTemplate(name, map[string]any{
		"section": map[string]any{
			"id":    section.ID,
			"title": section.Title,
			"notes": components.SanitizeNotes(section.Notes),
		},
		"body": body.String(),
	})
	if err != nil {
		b.warn("sheet: render section %q: %v", sectionName(section), err)
		return "", false
	}
	return markup, true
}

// field renders one schema node. Controls and structures recorded by a
// renderer that fails are rolled back with its markup.
func (b *builder) field(field schema.Field) string {
	kind := field.ResolvedKind()
	descriptor, ok := b.renderer.registry.Descriptor(kind)
	if !ok {
		b.warn("sheet: unknown field kind %q for %q; skipping", kind, fieldName(field))
		return ""
	}

	controls := len(b.result.Controls)
	structures := len(b.result.RepeatingStructures)

	var buf bytes.Buffer
	data := components.ComponentData{
		Template:      b.renderer.templates,
		ThemePartials: b.partials,
		Entity:        b.entity,
		Staged:        b.staged,
		Bind:          b.bind,
		Defer:         b.deferRows,
		RenderChild: func(child schema.Field) (string, error) {
			return b.field(child), nil
		},
	}
	if err := descriptor.Renderer(&buf, field, data); err != nil {
		for _, spec := range b.result.Controls[controls:] {
			if b.bound[spec.Path] == spec.ID {
				delete(b.bound, spec.Path)
			}
		}
		b.result.Controls = b.result.Controls[:controls]
		b.result.RepeatingStructures = b.result.RepeatingStructures[:structures]
		b.warn("sheet: render %s field %q: %v", kind, fieldName(field), err)
		return ""
	}
	return buf.String()
}

func (b *builder) bind(spec binding.ControlSpec) {
	if previous, ok := b.bound[spec.Path]; ok {
		b.warn("sheet: path %q bound by both %q and %q", spec.Path, previous, spec.ID)
	} else {
		b.bound[spec.Path] = spec.ID
	}
	b.result.Controls = append(b.result.Controls, spec)
}

func (b *builder) deferRows(structure schema.RepeatingStructure) {
	b.result.RepeatingStructures = append(b.result.RepeatingStructures, structure)
}

func (b *builder) warn(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	b.result.Warnings = append(b.result.Warnings, message)
	b.renderer.logger.Printf("%s", message)
}

func partialOr(partials map[string]string, key, fallback string) string {
	if candidate := strings.TrimSpace(partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

func fieldName(field schema.Field) string {
	for _, candidate := range []string{field.ID, field.Path, field.ContainerID, field.Label, field.Title} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "(unnamed)"
}

func sectionName(section schema.Section) string {
	if section.ID != "" {
		return section.ID
	}
	return section.Title
}
