// Package sheetform renders schema-driven character sheets and binds their
// controls to nested JSON entities. The root package re-exports the common
// entry points; the pkg/ subpackages hold the engine.
package sheetform

import (
	"context"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/orchestrator"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
	"github.com/goliatone/go-sheetform/pkg/schema"
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describes per-request form attributes such as the action,
// hidden inputs or a resolved theme.
type RenderOptions = render.RenderOptions

// Result is the output of a build: markup, bound controls, staged
// repeating structures and warnings.
type Result = sheet.Result

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Build renders sections bound to entity with the default templates.
func Build(sections []schema.Section, entity map[string]any) (Result, error) {
	renderer, err := sheet.New()
	if err != nil {
		return Result{}, err
	}
	return renderer.Build(sections, entity)
}

// GenerateHTML renders the named embedded schema document bound to entity.
func GenerateHTML(ctx context.Context, schemaName string, entity map[string]any, options ...orchestrator.Option) ([]byte, error) {
	resp, err := orchestrator.New(options...).RenderForm(ctx, orchestrator.Request{
		Schema:   schemaName,
		Entity:   entity,
		Renderer: "html",
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Populate writes entity values into the controls of form.
func Populate(form binding.Form, entity map[string]any) {
	binding.Populate(form, entity)
}

// Harvest reads the controls of form into a fresh entity.
func Harvest(form binding.Form, options ...binding.HarvestOption) map[string]any {
	return binding.Harvest(form, options...)
}

// WithThemeSelector builds the HTML renderer with a go-theme selection so
// templates and CSS variables follow the chosen theme.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) (orchestrator.Option, error) {
	renderer, err := sheet.New(sheet.WithThemeSelector(selector, name, variant))
	if err != nil {
		return nil, err
	}
	return orchestrator.WithHTMLRenderer(renderer), nil
}
