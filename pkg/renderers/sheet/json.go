package sheet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/datapath"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

// Manifest is the JSON view of a built form: every bound control with its
// current entity value, for clients that draw their own widgets.
type Manifest struct {
	Schema              string                      `json:"schema"`
	Version             string                      `json:"version,omitempty"`
	Title               string                      `json:"title,omitempty"`
	EntityPath          string                      `json:"entityPath,omitempty"`
	Controls            []ManifestControl           `json:"controls"`
	RepeatingStructures []schema.RepeatingStructure `json:"repeatingStructures,omitempty"`
	Hidden              map[string]string           `json:"hidden,omitempty"`
	Warnings            []string                    `json:"warnings,omitempty"`
}

type ManifestControl struct {
	binding.ControlSpec
	Value any `json:"value,omitempty"`
}

// JSONRenderer emits a Manifest instead of markup. It reuses the HTML
// builder so both outputs always agree on the control set.
type JSONRenderer struct {
	html *Renderer
}

var _ render.Renderer = (*JSONRenderer)(nil)

func NewJSON(html *Renderer) *JSONRenderer {
	return &JSONRenderer{html: html}
}

func (r *JSONRenderer) Name() string {
	return "json"
}

func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

func (r *JSONRenderer) Render(ctx context.Context, doc schema.Document, entity map[string]any, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.html == nil {
		return nil, fmt.Errorf("sheet: json renderer has no html renderer")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := r.html.build(doc.Sections, entity, options.Staged, nil)
	if err != nil {
		return nil, err
	}

	manifest := Manifest{
		Schema:              doc.Name,
		Version:             doc.Version,
		Title:               doc.Title,
		EntityPath:          doc.EntityPath,
		Controls:            make([]ManifestControl, 0, len(result.Controls)),
		RepeatingStructures: result.RepeatingStructures,
		Hidden:              render.MergeHiddenFields(options.Hidden, render.SchemaFields(doc.Name, doc.Version)...),
		Warnings:            result.Warnings,
	}
	for _, spec := range result.Controls {
		manifest.Controls = append(manifest.Controls, ManifestControl{
			ControlSpec: spec,
			Value:       datapath.Get(entity, spec.Path),
		})
	}

	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sheet: marshal manifest: %w", err)
	}
	return payload, nil
}
