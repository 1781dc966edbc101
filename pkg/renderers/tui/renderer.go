// Package tui edits entities from a terminal. Every control the sheet
// builder emits becomes a prompt seeded with the current value, and the
// answers are harvested back into an entity with the same rules as a
// submitted HTML form.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/datapath"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	builder      *sheet.Renderer
	headings     bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		headings:     true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatYAML, OutputFormatFormURLEncoded:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatYAML:
		return "application/yaml"
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	default:
		return "application/json"
	}
}

// Render prompts for every control of doc and serializes the edited entity.
func (r *Renderer) Render(ctx context.Context, doc schema.Document, entity map[string]any, _ render.RenderOptions) ([]byte, error) {
	if r.builder == nil {
		return nil, ErrNoBuilder
	}
	result, err := r.builder.Build(doc.Sections, entity)
	if err != nil {
		return nil, fmt.Errorf("tui: build form: %w", err)
	}
	edited, err := r.Edit(ctx, result.Controls, entity)
	if err != nil {
		return nil, err
	}
	return r.encode(edited)
}

// Edit prompts for each control in order and returns the harvested entity.
func (r *Renderer) Edit(ctx context.Context, controls []binding.ControlSpec, entity map[string]any) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	form := binding.NewMemoryForm(controls)
	binding.Populate(form, entity)

	var group string
	for _, c := range form.Controls() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		control := c.(*binding.MemoryControl)
		if r.headings {
			if head := topSegment(control.Path()); head != "" && head != group {
				group = head
				if err := r.driver.Info(ctx, "== "+strings.ToUpper(group)+" =="); err != nil {
					return nil, err
				}
			}
		}
		if err := r.prompt(ctx, control); err != nil {
			return nil, err
		}
	}
	return binding.Harvest(form), nil
}

func (r *Renderer) prompt(ctx context.Context, control *binding.MemoryControl) error {
	spec := control.Spec()
	message := promptLabel(spec)

	switch spec.Type {
	case binding.ControlCheckbox:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: control.Checked()})
		if err != nil {
			return promptErr(spec.Path, err)
		}
		control.SetChecked(checked)
	case binding.ControlSelect:
		options := append([]string{"(none)"}, spec.Options...)
		current := indexOf(spec.Options, control.Value()) + 1
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: current})
		if err != nil {
			return promptErr(spec.Path, err)
		}
		if idx <= 0 || idx >= len(options) {
			control.SetValue("")
		} else {
			control.SetValue(options[idx])
		}
	case binding.ControlTextarea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: control.Value(),
			Help:    "JSON is stored as structured data; anything else is kept as text.",
		})
		if err != nil {
			return promptErr(spec.Path, err)
		}
		control.SetValue(value)
	case binding.ControlNumber:
		value, err := r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   control.Value(),
			Validator: validateInteger,
		})
		if err != nil {
			return promptErr(spec.Path, err)
		}
		control.SetValue(value)
	default:
		value, err := r.driver.Input(ctx, InputConfig{Message: message, Default: control.Value()})
		if err != nil {
			return promptErr(spec.Path, err)
		}
		control.SetValue(value)
	}
	return nil
}

func (r *Renderer) encode(entity map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatYAML:
		out, err := yaml.Marshal(entity)
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		for _, path := range datapath.Paths(entity) {
			values.Set(path, binding.Stringify(datapath.Get(entity, path)))
		}
		return []byte(values.Encode()), nil
	default:
		out, err := json.MarshalIndent(entity, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	}
}

func promptLabel(spec binding.ControlSpec) string {
	label := strings.TrimSpace(spec.Label)
	if label == "" {
		return spec.Path
	}
	return fmt.Sprintf("%s (%s)", label, spec.Path)
}

func promptErr(path string, err error) error {
	if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("tui: prompt %s: %w", path, err)
}

func validateInteger(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if _, err := strconv.Atoi(trimmed); err != nil {
		return fmt.Errorf("%q is not a whole number", value)
	}
	return nil
}

func topSegment(path string) string {
	segments := datapath.Split(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}
