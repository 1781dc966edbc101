package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int

	defaults []string
	selects  []SelectConfig
	info     []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.defaults = append(s.defaults, cfg.Default)
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selects = append(s.selects, cfg)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	s.defaults = append(s.defaults, cfg.Default)
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

var editControls = []binding.ControlSpec{
	{Path: "character.name", Type: binding.ControlText, Label: "Name"},
	{Path: "combat.ac", Type: binding.ControlNumber, Label: "Armor Class"},
	{Path: "combat.shield", Type: binding.ControlCheckbox, Label: "Shield"},
	{Path: "character.alignment", Type: binding.ControlSelect, Label: "Alignment", Options: []string{"Lawful Good", "Chaotic Good"}},
	{Path: "bio.languages", Type: binding.ControlTextarea, Label: "Languages"},
}

func TestEdit_PromptsEveryControl(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Aria Shadowmoon", "16"},
		confirm:   []bool{true},
		selectIdx: []int{2},
		textAreas: []string{`["Common","Elvish"]`},
	}
	renderer, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	entity := map[string]any{
		"character": map[string]any{"name": "Aria", "alignment": "Lawful Good"},
		"combat":    map[string]any{"ac": 14},
		"bio":       map[string]any{"languages": []any{"Common"}},
	}
	got, err := renderer.Edit(context.Background(), editControls, entity)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	want := map[string]any{
		"character": map[string]any{"name": "Aria Shadowmoon", "alignment": "Chaotic Good"},
		"combat":    map[string]any{"ac": 16, "shield": true},
		"bio":       map[string]any{"languages": []any{"Common", "Elvish"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Aria", "14", "Common"}, driver.defaults); diff != "" {
		t.Fatalf("prompt defaults mismatch (-want +got):\n%s", diff)
	}
	if driver.selects[0].DefaultIndex != 1 || driver.selects[0].Options[0] != "(none)" {
		t.Fatalf("unexpected select config %+v", driver.selects[0])
	}
	if diff := cmp.Diff([]string{"== CHARACTER ==", "== COMBAT ==", "== CHARACTER ==", "== BIO =="}, driver.info); diff != "" {
		t.Fatalf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestEdit_NoneClearsSelect(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}}
	renderer, _ := New(WithPromptDriver(driver), WithSectionHeadings(false))

	got, err := renderer.Edit(context.Background(), editControls[3:4], map[string]any{
		"character": map[string]any{"alignment": "Lawful Good"},
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"character": map[string]any{"alignment": ""}}, got); diff != "" {
		t.Fatalf("entity mismatch (-want +got):\n%s", diff)
	}
	if len(driver.info) != 0 {
		t.Fatalf("headings disabled but got %v", driver.info)
	}
}

func TestEdit_PropagatesAbortAndValidation(t *testing.T) {
	aborting := &abortDriver{stubDriver: stubDriver{}}
	renderer, _ := New(WithPromptDriver(aborting))
	if _, err := renderer.Edit(context.Background(), editControls, nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	invalid := &stubDriver{inputs: []string{"Aria", "lots"}}
	renderer, _ = New(WithPromptDriver(invalid))
	_, err := renderer.Edit(context.Background(), editControls[:2], nil)
	if err == nil || !strings.Contains(err.Error(), "combat.ac") {
		t.Fatalf("expected validation error naming the path, got %v", err)
	}
}

type abortDriver struct {
	stubDriver
}

func (a *abortDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestRender_OutputFormats(t *testing.T) {
	builder, err := sheet.New()
	if err != nil {
		t.Fatalf("sheet renderer: %v", err)
	}
	doc := schema.Document{
		Name: "mini",
		Sections: []schema.Section{{
			Title: "Basics",
			Fields: []schema.Field{
				{ID: "n", Path: "character.name", Label: "Name"},
				{ID: "lvl", Path: "progress.level", Kind: schema.KindNumber, Label: "Level"},
			},
		}},
	}

	jsonRenderer, _ := New(WithBuilder(builder), WithPromptDriver(&stubDriver{inputs: []string{"Aria", "3"}}))
	out, err := jsonRenderer.Render(context.Background(), doc, nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if !strings.Contains(string(out), `"level": 3`) {
		t.Fatalf("unexpected json output:\n%s", out)
	}

	yamlRenderer, _ := New(WithBuilder(builder), WithOutputFormat(OutputFormatYAML), WithPromptDriver(&stubDriver{inputs: []string{"Aria", "3"}}))
	out, err = yamlRenderer.Render(context.Background(), doc, nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render yaml: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"character": map[string]any{"name": "Aria"}, "progress": map[string]any{"level": 3}}, decoded); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}

	formRenderer, _ := New(WithBuilder(builder), WithOutputFormat(OutputFormatFormURLEncoded), WithPromptDriver(&stubDriver{inputs: []string{"Aria", "3"}}))
	out, err = formRenderer.Render(context.Background(), doc, nil, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	values, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse form output: %v", err)
	}
	if values.Get("character.name") != "Aria" || values.Get("progress.level") != "3" {
		t.Fatalf("unexpected form output %q", out)
	}
	if formRenderer.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", formRenderer.ContentType())
	}
}

func TestRender_RequiresBuilder(t *testing.T) {
	renderer, _ := New(WithPromptDriver(&stubDriver{}))
	if _, err := renderer.Render(context.Background(), schema.Document{}, nil, render.RenderOptions{}); !errors.Is(err, ErrNoBuilder) {
		t.Fatalf("expected ErrNoBuilder, got %v", err)
	}
	if _, err := New(WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
