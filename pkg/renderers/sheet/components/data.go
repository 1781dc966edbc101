package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/datapath"
	rendertemplate "github.com/goliatone/go-sheetform/pkg/render/template"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

const templatePrefix = "components/"

// Partial keys a theme can override.
const (
	PartialInput    = "forms.input"
	PartialCheckbox = "forms.checkbox"
	PartialTextarea = "forms.textarea"
	PartialSelect   = "forms.select"
	PartialSection  = "forms.section"
)

// SelectPlaceholder is the label of the empty leading option of every select.
const SelectPlaceholder = "—"

// ComponentData carries the per-build context component renderers need.
type ComponentData struct {
	Template      rendertemplate.TemplateRenderer
	ThemePartials map[string]string
	// Entity supplies bound values. It is read only.
	Entity map[string]any
	// Staged makes repeating kinds emit empty containers and hand their
	// configuration to Defer instead of rendering rows.
	Staged bool

	Bind        func(spec binding.ControlSpec)
	Defer       func(structure schema.RepeatingStructure)
	RenderChild func(field schema.Field) (string, error)
}

// Value returns the entity value bound at path, or nil.
func (d ComponentData) Value(path string) any {
	if d.Entity == nil {
		return nil
	}
	value, ok := datapath.Lookup(d.Entity, path)
	if !ok {
		return nil
	}
	return value
}

func (d ComponentData) bind(spec binding.ControlSpec) {
	if d.Bind != nil {
		d.Bind(spec)
	}
}

func (d ComponentData) partial(key, fallback string) string {
	if d.ThemePartials != nil {
		if candidate := strings.TrimSpace(d.ThemePartials[key]); candidate != "" {
			return candidate
		}
	}
	return fallback
}

// control describes a single bound input rendered through a template.
type control struct {
	ID          string
	Path        string
	Label       string
	Type        binding.ControlType
	Placeholder string
	Notes       string
	Options     []schema.Option
	Lines       int
	// Bare drops the label wrapper, for table cells.
	Bare bool
	// Sequence is the base path of the enclosing row sequence.
	Sequence string
}

func (d ComponentData) writeControl(buf *bytes.Buffer, c control) error {
	if d.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", c.Path)
	}

	value := d.Value(c.Path)
	payload := map[string]any{
		"id":          c.ID,
		"path":        c.Path,
		"label":       c.Label,
		"type":        string(c.Type),
		"placeholder": c.Placeholder,
		"notes":       SanitizeNotes(c.Notes),
		"bare":        c.Bare,
		"sequence":    c.Sequence,
	}

	var partialKey, templateName string
	switch c.Type {
	case binding.ControlCheckbox:
		partialKey, templateName = PartialCheckbox, "checkbox.tmpl"
		payload["checked"] = binding.Truthy(value)
	case binding.ControlTextarea:
		partialKey, templateName = PartialTextarea, "textarea.tmpl"
		payload["value"] = binding.FormatValue(value)
		lines := c.Lines
		if lines <= 0 {
			lines = 3
		}
		payload["lines"] = lines
	case binding.ControlSelect:
		partialKey, templateName = PartialSelect, "select.tmpl"
		current := binding.Stringify(value)
		options := make([]any, 0, len(c.Options))
		unset := true
		for _, option := range c.Options {
			selected := value != nil && option.Value == current
			if selected {
				unset = false
			}
			options = append(options, map[string]any{
				"value":    option.Value,
				"label":    option.Text(),
				"selected": selected,
			})
		}
		payload["options"] = options
		payload["unset"] = unset
		payload["empty_label"] = SelectPlaceholder
	default:
		partialKey, templateName = PartialInput, "input.tmpl"
		payload["value"] = binding.Stringify(value)
	}

	name := d.partial(partialKey, templatePrefix+templateName)
	rendered, err := d.Template.RenderTemplate(name, map[string]any{"control": payload})
	if err != nil {
		return fmt.Errorf("components: render template %q: %w", name, err)
	}
	buf.WriteString(rendered)

	spec := binding.ControlSpec{
		ID:       c.ID,
		Path:     c.Path,
		Type:     c.Type,
		Label:    c.Label,
		Sequence: c.Sequence,
	}
	for _, option := range c.Options {
		spec.Options = append(spec.Options, option.Value)
	}
	d.bind(spec)
	return nil
}

func controlType(kind schema.Kind) binding.ControlType {
	switch kind {
	case schema.KindNumber:
		return binding.ControlNumber
	case schema.KindCheckbox:
		return binding.ControlCheckbox
	case schema.KindTextarea:
		return binding.ControlTextarea
	case schema.KindSelect:
		return binding.ControlSelect
	default:
		return binding.ControlText
	}
}

func fieldID(field schema.Field) string {
	if id := strings.TrimSpace(field.ID); id != "" {
		return id
	}
	return idFromPath(field.Path)
}

func idFromPath(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), ".", "_")
}
