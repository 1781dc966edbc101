// Package binding moves data between JSON-shaped entities and bound form
// controls. Populate writes entity values into controls; Harvest reads the
// controls back into a fresh entity. Both work against the Form interface,
// so the same logic drives a parsed HTML document, terminal prompts or the
// in-memory form used in tests.
package binding

import (
	"strings"

	"github.com/goliatone/go-sheetform/pkg/datapath"
)

// ControlType is the declared type of a bound control.
type ControlType string

const (
	ControlText     ControlType = "text"
	ControlNumber   ControlType = "number"
	ControlCheckbox ControlType = "checkbox"
	ControlTextarea ControlType = "textarea"
	ControlSelect   ControlType = "select"
)

// ControlSpec describes a control emitted by the form builder.
type ControlSpec struct {
	ID      string      `json:"id,omitempty"`
	Path    string      `json:"path"`
	Type    ControlType `json:"type"`
	Label   string      `json:"label,omitempty"`
	Options []string    `json:"options,omitempty"`
	// Sequence is the base path of the row sequence the control belongs to,
	// empty outside tables and attunement lists.
	Sequence string `json:"sequence,omitempty"`
}

// Control is a single bound input.
type Control interface {
	Path() string
	Type() ControlType
	Value() string
	SetValue(value string)
	Checked() bool
	SetChecked(checked bool)
}

// Sequenced is implemented by controls that can report the row sequence
// they belong to. Harvest turns only those base paths into sequences.
type Sequenced interface {
	Sequence() string
}

// Form exposes the bound controls in document order.
type Form interface {
	Controls() []Control
}

// Populate assigns entity values to every bound control of form. Controls
// whose path resolves to nothing (or to null) keep their current state.
func Populate(form Form, entity map[string]any) {
	if form == nil {
		return
	}
	for _, control := range form.Controls() {
		path := strings.TrimSpace(control.Path())
		if path == "" {
			continue
		}
		value, ok := datapath.Lookup(entity, path)
		if !ok || value == nil {
			continue
		}
		switch control.Type() {
		case ControlCheckbox:
			control.SetChecked(Truthy(value))
		case ControlTextarea:
			control.SetValue(FormatValue(value))
		default:
			control.SetValue(Stringify(value))
		}
	}
}

// HarvestOption tunes Harvest.
type HarvestOption func(*harvestConfig)

type harvestConfig struct {
	compact bool
}

// KeepIndexMaps disables the conversion of row sequences into arrays,
// leaving table rows as "0".."n-1" keyed mappings.
func KeepIndexMaps() HarvestOption {
	return func(cfg *harvestConfig) {
		cfg.compact = false
	}
}

// Harvest reads every bound control into a freshly allocated entity.
// Checkboxes yield booleans, number controls yield integers (0 when empty or
// unparsable), textareas yield parsed JSON when their content is valid JSON
// and the raw string otherwise, and everything else yields the raw string.
// Row sequences reported through Sequenced become arrays; no other value is
// reshaped. Harvest does not mutate the form, so repeated calls return equal
// results.
func Harvest(form Form, opts ...HarvestOption) map[string]any {
	cfg := harvestConfig{compact: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make(map[string]any)
	if form == nil {
		return out
	}
	var sequences []string
	seen := make(map[string]bool)
	for _, control := range form.Controls() {
		path := strings.TrimSpace(control.Path())
		if path == "" {
			continue
		}
		datapath.Set(out, path, Coerce(control))
		if sequenced, ok := control.(Sequenced); ok {
			if base := strings.TrimSpace(sequenced.Sequence()); base != "" && !seen[base] {
				seen[base] = true
				sequences = append(sequences, base)
			}
		}
	}
	if !cfg.compact {
		return out
	}
	for _, base := range sequences {
		datapath.CompactAt(out, base)
	}
	return out
}

// Coerce converts the current state of control into its entity value.
func Coerce(control Control) any {
	switch control.Type() {
	case ControlCheckbox:
		return control.Checked()
	case ControlNumber:
		return ParseInt(control.Value())
	case ControlTextarea:
		return ParseStructured(control.Value())
	default:
		return control.Value()
	}
}
