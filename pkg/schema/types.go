package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names how a field is rendered and bound.
type Kind string

const (
	KindText          Kind = "text"
	KindNumber        Kind = "number"
	KindCheckbox      Kind = "checkbox"
	KindTextarea      Kind = "textarea"
	KindSelect        Kind = "select"
	KindSection       Kind = "section"
	KindAbilityBlock  Kind = "abilityBlock"
	KindTable         Kind = "table"
	KindSlotCounter   Kind = "slotCounter"
	KindCoinPurse     Kind = "coinPurse"
	KindCombatBlock   Kind = "combatBlock"
	KindDeathSaves    Kind = "deathSaves"
	KindArmorTraining Kind = "armorTraining"
	KindAttunements   Kind = "attunements"
)

// Simple reports whether the kind binds exactly one control at Field.Path.
func (k Kind) Simple() bool {
	switch k {
	case KindText, KindNumber, KindCheckbox, KindTextarea, KindSelect:
		return true
	}
	return false
}

// Repeating reports whether the kind renders a fixed number of rows that can
// be materialised after the surrounding markup.
func (k Kind) Repeating() bool {
	return k == KindTable || k == KindAttunements || k == KindSlotCounter
}

const (
	// DefaultTableRows is used when a table does not set rowCount.
	DefaultTableRows = 6
	// AttunementRows is the fixed number of attunement slots.
	AttunementRows = 3
)

// DefaultSlotLevels lists the spell slot totals rendered when a slot counter
// does not declare its own levels.
func DefaultSlotLevels() []SlotLevel {
	return []SlotLevel{
		{Level: 1, Slots: 4},
		{Level: 2, Slots: 3},
		{Level: 3, Slots: 3},
		{Level: 4, Slots: 3},
		{Level: 5, Slots: 2},
		{Level: 6, Slots: 2},
		{Level: 7, Slots: 2},
		{Level: 8, Slots: 1},
		{Level: 9, Slots: 1},
	}
}

// Option is a select choice. Documents may list options as plain strings, in
// which case the string is both value and label.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Text returns the label, falling back to the value.
func (o Option) Text() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*o = Option{Value: plain, Label: plain}
		return nil
	}
	type raw Option
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("schema: decode option: %w", err)
	}
	*o = Option(decoded)
	return nil
}

func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*o = Option{Value: node.Value, Label: node.Value}
		return nil
	}
	type raw Option
	var decoded raw
	if err := node.Decode(&decoded); err != nil {
		return fmt.Errorf("schema: decode option: %w", err)
	}
	*o = Option(decoded)
	return nil
}

// RowField describes one column of a repeating table.
type RowField struct {
	Key         string `json:"key" yaml:"key"`
	Header      string `json:"header,omitempty" yaml:"header,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	// Kind is text, number or checkbox. Empty means text.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// ControlKind resolves the effective kind of the column.
func (f RowField) ControlKind() Kind {
	switch f.Kind {
	case KindNumber, KindCheckbox:
		return f.Kind
	}
	return KindText
}

// SlotLevel pairs a spell level with its number of slots.
type SlotLevel struct {
	Level int `json:"level" yaml:"level"`
	Slots int `json:"slots" yaml:"slots"`
}

// Field is one entry of a section. Simple kinds bind a single control at
// Path; composite kinds use the kind specific parameters below.
type Field struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Path        string   `json:"path,omitempty" yaml:"path,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Notes       string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Options     []Option `json:"options,omitempty" yaml:"options,omitempty"`
	// Lines sets the visible height of a textarea.
	Lines int `json:"lines,omitempty" yaml:"lines,omitempty"`

	// Nested sections and the spellcasting fields leading a slot counter.
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// abilityBlock
	AbilityKey string   `json:"abilityKey,omitempty" yaml:"abilityKey,omitempty"`
	Skills     []string `json:"skills,omitempty" yaml:"skills,omitempty"`

	// table, attunements, slotCounter
	ContainerID string      `json:"containerId,omitempty" yaml:"containerId,omitempty"`
	BasePath    string      `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	RowCount    int         `json:"rowCount,omitempty" yaml:"rowCount,omitempty"`
	RowFields   []RowField  `json:"rowFields,omitempty" yaml:"rowFields,omitempty"`
	Slots       []SlotLevel `json:"slots,omitempty" yaml:"slots,omitempty"`
}

// Rows returns the number of rows a table or attunement list renders.
func (f Field) Rows() int {
	if f.Kind == KindAttunements {
		return AttunementRows
	}
	if f.RowCount > 0 {
		return f.RowCount
	}
	return DefaultTableRows
}

// SlotLevels returns the configured levels or the defaults.
func (f Field) SlotLevels() []SlotLevel {
	if len(f.Slots) == 0 {
		return DefaultSlotLevels()
	}
	return append([]SlotLevel(nil), f.Slots...)
}

// Section groups fields under a heading.
type Section struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string  `json:"title" yaml:"title"`
	Notes  string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// RepeatingStructure describes a row container emitted empty by the builder
// in staged mode. It is consumed once when the rows are materialised.
type RepeatingStructure struct {
	ContainerID string      `json:"containerId"`
	Kind        Kind        `json:"kind"`
	RowCount    int         `json:"rowCount"`
	RowFields   []RowField  `json:"rowFields,omitempty"`
	BasePath    string      `json:"basePath,omitempty"`
	Slots       []SlotLevel `json:"slots,omitempty"`
}

// RepeatingStructureFor derives the row configuration for a repeating field.
func RepeatingStructureFor(field Field) (RepeatingStructure, bool) {
	switch field.Kind {
	case KindTable:
		return RepeatingStructure{
			ContainerID: field.ContainerID,
			Kind:        field.Kind,
			RowCount:    field.Rows(),
			RowFields:   append([]RowField(nil), field.RowFields...),
			BasePath:    field.BasePath,
		}, true
	case KindAttunements:
		return RepeatingStructure{
			ContainerID: containerOr(field.ContainerID, "attunementRows"),
			Kind:        field.Kind,
			RowCount:    AttunementRows,
			BasePath:    "attunements",
		}, true
	case KindSlotCounter:
		levels := field.SlotLevels()
		return RepeatingStructure{
			ContainerID: containerOr(field.ContainerID, "spellSlots"),
			Kind:        field.Kind,
			RowCount:    len(levels),
			BasePath:    "spellSlots",
			Slots:       levels,
		}, true
	}
	return RepeatingStructure{}, false
}

// Field rebuilds a field from the stored configuration so rows can be
// rendered by the same components that render inline rows.
func (r RepeatingStructure) Field() Field {
	return Field{
		Kind:        r.Kind,
		ContainerID: r.ContainerID,
		BasePath:    r.BasePath,
		RowCount:    r.RowCount,
		RowFields:   append([]RowField(nil), r.RowFields...),
		Slots:       append([]SlotLevel(nil), r.Slots...),
	}
}

func containerOr(id, fallback string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return fallback
}

// ResolvedKind returns the field kind, treating an empty kind as text.
func (f Field) ResolvedKind() Kind {
	if strings.TrimSpace(string(f.Kind)) == "" {
		return KindText
	}
	return f.Kind
}
