package components

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-sheetform/pkg/datapath"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

// NewDefaultRegistry constructs a registry pre-populated with every built-in
// field kind.
func NewDefaultRegistry() *Registry {
	registry := New()

	for _, kind := range []schema.Kind{
		schema.KindText,
		schema.KindNumber,
		schema.KindCheckbox,
		schema.KindTextarea,
		schema.KindSelect,
	} {
		registry.MustRegister(kind, Descriptor{Renderer: simpleRenderer})
	}

	registry.MustRegister(schema.KindSection, Descriptor{Renderer: sectionRenderer})
	registry.MustRegister(schema.KindAbilityBlock, Descriptor{Renderer: abilityBlockRenderer})
	registry.MustRegister(schema.KindTable, Descriptor{
		Renderer: repeatingRenderer,
		Rows:     tableRows,
	})
	registry.MustRegister(schema.KindAttunements, Descriptor{
		Renderer: repeatingRenderer,
		Rows:     attunementRows,
	})
	registry.MustRegister(schema.KindSlotCounter, Descriptor{
		Renderer: slotCounterRenderer,
		Rows:     slotLevelRows,
	})
	registry.MustRegister(schema.KindDeathSaves, Descriptor{Renderer: deathSavesRenderer})
	registry.MustRegister(schema.KindArmorTraining, Descriptor{Renderer: armorTrainingRenderer})
	registry.MustRegister(schema.KindCoinPurse, Descriptor{Renderer: coinPurseRenderer})
	registry.MustRegister(schema.KindCombatBlock, Descriptor{Renderer: combatBlockRenderer})

	return registry
}

func simpleRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	return data.writeControl(buf, control{
		ID:          fieldID(field),
		Path:        field.Path,
		Label:       field.Label,
		Type:        controlType(field.ResolvedKind()),
		Placeholder: field.Placeholder,
		Notes:       field.Notes,
		Options:     field.Options,
		Lines:       field.Lines,
		Sequence:    datapath.SequenceBase(field.Path),
	})
}

func sectionRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	var out bytes.Buffer
	out.WriteString(`<fieldset class="subsection"`)
	writeAttr(&out, "id", field.ID)
	out.WriteString(`>`)

	title := strings.TrimSpace(field.Title)
	if title == "" {
		title = strings.TrimSpace(field.Label)
	}
	if title != "" {
		writeHeading(&out, "legend", title)
	}
	if notes := SanitizeNotes(field.Notes); notes != "" {
		out.WriteString(`<div class="section-notes">`)
		out.WriteString(notes)
		out.WriteString(`</div>`)
	}

	if err := writeChildren(&out, field.Fields, data); err != nil {
		return err
	}

	out.WriteString(`</fieldset>`)
	buf.Write(out.Bytes())
	return nil
}

// RenderRows writes the rows of a repeating structure using the row renderer
// registered for its kind.
func (r *Registry) RenderRows(buf *bytes.Buffer, structure schema.RepeatingStructure, data ComponentData) error {
	descriptor, ok := r.Descriptor(structure.Kind)
	if !ok || descriptor.Rows == nil {
		return fmt.Errorf("components: kind %q has no row renderer", structure.Kind)
	}
	return descriptor.Rows(buf, structure, data)
}

func writeChildren(out *bytes.Buffer, fields []schema.Field, data ComponentData) error {
	if data.RenderChild == nil || len(fields) == 0 {
		return nil
	}
	out.WriteString(`<div class="form-fields">`)
	for _, nested := range fields {
		child, err := data.RenderChild(nested)
		if err != nil {
			return err
		}
		out.WriteString(child)
	}
	out.WriteString(`</div>`)
	return nil
}

func writeAttr(out *bytes.Buffer, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	out.WriteByte(' ')
	out.WriteString(name)
	out.WriteString(`="`)
	out.WriteString(html.EscapeString(value))
	out.WriteString(`"`)
}

func writeHeading(out *bytes.Buffer, tag, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	out.WriteString("<" + tag + ">")
	out.WriteString(html.EscapeString(text))
	out.WriteString("</" + tag + ">")
}
