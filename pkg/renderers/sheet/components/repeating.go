package components

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/binding/dom"
	"github.com/goliatone/go-sheetform/pkg/datapath"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

// repeatingRenderer emits the header and row container of a table or an
// attunement list. Rows beyond the configured count are never rendered, so
// entity data past that bound is neither shown nor harvested.
func repeatingRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	structure, ok := schema.RepeatingStructureFor(field)
	if !ok {
		return fmt.Errorf("components: kind %q is not repeating", field.Kind)
	}

	headers := []string{"Item", "Notes"}
	rows := attunementRows
	if structure.Kind == schema.KindTable {
		rows = tableRows
		headers = nil
		for _, rf := range structure.RowFields {
			header := rf.Header
			if header == "" {
				header = SkillLabel(rf.Key)
			}
			headers = append(headers, header)
		}
	}

	var out bytes.Buffer
	out.WriteString(`<div class="table-container"`)
	writeAttr(&out, "data-kind", string(structure.Kind))
	out.WriteString(`>`)
	writeHeading(&out, "h4", field.Label)

	out.WriteString(`<div class="table-header">`)
	for _, header := range headers {
		writeHeading(&out, "div", header)
	}
	out.WriteString(`</div>`)

	if err := writeContainer(&out, structure, data, rows); err != nil {
		return err
	}
	out.WriteString(`</div>`)
	buf.Write(out.Bytes())
	return nil
}

// writeContainer emits the element rows are materialised into. In staged
// mode it stays empty and the structure is handed to data.Defer.
func writeContainer(out *bytes.Buffer, structure schema.RepeatingStructure, data ComponentData, rows RowsRenderer) error {
	out.WriteString(`<div`)
	writeAttr(out, "id", structure.ContainerID)
	writeAttr(out, "data-repeating", string(structure.Kind))
	writeAttr(out, "data-rows", strconv.Itoa(structure.RowCount))
	writeAttr(out, dom.SequenceAttr, sequenceBase(structure))
	out.WriteString(`>`)
	if data.Staged && data.Defer != nil {
		data.Defer(structure)
	} else if err := rows(out, structure, data); err != nil {
		return err
	}
	out.WriteString(`</div>`)
	return nil
}

// sequenceBase is the path harvested as an array for structure. Slot
// counters are keyed by level and stay mappings.
func sequenceBase(structure schema.RepeatingStructure) string {
	switch structure.Kind {
	case schema.KindTable:
		return structure.BasePath
	case schema.KindAttunements:
		if structure.BasePath == "" {
			return "attunements"
		}
		return structure.BasePath
	}
	return ""
}

func tableRows(buf *bytes.Buffer, structure schema.RepeatingStructure, data ComponentData) error {
	var out bytes.Buffer
	for i := 0; i < structure.RowCount; i++ {
		index := strconv.Itoa(i)
		out.WriteString(`<div class="table-row" data-row="` + index + `">`)
		for _, rf := range structure.RowFields {
			out.WriteString(`<div class="table-cell">`)
			header := rf.Header
			if header == "" {
				header = SkillLabel(rf.Key)
			}
			if err := data.writeControl(&out, control{
				ID:          fmt.Sprintf("%s_%d_%s", structure.ContainerID, i, rf.Key),
				Path:        datapath.Join(structure.BasePath, index, rf.Key),
				Label:       header,
				Type:        controlType(rf.ControlKind()),
				Placeholder: rf.Placeholder,
				Bare:        true,
				Sequence:    structure.BasePath,
			}); err != nil {
				return err
			}
			out.WriteString(`</div>`)
		}
		out.WriteString(`</div>`)
	}
	buf.Write(out.Bytes())
	return nil
}

func attunementRows(buf *bytes.Buffer, structure schema.RepeatingStructure, data ComponentData) error {
	base := sequenceBase(structure)
	var out bytes.Buffer
	for i := 0; i < schema.AttunementRows; i++ {
		index := strconv.Itoa(i)
		out.WriteString(`<div class="table-row" data-row="` + index + `">`)
		for _, c := range []control{
			{ID: "attunement_" + index + "_item", Path: datapath.Join(base, index, "item"), Label: "Item"},
			{ID: "attunement_" + index + "_notes", Path: datapath.Join(base, index, "notes"), Label: "Notes"},
		} {
			c.Type = binding.ControlText
			c.Bare = true
			c.Sequence = base
			out.WriteString(`<div class="table-cell">`)
			if err := data.writeControl(&out, c); err != nil {
				return err
			}
			out.WriteString(`</div>`)
		}
		out.WriteString(`</div>`)
	}
	buf.Write(out.Bytes())
	return nil
}
