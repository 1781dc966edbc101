package components

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

func slotCounterRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	structure, _ := schema.RepeatingStructureFor(field)

	var out bytes.Buffer
	out.WriteString(`<div class="slot-counter">`)
	writeHeading(&out, "h4", field.Label)
	if err := writeChildren(&out, field.Fields, data); err != nil {
		return err
	}
	if err := writeContainer(&out, structure, data, slotLevelRows); err != nil {
		return err
	}
	out.WriteString(`</div>`)
	buf.Write(out.Bytes())
	return nil
}

// slotLevelRows renders, per level, a total field and one expended checkbox
// per slot. Checkbox indexes start at 1.
func slotLevelRows(buf *bytes.Buffer, structure schema.RepeatingStructure, data ComponentData) error {
	levels := structure.Slots
	if len(levels) == 0 {
		levels = schema.DefaultSlotLevels()
	}

	var out bytes.Buffer
	for _, level := range levels {
		l := strconv.Itoa(level.Level)
		out.WriteString(`<div class="slot-level" data-level="` + l + `">`)
		writeHeading(&out, "h5", "Level "+l)
		if err := data.writeControl(&out, control{
			ID:    fmt.Sprintf("slots_%s_total", l),
			Path:  "spellSlots." + l + ".total",
			Label: "Total",
			Type:  binding.ControlText,
		}); err != nil {
			return err
		}
		out.WriteString(`<div class="slot-spent"><span>Expended:</span>`)
		for n := 1; n <= level.Slots; n++ {
			idx := strconv.Itoa(n)
			if err := data.writeControl(&out, control{
				ID:    fmt.Sprintf("slots_%s_spent_%s", l, idx),
				Path:  "spellSlots." + l + ".spent." + idx,
				Label: idx,
				Type:  binding.ControlCheckbox,
			}); err != nil {
				return err
			}
		}
		out.WriteString(`</div></div>`)
	}
	buf.Write(out.Bytes())
	return nil
}
