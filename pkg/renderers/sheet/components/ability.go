package components

import (
	"bytes"
	"strings"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

// abilityBlockRenderer emits the modifier and score of one ability, its
// saving throw and one row per skill keyed off that ability.
func abilityBlockRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	key := strings.TrimSpace(field.AbilityKey)

	var out bytes.Buffer
	out.WriteString(`<div class="ability-block"`)
	writeAttr(&out, "data-ability", key)
	out.WriteString(`>`)
	title := field.Label
	if strings.TrimSpace(title) == "" {
		title = strings.ToUpper(key)
	}
	writeHeading(&out, "h4", title)

	out.WriteString(`<div class="ability-scores">`)
	for _, c := range []control{
		{ID: key + "Mod", Path: "abilities." + key + ".mod", Label: "Modifier", Type: binding.ControlText},
		{ID: key + "Score", Path: "abilities." + key + ".score", Label: "Score", Type: binding.ControlText},
	} {
		if err := data.writeControl(&out, c); err != nil {
			return err
		}
	}
	out.WriteString(`</div>`)

	if err := writeProficiencyRow(&out, data,
		control{ID: key + "Save", Path: "saves." + key + ".value", Label: "Saving Throw", Type: binding.ControlText},
		"saves."+key+".prof",
	); err != nil {
		return err
	}

	for _, skill := range field.Skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if err := writeProficiencyRow(&out, data,
			control{ID: skill, Path: "skills." + skill + ".value", Label: SkillLabel(skill), Type: binding.ControlText},
			"skills."+skill+".prof",
		); err != nil {
			return err
		}
	}

	out.WriteString(`</div>`)
	buf.Write(out.Bytes())
	return nil
}

func writeProficiencyRow(out *bytes.Buffer, data ComponentData, value control, profPath string) error {
	out.WriteString(`<div class="skill-row">`)
	if err := data.writeControl(out, value); err != nil {
		return err
	}
	if err := data.writeControl(out, control{
		ID:    value.ID + "Prof",
		Path:  profPath,
		Label: "proficient",
		Type:  binding.ControlCheckbox,
	}); err != nil {
		return err
	}
	out.WriteString(`</div>`)
	return nil
}

// SkillLabel turns a camelCase skill key into its display label, for example
// "animalHandling" becomes "Animal Handling".
func SkillLabel(skill string) string {
	return gotemplate.Humanize(skill)
}
