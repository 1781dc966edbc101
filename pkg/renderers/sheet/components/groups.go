package components

import (
	"bytes"
	"strings"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

var armorCategories = []struct {
	id, key, label string
}{
	{"armorLight", "light", "Light"},
	{"armorMedium", "medium", "Medium"},
	{"armorHeavy", "heavy", "Heavy"},
	{"armorShields", "shields", "Shields"},
}

func deathSavesRenderer(buf *bytes.Buffer, _ schema.Field, data ComponentData) error {
	var out bytes.Buffer
	if err := writeDeathSaves(&out, data); err != nil {
		return err
	}
	buf.Write(out.Bytes())
	return nil
}

func writeDeathSaves(out *bytes.Buffer, data ComponentData) error {
	out.WriteString(`<div class="death-saves">`)
	for _, group := range []struct{ label, key, id string }{
		{"Death Saves - Success (3)", "success", "deathSuccess"},
		{"Death Saves - Failures (3)", "fail", "deathFail"},
	} {
		out.WriteString(`<div class="death-group">`)
		writeHeading(out, "span", group.label)
		for _, n := range []string{"1", "2", "3"} {
			if err := data.writeControl(out, control{
				ID:    group.id + n,
				Path:  "death." + group.key + n,
				Label: n,
				Type:  binding.ControlCheckbox,
			}); err != nil {
				return err
			}
		}
		out.WriteString(`</div>`)
	}
	out.WriteString(`</div>`)
	return nil
}

func armorTrainingRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	var out bytes.Buffer
	out.WriteString(`<div class="armor-training">`)
	writeHeading(&out, "span", labelOr(field.Label, "Armor Training"))
	for _, category := range armorCategories {
		if err := data.writeControl(&out, control{
			ID:    category.id,
			Path:  "proficiency.armor." + category.key,
			Label: category.label,
			Type:  binding.ControlCheckbox,
		}); err != nil {
			return err
		}
	}
	out.WriteString(`</div>`)
	buf.Write(out.Bytes())
	return nil
}

func coinPurseRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	var out bytes.Buffer
	out.WriteString(`<div class="coin-purse">`)
	writeHeading(&out, "span", labelOr(field.Label, "Coins"))
	out.WriteString(`<div class="coins">`)
	for _, code := range schema.CoinCodes {
		if err := data.writeControl(&out, control{
			ID:    code,
			Path:  "coins." + code,
			Label: strings.ToUpper(code),
			Type:  binding.ControlText,
		}); err != nil {
			return err
		}
	}
	out.WriteString(`</div></div>`)
	buf.Write(out.Bytes())
	return nil
}

// combatBlockRenderer emits armor class, hit points, hit dice, death saves
// and the passive scores as one block.
func combatBlockRenderer(buf *bytes.Buffer, _ schema.Field, data ComponentData) error {
	groups := []struct {
		class, title string
		controls     []control
	}{
		{class: "combat-defense", controls: []control{
			{ID: "armorClass", Path: "combat.ac", Label: "Armor Class"},
			{ID: "shield", Path: "combat.shield", Label: "Shield", Type: binding.ControlCheckbox},
		}},
		{class: "combat-hp", title: "Hit Points", controls: []control{
			{ID: "hpCurrent", Path: "hp.current", Label: "Current"},
			{ID: "hpTemp", Path: "hp.temp", Label: "Temporary"},
			{ID: "hpMax", Path: "hp.max", Label: "Maximum"},
		}},
		{class: "combat-hit-dice", title: "Hit Dice", controls: []control{
			{ID: "hitDiceSpent", Path: "hitDice.spent", Label: "Spent"},
			{ID: "hitDiceMax", Path: "hitDice.max", Label: "Maximum"},
			{ID: "hitDiceType", Path: "hitDice.type", Label: "HP Die"},
		}},
	}
	stats := []control{
		{ID: "initiative", Path: "combat.initiative", Label: "Initiative"},
		{ID: "speed", Path: "combat.speed", Label: "Speed"},
		{ID: "passivePerception", Path: "skills.passivePerception", Label: "Passive Perception"},
		{ID: "passiveInvestigation", Path: "skills.passiveInvestigation", Label: "Passive Investigation"},
	}

	var out bytes.Buffer
	out.WriteString(`<div class="combat-block">`)
	for _, group := range groups {
		out.WriteString(`<div class="` + group.class + `">`)
		writeHeading(&out, "h4", group.title)
		if err := writeControls(&out, data, group.controls); err != nil {
			return err
		}
		out.WriteString(`</div>`)
	}
	if err := writeDeathSaves(&out, data); err != nil {
		return err
	}
	out.WriteString(`<div class="combat-stats">`)
	if err := writeControls(&out, data, stats); err != nil {
		return err
	}
	out.WriteString(`</div></div>`)
	buf.Write(out.Bytes())
	return nil
}

func writeControls(out *bytes.Buffer, data ComponentData, controls []control) error {
	for _, c := range controls {
		if c.Type == "" {
			c.Type = binding.ControlText
		}
		if err := data.writeControl(out, c); err != nil {
			return err
		}
	}
	return nil
}

func labelOr(label, fallback string) string {
	if strings.TrimSpace(label) != "" {
		return label
	}
	return fallback
}
