package schema

import (
	"strconv"
	"strings"
)

// CoinCodes are the denominations bound by a coin purse, in display order.
var CoinCodes = []string{"cp", "sp", "ep", "gp", "pp"}

// ArmorCategories are the keys bound by an armor training group.
var ArmorCategories = []string{"light", "medium", "heavy", "shields"}

var combatPaths = []string{
	"combat.ac", "combat.shield",
	"hp.current", "hp.temp", "hp.max",
	"hitDice.spent", "hitDice.max", "hitDice.type",
	"combat.initiative", "combat.speed",
	"skills.passivePerception", "skills.passiveInvestigation",
}

// BoundPaths lists every entity path the field binds directly. Sections and
// the leading fields of a slot counter are not included; their children
// report their own paths. Unknown kinds bind nothing.
func (f Field) BoundPaths() []string {
	switch kind := f.ResolvedKind(); {
	case kind.Simple():
		if path := strings.TrimSpace(f.Path); path != "" {
			return []string{path}
		}
		return nil
	case kind == KindAbilityBlock:
		key := strings.TrimSpace(f.AbilityKey)
		if key == "" {
			return nil
		}
		out := []string{
			"abilities." + key + ".mod",
			"abilities." + key + ".score",
			"saves." + key + ".value",
			"saves." + key + ".prof",
		}
		for _, skill := range f.Skills {
			if skill = strings.TrimSpace(skill); skill != "" {
				out = append(out, "skills."+skill+".value", "skills."+skill+".prof")
			}
		}
		return out
	case kind == KindCombatBlock:
		return append(append([]string(nil), combatPaths...), deathSavePaths()...)
	case kind == KindDeathSaves:
		return deathSavePaths()
	case kind == KindCoinPurse:
		out := make([]string, 0, len(CoinCodes))
		for _, code := range CoinCodes {
			out = append(out, "coins."+code)
		}
		return out
	case kind == KindArmorTraining:
		out := make([]string, 0, len(ArmorCategories))
		for _, key := range ArmorCategories {
			out = append(out, "proficiency.armor."+key)
		}
		return out
	case kind == KindTable, kind == KindAttunements:
		structure, _ := RepeatingStructureFor(f)
		base := strings.TrimSpace(structure.BasePath)
		if base == "" {
			return nil
		}
		keys := []string{"item", "notes"}
		if kind == KindTable {
			keys = nil
			for _, rf := range structure.RowFields {
				keys = append(keys, rf.Key)
			}
		}
		var out []string
		for i := 0; i < structure.RowCount; i++ {
			for _, key := range keys {
				out = append(out, base+"."+strconv.Itoa(i)+"."+key)
			}
		}
		return out
	case kind == KindSlotCounter:
		var out []string
		for _, level := range f.SlotLevels() {
			l := strconv.Itoa(level.Level)
			out = append(out, "spellSlots."+l+".total")
			for n := 1; n <= level.Slots; n++ {
				out = append(out, "spellSlots."+l+".spent."+strconv.Itoa(n))
			}
		}
		return out
	}
	return nil
}

func deathSavePaths() []string {
	var out []string
	for _, group := range []string{"success", "fail"} {
		for n := 1; n <= 3; n++ {
			out = append(out, "death."+group+strconv.Itoa(n))
		}
	}
	return out
}
