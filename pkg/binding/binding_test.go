package binding

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleSpecs() []ControlSpec {
	return []ControlSpec{
		{ID: "characterName", Path: "character.name", Type: ControlText},
		{ID: "xp", Path: "progress.xp", Type: ControlNumber},
		{ID: "shield", Path: "combat.shield", Type: ControlCheckbox},
		{ID: "senses", Path: "senses", Type: ControlTextarea},
		{ID: "alignment", Path: "character.alignment", Type: ControlSelect, Options: []string{"Lawful Good", "True Neutral"}},
		{Path: "weapons.0.name", Type: ControlText, Sequence: "weapons"},
		{Path: "weapons.1.name", Type: ControlText, Sequence: "weapons"},
		{Path: "spellSlots.1.spent.1", Type: ControlCheckbox},
	}
}

func TestPopulateHarvest_RoundTrip(t *testing.T) {
	entity := map[string]any{
		"character": map[string]any{"name": "Aria", "alignment": "True Neutral"},
		"progress":  map[string]any{"xp": 300.0},
		"combat":    map[string]any{"shield": true},
		"senses":    "Darkvision 60 ft.",
		"weapons": []any{
			map[string]any{"name": "Longsword"},
			map[string]any{"name": "Shortbow"},
		},
		"spellSlots": map[string]any{
			"1": map[string]any{"spent": map[string]any{"1": true}},
		},
	}

	form := NewMemoryForm(sampleSpecs())
	Populate(form, entity)
	got := Harvest(form)

	want := map[string]any{
		"character": map[string]any{"name": "Aria", "alignment": "True Neutral"},
		"progress":  map[string]any{"xp": 300},
		"combat":    map[string]any{"shield": true},
		"senses":    "Darkvision 60 ft.",
		"weapons": []any{
			map[string]any{"name": "Longsword"},
			map[string]any{"name": "Shortbow"},
		},
		"spellSlots": map[string]any{
			"1": map[string]any{"spent": map[string]any{"1": true}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvest_Idempotent(t *testing.T) {
	form := NewMemoryForm(sampleSpecs())
	form.Set("character.name", "Bryn")
	form.Set("progress.xp", "12 gp")
	form.Set("senses", `{"darkvision": 60}`)

	first := Harvest(form)
	second := Harvest(form)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("harvest not idempotent (-first +second):\n%s", diff)
	}
	if first["progress"].(map[string]any)["xp"] != 12 {
		t.Fatalf("expected leading integer parse, got %v", first["progress"])
	}
	if diff := cmp.Diff(map[string]any{"darkvision": 60.0}, first["senses"]); diff != "" {
		t.Fatalf("expected textarea JSON parse (-want +got):\n%s", diff)
	}
}

func TestHarvest_BlankFormYieldsEmptyValues(t *testing.T) {
	got := Harvest(NewMemoryForm(sampleSpecs()))

	want := map[string]any{
		"character":  map[string]any{"name": "", "alignment": ""},
		"progress":   map[string]any{"xp": 0},
		"combat":     map[string]any{"shield": false},
		"senses":     "",
		"weapons":    []any{map[string]any{"name": ""}, map[string]any{"name": ""}},
		"spellSlots": map[string]any{"1": map[string]any{"spent": map[string]any{"1": false}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvest_KeepIndexMaps(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{{Path: "weapons.0.name", Type: ControlText, Sequence: "weapons"}})
	form.Set("weapons.0.name", "Dagger")

	got := Harvest(form, KeepIndexMaps())
	want := map[string]any{"weapons": map[string]any{"0": map[string]any{"name": "Dagger"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckboxCoercion(t *testing.T) {
	tests := []struct {
		name   string
		entity map[string]any
		want   bool
	}{
		{name: "true", entity: map[string]any{"flag": true}, want: true},
		{name: "false", entity: map[string]any{"flag": false}, want: false},
		{name: "truthy string", entity: map[string]any{"flag": "yes"}, want: true},
		{name: "string false is non-empty", entity: map[string]any{"flag": "false"}, want: true},
		{name: "string zero is non-empty", entity: map[string]any{"flag": "0"}, want: true},
		{name: "truthy number", entity: map[string]any{"flag": 1.0}, want: true},
		{name: "falsy zero", entity: map[string]any{"flag": 0.0}, want: false},
		{name: "falsy empty string", entity: map[string]any{"flag": ""}, want: false},
		{name: "absent", entity: map[string]any{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NewMemoryForm([]ControlSpec{{Path: "flag", Type: ControlCheckbox}})
			Populate(form, tt.entity)
			got := Harvest(form)["flag"]
			if got != tt.want {
				t.Fatalf("flag = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPopulate_LeavesMissingValuesUntouched(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{
		{Path: "name", Type: ControlText},
		{Path: "notes", Type: ControlText},
	})
	form.Set("name", "default")
	form.Set("notes", "keep")

	Populate(form, map[string]any{"notes": nil})

	name, _ := form.Control("name")
	notes, _ := form.Control("notes")
	if name.Value() != "default" || notes.Value() != "keep" {
		t.Fatalf("expected untouched controls, got %q / %q", name.Value(), notes.Value())
	}
}

func TestPopulate_NumbersRenderZero(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{{Path: "hp.temp", Type: ControlText}})
	Populate(form, map[string]any{"hp": map[string]any{"temp": 0.0}})

	control, _ := form.Control("hp.temp")
	if control.Value() != "0" {
		t.Fatalf("expected zero to render as \"0\", got %q", control.Value())
	}
}

func TestPopulate_TextareaStructuredValues(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{{Path: "actions", Type: ControlTextarea}})
	Populate(form, map[string]any{
		"actions": []any{map[string]any{"name": "Bite", "desc": "<b>2d6</b>"}},
	})

	control, _ := form.Control("actions")
	want := "{\n  \"desc\": \"<b>2d6</b>\",\n  \"name\": \"Bite\"\n}"
	if control.Value() != want {
		t.Fatalf("textarea mismatch\nwant: %q\n got: %q", want, control.Value())
	}
}

func TestHarvest_NilFormIsEmpty(t *testing.T) {
	if got := Harvest(nil); len(got) != 0 {
		t.Fatalf("expected empty entity, got %v", got)
	}
}

func TestHarvest_CompactsOnlyRowSequences(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{
		{Path: "gear.0.item", Type: ControlText, Sequence: "gear"},
		{Path: "gear.1.item", Type: ControlText, Sequence: "gear"},
		{Path: "spellSlots.0.total", Type: ControlNumber},
		{Path: "spellSlots.1.total", Type: ControlNumber},
		{Path: "features", Type: ControlTextarea},
	})
	entity := map[string]any{
		"gear": []any{map[string]any{"item": "Rope"}, map[string]any{"item": "Torch"}},
		"spellSlots": map[string]any{
			"0": map[string]any{"total": 1.0},
			"1": map[string]any{"total": 1.0},
		},
		"features": map[string]any{"0": "a", "1": "b"},
	}
	Populate(form, entity)

	got := Harvest(form)
	want := map[string]any{
		"gear": []any{map[string]any{"item": "Rope"}, map[string]any{"item": "Torch"}},
		"spellSlots": map[string]any{
			"0": map[string]any{"total": 1},
			"1": map[string]any{"total": 1},
		},
		"features": map[string]any{"0": "a", "1": "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvest_RowTextareaKeepsParsedObject(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{
		{Path: "actions.0.detail", Type: ControlTextarea, Sequence: "actions"},
	})
	form.Set("actions.0.detail", `{"0":"a","1":"b"}`)

	got := Harvest(form)
	want := map[string]any{
		"actions": []any{map[string]any{"detail": map[string]any{"0": "a", "1": "b"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvest_LargeNumbersClamp(t *testing.T) {
	form := NewMemoryForm([]ControlSpec{{Path: "progress.xp", Type: ControlNumber}})
	Populate(form, map[string]any{"progress": map[string]any{"xp": 1e20}})

	got := Harvest(form)["progress"].(map[string]any)["xp"]
	if got != math.MaxInt {
		t.Fatalf("xp = %v, want %d", got, math.MaxInt)
	}
}
