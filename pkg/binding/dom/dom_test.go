package dom

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sheetform/pkg/binding"
)

const sheetMarkup = `<section class="sheet-section"><div class="form-grid">
<input id="n" name="character.name" type="text" data-field="character.name" value="" />
<input id="ac" name="combat.ac" type="number" data-field="combat.ac" value="" />
<label><input id="shield" name="combat.shield" type="checkbox" data-field="combat.shield" value="true" /> Shield</label>
<textarea id="tools" name="proficiency.tools" data-field="proficiency.tools" rows="3"></textarea>
<select id="alignment" name="character.alignment" data-field="character.alignment"><option value="" selected>—</option><option value="Lawful Good">Lawful Good</option><option>Chaotic Neutral</option></select>
<input type="hidden" name="_schema" value="player" />
<div id="weaponRows" data-repeating="table" data-rows="2" data-sequence="weapons"></div>
</div></section>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseFragment(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func controlPaths(doc *Document) []string {
	var out []string
	for _, control := range doc.Controls() {
		out = append(out, control.Path()+":"+string(control.Type()))
	}
	return out
}

func TestControlsDiscovery(t *testing.T) {
	doc := mustParse(t, sheetMarkup)
	want := []string{
		"character.name:text",
		"combat.ac:number",
		"combat.shield:checkbox",
		"proficiency.tools:textarea",
		"character.alignment:select",
	}
	if diff := cmp.Diff(want, controlPaths(doc)); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulateHarvestRoundTrip(t *testing.T) {
	doc := mustParse(t, sheetMarkup)
	entity := map[string]any{
		"character":   map[string]any{"name": `Aria "the <Bold>"`, "alignment": "Chaotic Neutral"},
		"combat":      map[string]any{"ac": 15, "shield": true},
		"proficiency": map[string]any{"tools": map[string]any{"thieves": true}},
	}

	binding.Populate(doc, entity)
	rendered := doc.String()
	if strings.Contains(rendered, "<Bold>") {
		t.Fatalf("populated markup is not escaped:\n%s", rendered)
	}

	reparsed := mustParse(t, rendered)
	got := binding.Harvest(reparsed)
	want := map[string]any{
		"character":   map[string]any{"name": `Aria "the <Bold>"`, "alignment": "Chaotic Neutral"},
		"combat":      map[string]any{"ac": 15, "shield": true},
		"proficiency": map[string]any{"tools": map[string]any{"thieves": true}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(got, binding.Harvest(reparsed)); diff != "" {
		t.Fatalf("harvest is not idempotent (-first +second):\n%s", diff)
	}
}

func TestSelectWithoutSelectionReadsFirstOption(t *testing.T) {
	doc := mustParse(t, `<select data-field="size"><option value="Tiny">Tiny</option><option value="Huge">Huge</option></select>`)
	controls := doc.Controls()
	if controls[0].Value() != "Tiny" {
		t.Fatalf("expected first option, got %q", controls[0].Value())
	}
	controls[0].SetValue("Huge")
	if controls[0].Value() != "Huge" {
		t.Fatalf("expected Huge, got %q", controls[0].Value())
	}
}

func TestReplaceChildrenClearsFirst(t *testing.T) {
	doc := mustParse(t, sheetMarkup)
	rows := `<div class="table-row"><input data-field="weapons.0.name" value="Sword" /></div><div class="table-row"><input data-field="weapons.1.name" value="" /></div>`

	for i := 0; i < 2; i++ {
		ok, err := doc.ReplaceChildren("weaponRows", rows)
		if err != nil || !ok {
			t.Fatalf("replace children: ok=%v err=%v", ok, err)
		}
	}
	if count := strings.Count(doc.String(), `class="table-row"`); count != 2 {
		t.Fatalf("expected 2 rows after repeated materialisation, got %d", count)
	}

	harvested := binding.Harvest(doc)
	weapons, ok := harvested["weapons"].([]any)
	if !ok || len(weapons) != 2 {
		t.Fatalf("expected two harvested weapons, got %#v", harvested["weapons"])
	}

	ok, err := doc.ReplaceChildren("missing", rows)
	if err != nil || ok {
		t.Fatalf("missing container should be a no-op, got ok=%v err=%v", ok, err)
	}
}

func TestApplySubmission(t *testing.T) {
	doc := mustParse(t, sheetMarkup)
	binding.Populate(doc, map[string]any{
		"character": map[string]any{"name": "Aria"},
		"combat":    map[string]any{"shield": true, "ac": 12},
	})

	doc.ApplySubmission(url.Values{
		"character.name":      {"Aria Shadowmoon"},
		"combat.ac":           {"14abc"},
		"character.alignment": {"Lawful Good"},
		"proficiency.tools":   {"not json"},
		"_schema":             {"player"},
	})

	want := map[string]any{
		"character":   map[string]any{"name": "Aria Shadowmoon", "alignment": "Lawful Good"},
		"combat":      map[string]any{"ac": 14, "shield": false},
		"proficiency": map[string]any{"tools": "not json"},
	}
	if diff := cmp.Diff(want, binding.Harvest(doc)); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFullDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader("<!DOCTYPE html><html><body>" + sheetMarkup + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Controls()) != 5 {
		t.Fatalf("expected 5 controls, got %d", len(doc.Controls()))
	}
	if _, ok := doc.ElementByID("weaponRows"); !ok {
		t.Fatalf("expected container lookup to succeed")
	}
	if !strings.HasPrefix(doc.String(), "<!DOCTYPE html>") {
		t.Fatalf("expected doctype in rendered document")
	}
}

func TestCheckboxStoredStringRoundTrip(t *testing.T) {
	doc := mustParse(t, `<input type="checkbox" name="flag" data-field="flag" value="true" />`)
	binding.Populate(doc, map[string]any{"flag": "false"})

	reparsed := mustParse(t, doc.String())
	if got := binding.Harvest(reparsed)["flag"]; got != true {
		t.Fatalf("flag = %v, want true", got)
	}

	reparsed.ApplySubmission(url.Values{"flag": {"off"}})
	if got := binding.Harvest(reparsed)["flag"]; got != false {
		t.Fatalf("submitted off: flag = %v, want false", got)
	}
}

func TestHarvestCompactsDeclaredSequencesOnly(t *testing.T) {
	doc := mustParse(t, `<div id="gearRows" data-repeating="table" data-sequence="gear">`+
		`<input data-field="gear.0.item" value="Rope" /><input data-field="gear.1.item" value="Torch" /></div>`+
		`<div id="spellSlots" data-repeating="slotCounter">`+
		`<input type="number" data-field="spellSlots.0.total" value="1" /><input type="number" data-field="spellSlots.1.total" value="2" /></div>`+
		`<textarea data-field="features">{"0":"a","1":"b"}</textarea>`)

	want := map[string]any{
		"gear":       []any{map[string]any{"item": "Rope"}, map[string]any{"item": "Torch"}},
		"spellSlots": map[string]any{"0": map[string]any{"total": 1}, "1": map[string]any{"total": 2}},
		"features":   map[string]any{"0": "a", "1": "b"},
	}
	if diff := cmp.Diff(want, binding.Harvest(doc)); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}
