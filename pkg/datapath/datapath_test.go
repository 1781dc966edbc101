package datapath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGet_WalksNestedMappingsAndSequences(t *testing.T) {
	entity := map[string]any{
		"abilities": map[string]any{
			"str": map[string]any{"mod": 3.0},
		},
		"weapons": []any{
			map[string]any{"name": "Longsword"},
		},
		"name": "Aria",
	}

	tests := []struct {
		name string
		path string
		want any
	}{
		{name: "nested mapping", path: "abilities.str.mod", want: 3.0},
		{name: "sequence index", path: "weapons.0.name", want: "Longsword"},
		{name: "missing leaf", path: "abilities.dex.mod", want: nil},
		{name: "scalar intermediate", path: "name.first", want: nil},
		{name: "index out of range", path: "weapons.4.name", want: nil},
		{name: "empty path", path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Get(entity, tt.path)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Get(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestLookup_DistinguishesNilFromAbsent(t *testing.T) {
	entity := map[string]any{"notes": nil}

	if _, ok := Lookup(entity, "notes"); !ok {
		t.Fatalf("expected explicit nil to be found")
	}
	if _, ok := Lookup(entity, "missing"); ok {
		t.Fatalf("expected missing key to be absent")
	}
	if _, ok := Lookup(nil, "anything"); ok {
		t.Fatalf("expected nil root to report absent")
	}
}

func TestSet_CreatesIntermediateMappings(t *testing.T) {
	got := Set(nil, "spellSlots.1.spent.2", true)

	want := map[string]any{
		"spellSlots": map[string]any{
			"1": map[string]any{
				"spent": map[string]any{"2": true},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_ReplacesScalarIntermediate(t *testing.T) {
	root := map[string]any{"hp": "full"}
	Set(root, "hp.current", "12")

	want := map[string]any{"hp": map[string]any{"current": "12"}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_IndexesExistingSequence(t *testing.T) {
	root := map[string]any{
		"weapons": []any{map[string]any{"name": "Dagger"}},
	}
	Set(root, "weapons.0.bonus", "+4")
	Set(root, "weapons.2.name", "Bow")

	want := map[string]any{
		"weapons": map[string]any{
			"0": map[string]any{"name": "Dagger", "bonus": "+4"},
			"2": map[string]any{"name": "Bow"},
		},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_EmptyPathIsNoop(t *testing.T) {
	root := map[string]any{"name": "Aria"}
	got := Set(root, "  ", "ignored")
	if diff := cmp.Diff(map[string]any{"name": "Aria"}, got); diff != "" {
		t.Fatalf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestSetThenGet_RoundTrips(t *testing.T) {
	paths := []string{
		"name",
		"abilities.str.mod",
		"weapons.0.name",
		"spellSlots.9.spent.1",
	}
	for _, path := range paths {
		root := Set(map[string]any{}, path, "value")
		if got := Get(root, path); got != "value" {
			t.Fatalf("Get(Set(%q)) = %v, want value", path, got)
		}
	}
}

func TestCompactSequences(t *testing.T) {
	in := map[string]any{
		"weapons": map[string]any{
			"0": map[string]any{"name": "Dagger"},
			"1": map[string]any{"name": "Bow"},
		},
		"spellSlots": map[string]any{
			"1": map[string]any{
				"spent": map[string]any{"1": true, "2": false},
			},
		},
		"gaps":   map[string]any{"0": "a", "2": "c"},
		"padded": map[string]any{"00": "a"},
	}

	want := map[string]any{
		"weapons": []any{
			map[string]any{"name": "Dagger"},
			map[string]any{"name": "Bow"},
		},
		"spellSlots": map[string]any{
			"1": map[string]any{
				"spent": map[string]any{"1": true, "2": false},
			},
		},
		"gaps":   map[string]any{"0": "a", "2": "c"},
		"padded": map[string]any{"00": "a"},
	}

	if diff := cmp.Diff(want, CompactSequences(in)); diff != "" {
		t.Fatalf("CompactSequences mismatch (-want +got):\n%s", diff)
	}
}

func TestSequenceBase(t *testing.T) {
	tests := map[string]string{
		"armor_class.0.value": "armor_class",
		"a.b.3.c.0":           "a.b",
		"character.name":      "",
		"0.name":              "",
		"weapons.01.name":     "",
		"":                    "",
	}
	for in, want := range tests {
		if got := SequenceBase(in); got != want {
			t.Errorf("SequenceBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompactAt(t *testing.T) {
	root := map[string]any{
		"character": map[string]any{
			"gear": map[string]any{
				"0": map[string]any{"tags": map[string]any{"0": "x"}},
				"1": map[string]any{"tags": map[string]any{"0": "y"}},
			},
		},
		"spellSlots": map[string]any{"0": 1, "1": 2},
	}

	if !CompactAt(root, "character.gear") {
		t.Fatalf("expected character.gear to compact")
	}
	if CompactAt(root, "missing") || CompactAt(root, "character.gear.0.tags.0") {
		t.Fatalf("expected missing and scalar paths to be left alone")
	}

	want := map[string]any{
		"character": map[string]any{
			"gear": []any{
				map[string]any{"tags": map[string]any{"0": "x"}},
				map[string]any{"tags": map[string]any{"0": "y"}},
			},
		},
		"spellSlots": map[string]any{"0": 1, "1": 2},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("CompactAt mismatch (-want +got):\n%s", diff)
	}
}

func TestPaths_ListsLeaves(t *testing.T) {
	entity := map[string]any{
		"name":    "Aria",
		"combat":  map[string]any{"ac": 15.0},
		"weapons": []any{map[string]any{"name": "Dagger"}},
	}

	want := []string{"combat.ac", "name", "weapons.0.name"}
	if diff := cmp.Diff(want, Paths(entity)); diff != "" {
		t.Fatalf("Paths mismatch (-want +got):\n%s", diff)
	}
}
