package sheetform

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

func TestGenerateHTML_PlayerSheet(t *testing.T) {
	entity := map[string]any{"character": map[string]any{"name": "Aria"}}

	out, err := GenerateHTML(context.Background(), "player", entity)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `data-field="character.name"`) || !strings.Contains(html, `value="Aria"`) {
		t.Fatalf("expected bound character name, got:\n%s", html)
	}
}

func TestBuildPopulateHarvest(t *testing.T) {
	result, err := Build([]schema.Section{{
		Title:  "Basics",
		Fields: []schema.Field{{ID: "n", Kind: schema.KindText, Path: "character.name"}},
	}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	form := binding.NewMemoryForm(result.Controls)
	Populate(form, map[string]any{"character": map[string]any{"name": "Aria"}})
	form.Set("character.name", "Aria Shadowmoon")

	want := map[string]any{"character": map[string]any{"name": "Aria Shadowmoon"}}
	if diff := cmp.Diff(want, Harvest(form)); diff != "" {
		t.Fatalf("harvest mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultSchemas(t *testing.T) {
	store, err := DefaultSchemas()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if diff := cmp.Diff([]string{"monster", "player"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
