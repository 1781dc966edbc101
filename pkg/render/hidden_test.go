package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sheetform/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	fields := append([]render.HiddenField{
		render.EntityIDField("42"),
		render.Hidden("  ", "skip"),
	}, render.SchemaFields("player", "1")...)
	merged := render.MergeHiddenFields(base, fields...)

	wantMerged := map[string]string{
		"existing":        "keep",
		"_entity_id":      "42",
		"_schema":         "player",
		"_schema_version": "1",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_entity_id", Value: "42"},
		{Name: "_schema", Value: "player"},
		{Name: "_schema_version", Value: "1"},
		{Name: "existing", Value: "keep"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaFields_OmitsEmptyVersion(t *testing.T) {
	got := render.SchemaFields("monster", "")
	want := []render.HiddenField{{Name: "_schema", Value: "monster"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema fields mismatch (-want +got):\n%s", diff)
	}
}
