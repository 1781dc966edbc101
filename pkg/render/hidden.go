package render

import (
	"fmt"
	"sort"
	"strings"
)

// Hidden field names the sheet form carries alongside its bound controls.
// They have no data-field attribute, so harvesting never picks them up.
const (
	HiddenEntityID      = "_entity_id"
	HiddenSchema        = "_schema"
	HiddenSchemaVersion = "_schema_version"
)

// HiddenField is a hidden form input emitted with the form.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// EntityIDField carries the id of the entity being edited.
func EntityIDField(id string) HiddenField {
	return Hidden(HiddenEntityID, id)
}

// SchemaFields identify the schema document the form was built from so a
// submission can be matched against the same version.
func SchemaFields(name, version string) []HiddenField {
	fields := []HiddenField{Hidden(HiddenSchema, name)}
	if strings.TrimSpace(version) != "" {
		fields = append(fields, Hidden(HiddenSchemaVersion, version))
	}
	return fields
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns the fields ordered by name for deterministic
// rendering.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
