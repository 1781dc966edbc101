package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDocument is returned when a store has no document under the
// requested name.
var ErrUnknownDocument = errors.New("schema: unknown document")

// Document is a named, versioned list of sections describing one entity
// type, such as a player character or a monster stat block.
type Document struct {
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// EntityPath is the API path the entity is read from and submitted to.
	EntityPath string    `json:"entityPath,omitempty" yaml:"entityPath,omitempty"`
	Sections   []Section `json:"sections" yaml:"sections"`

	Source Source `json:"-" yaml:"-"`
}

// Validate checks the structural rules the builder relies on: every simple
// field has a path, composite fields carry their parameters and container ids
// are unique. No two fields may bind the same path, and no field may bind a
// path nested under another field's path; composite kinds take part through
// Field.BoundPaths.
func Validate(doc Document) error {
	var errs []error
	paths := make(map[string]string)
	// ancestors maps every proper prefix of a bound path to that path.
	ancestors := make(map[string]string)
	containers := make(map[string]string)

	conflict := func(path string) (string, bool) {
		if prev, exists := paths[path]; exists {
			return fmt.Sprintf("path %q already bound by %s", path, prev), true
		}
		if nested, exists := ancestors[path]; exists {
			return fmt.Sprintf("path %q contains %q bound by %s", path, nested, paths[nested]), true
		}
		for i := strings.LastIndex(path, "."); i > 0; i = strings.LastIndex(path[:i], ".") {
			if prev, exists := paths[path[:i]]; exists {
				return fmt.Sprintf("path %q is nested under %q bound by %s", path, path[:i], prev), true
			}
		}
		return "", false
	}
	bind := func(field Field, where string) {
		bound := field.BoundPaths()
		for _, path := range bound {
			if msg, ok := conflict(path); ok {
				errs = append(errs, fmt.Errorf("%s: %s", where, msg))
				return
			}
		}
		for _, path := range bound {
			paths[path] = where
			for i := strings.LastIndex(path, "."); i > 0; i = strings.LastIndex(path[:i], ".") {
				ancestors[path[:i]] = path
			}
		}
	}

	var visit func(field Field, where string)
	visit = func(field Field, where string) {
		kind := field.ResolvedKind()
		label := field.ID
		if label == "" {
			label = field.Path
		}
		if label == "" {
			label = string(kind)
		}
		where = where + "/" + label

		switch {
		case kind.Simple():
			if strings.TrimSpace(field.Path) == "" {
				errs = append(errs, fmt.Errorf("%s: %s field has no path", where, kind))
				break
			}
			if kind == KindSelect && len(field.Options) == 0 {
				errs = append(errs, fmt.Errorf("%s: select field has no options", where))
			}
		case kind == KindSection:
			for _, child := range field.Fields {
				visit(child, where)
			}
		case kind == KindAbilityBlock:
			if strings.TrimSpace(field.AbilityKey) == "" {
				errs = append(errs, fmt.Errorf("%s: abilityBlock requires abilityKey", where))
			}
		case kind == KindTable:
			if strings.TrimSpace(field.ContainerID) == "" || strings.TrimSpace(field.BasePath) == "" {
				errs = append(errs, fmt.Errorf("%s: table requires containerId and basePath", where))
			}
			if len(field.RowFields) == 0 {
				errs = append(errs, fmt.Errorf("%s: table requires rowFields", where))
			}
		case kind == KindSlotCounter:
			for _, child := range field.Fields {
				visit(child, where)
			}
		}
		bind(field, where)

		if structure, ok := RepeatingStructureFor(field); ok && structure.ContainerID != "" {
			if prev, exists := containers[structure.ContainerID]; exists {
				errs = append(errs, fmt.Errorf("%s: container id %q already used by %s", where, structure.ContainerID, prev))
			} else {
				containers[structure.ContainerID] = where
			}
		}
	}

	for idx, section := range doc.Sections {
		where := section.Title
		if where == "" {
			where = fmt.Sprintf("section[%d]", idx)
		}
		for _, field := range section.Fields {
			visit(field, where)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("schema: document %q (%s) is invalid: %w", doc.Name, location(doc.Source), errors.Join(errs...))
}
