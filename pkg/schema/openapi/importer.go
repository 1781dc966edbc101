// Package openapi derives sheet schema documents from OpenAPI component
// schemas, so an entity type published by the game API can get a usable
// form without hand-writing one.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-sheetform/pkg/datapath"
	"github.com/goliatone/go-sheetform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

// Extension keys read from component properties.
const (
	KindExtension  = "x-sheetform-kind"
	LabelExtension = "x-sheetform-label"
)

const (
	defaultMaxDepth       = 4
	textareaLengthCutover = 200
	generalSectionID      = "general"
)

// ErrUnknownComponent is returned when the requested component schema is
// not declared by the document.
var ErrUnknownComponent = errors.New("openapi: unknown component schema")

type Option func(*config)

type config struct {
	name              string
	entityPath        string
	maxDepth          int
	allowExternalRefs bool
}

// WithName sets the document name. It defaults to the lowercased component.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = strings.TrimSpace(name)
	}
}

// WithEntityPath records the API path entities of this type live under.
func WithEntityPath(path string) Option {
	return func(cfg *config) {
		cfg.entityPath = strings.TrimSpace(path)
	}
}

// WithMaxDepth bounds how deep nested objects are expanded.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// WithExternalRefs allows the loader to follow references outside the
// document.
func WithExternalRefs(allowed bool) Option {
	return func(cfg *config) {
		cfg.allowExternalRefs = allowed
	}
}

// Components lists the component schema names declared by data.
func Components(ctx context.Context, data []byte) ([]string, error) {
	spec, err := load(ctx, data, false)
	if err != nil {
		return nil, err
	}
	if spec.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Import builds a schema document from the named component schema of an
// OpenAPI document. Top-level objects become sections, scalar properties
// become simple fields, arrays of objects become tables, and a property
// can force a composite kind through the x-sheetform-kind extension.
func Import(ctx context.Context, data []byte, component string, options ...Option) (schema.Document, error) {
	cfg := config{maxDepth: defaultMaxDepth}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	spec, err := load(ctx, data, cfg.allowExternalRefs)
	if err != nil {
		return schema.Document{}, err
	}
	var ref *openapi3.SchemaRef
	if spec.Components != nil {
		ref = spec.Components.Schemas[component]
	}
	if ref == nil || ref.Value == nil {
		return schema.Document{}, fmt.Errorf("%w: %q", ErrUnknownComponent, component)
	}

	doc := schema.Document{
		Name:       cfg.name,
		Title:      strings.TrimSpace(ref.Value.Title),
		EntityPath: cfg.entityPath,
	}
	if doc.Name == "" {
		doc.Name = strings.ToLower(component)
	}
	if doc.Title == "" {
		doc.Title = gotemplate.Humanize(component)
	}
	if spec.Info != nil {
		doc.Version = spec.Info.Version
	}

	b := &builder{cfg: cfg, visiting: map[*openapi3.Schema]bool{ref.Value: true}}
	general := schema.Section{ID: generalSectionID, Title: "General"}
	for _, name := range sortedProperties(ref.Value) {
		prop := ref.Value.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		if isObject(prop.Value) && extensionString(prop.Value, KindExtension) == "" {
			section := schema.Section{
				ID:     name,
				Title:  label(name, prop.Value),
				Notes:  prop.Value.Description,
				Fields: b.objectFields(prop.Value, name, 1),
			}
			if len(section.Fields) > 0 {
				doc.Sections = append(doc.Sections, section)
			}
			continue
		}
		if field, ok := b.field(name, prop.Value, name, 1); ok {
			general.Fields = append(general.Fields, field)
		}
	}
	if len(general.Fields) > 0 {
		doc.Sections = append([]schema.Section{general}, doc.Sections...)
	}

	if err := schema.Validate(doc); err != nil {
		return schema.Document{}, fmt.Errorf("openapi: component %q: %w", component, err)
	}
	return doc, nil
}

func load(ctx context.Context, data []byte, external bool) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: external,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return spec, nil
}

type builder struct {
	cfg      config
	visiting map[*openapi3.Schema]bool
}

func (b *builder) objectFields(src *openapi3.Schema, path string, depth int) []schema.Field {
	if depth > b.cfg.maxDepth {
		return nil
	}
	b.visiting[src] = true
	defer delete(b.visiting, src)

	var fields []schema.Field
	for _, name := range sortedProperties(src) {
		prop := src.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		if field, ok := b.field(name, prop.Value, datapath.Join(path, name), depth+1); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func (b *builder) field(name string, src *openapi3.Schema, path string, depth int) (schema.Field, bool) {
	field := schema.Field{
		ID:    gotemplate.IDSafe(path),
		Label: label(name, src),
		Path:  path,
		Notes: src.Description,
	}

	switch kind := schema.Kind(extensionString(src, KindExtension)); {
	case kind == "" || kind == schema.KindTable:
	case kind.Simple():
		field.Kind = kind
		field.Options = enumOptions(src)
		return field, true
	default:
		field.Kind = kind
		field.Path = ""
		field.BasePath = path
		if kind == schema.KindAbilityBlock {
			field.AbilityKey = name
		}
		if kind.Repeating() {
			field.ContainerID = field.ID + "Rows"
		}
		return field, true
	}

	switch {
	case isObject(src):
		if b.visiting[src] {
			return schema.Field{}, false
		}
		nested := b.objectFields(src, path, depth)
		if len(nested) == 0 {
			return schema.Field{}, false
		}
		return schema.Field{
			ID:     field.ID,
			Kind:   schema.KindSection,
			Title:  field.Label,
			Notes:  field.Notes,
			Fields: nested,
		}, true
	case schemaType(src) == openapi3.TypeArray:
		return b.arrayField(field, src)
	case len(src.Enum) > 0:
		field.Kind = schema.KindSelect
		field.Options = enumOptions(src)
	case schemaType(src) == openapi3.TypeInteger, schemaType(src) == openapi3.TypeNumber:
		field.Kind = schema.KindNumber
	case schemaType(src) == openapi3.TypeBoolean:
		field.Kind = schema.KindCheckbox
	case src.MaxLength != nil && *src.MaxLength > textareaLengthCutover:
		field.Kind = schema.KindTextarea
	default:
		field.Kind = schema.KindText
	}
	return field, true
}

func (b *builder) arrayField(field schema.Field, src *openapi3.Schema) (schema.Field, bool) {
	if src.Items == nil || src.Items.Value == nil || !isObject(src.Items.Value) {
		field.Kind = schema.KindTextarea
		return field, true
	}
	items := src.Items.Value
	table := schema.Field{
		ID:          field.ID,
		Label:       field.Label,
		Kind:        schema.KindTable,
		Notes:       field.Notes,
		ContainerID: field.ID + "Rows",
		BasePath:    field.Path,
	}
	if src.MaxItems != nil && *src.MaxItems > 0 {
		table.RowCount = int(*src.MaxItems)
	}
	for _, name := range sortedProperties(items) {
		prop := items.Properties[name]
		if prop == nil || prop.Value == nil || isObject(prop.Value) || schemaType(prop.Value) == openapi3.TypeArray {
			continue
		}
		row := schema.RowField{Key: name, Header: label(name, prop.Value)}
		switch schemaType(prop.Value) {
		case openapi3.TypeInteger, openapi3.TypeNumber:
			row.Kind = schema.KindNumber
		case openapi3.TypeBoolean:
			row.Kind = schema.KindCheckbox
		}
		table.RowFields = append(table.RowFields, row)
	}
	if len(table.RowFields) == 0 {
		field.Kind = schema.KindTextarea
		return field, true
	}
	return table, true
}

func enumOptions(src *openapi3.Schema) []schema.Option {
	var out []schema.Option
	for _, value := range src.Enum {
		if value == nil {
			continue
		}
		out = append(out, schema.Option{Value: fmt.Sprint(value)})
	}
	return out
}

func sortedProperties(src *openapi3.Schema) []string {
	names := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isObject(src *openapi3.Schema) bool {
	return len(src.Properties) > 0 && (src.Type == nil || schemaType(src) == openapi3.TypeObject)
}

func schemaType(src *openapi3.Schema) string {
	if src.Type == nil {
		return ""
	}
	values := src.Type.Slice()
	for _, value := range values {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func label(name string, src *openapi3.Schema) string {
	if custom := extensionString(src, LabelExtension); custom != "" {
		return custom
	}
	if title := strings.TrimSpace(src.Title); title != "" {
		return title
	}
	return gotemplate.Humanize(name)
}

func extensionString(src *openapi3.Schema, key string) string {
	if src == nil || src.Extensions == nil {
		return ""
	}
	value, ok := src.Extensions[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
