package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/goliatone/go-sheetform/pkg/binding"
	"github.com/goliatone/go-sheetform/pkg/binding/dom"
	"github.com/goliatone/go-sheetform/pkg/client"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

const defaultRendererName = "html"

var (
	// ErrNoStore is returned by Submit when no entity store is configured.
	ErrNoStore = errors.New("orchestrator: no entity store configured")
	// ErrVersionMismatch is returned when a submission was produced by a
	// different version of the schema document than the one loaded now.
	ErrVersionMismatch = errors.New("orchestrator: schema version mismatch")
)

// EntityStore reads and writes entities. *client.Client satisfies it.
type EntityStore interface {
	FetchEntity(ctx context.Context, session client.Session, path, idHint string) (map[string]any, error)
	SubmitEntity(ctx context.Context, session client.Session, path, idHint string, entity map[string]any) (map[string]any, error)
}

// Logger matches *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithSchemas replaces the embedded schema documents.
func WithSchemas(store *schema.Store) Option {
	return func(o *Orchestrator) {
		o.schemas = store
	}
}

// WithRegistry injects a renderer registry. The HTML renderer is added to
// it when missing.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request names none
// and sends no Accept header.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = strings.TrimSpace(name)
	}
}

// WithHTMLRenderer supplies a configured sheet renderer, for example one
// with a theme selector or template overrides.
func WithHTMLRenderer(renderer *sheet.Renderer) Option {
	return func(o *Orchestrator) {
		o.html = renderer
	}
}

// WithStore sets where entities are fetched from and submitted to.
func WithStore(store EntityStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

func WithLogger(logger Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the full pipeline from schema document and
// entity to rendered output, and from form submission back to the API.
type Orchestrator struct {
	schemas         *schema.Store
	registry        *render.Registry
	defaultRenderer string
	html            *sheet.Renderer
	store           EntityStore
	logger          Logger
	initialiseErr   error
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// embedded schema documents and the built-in HTML and JSON renderers.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          log.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.schemas == nil {
		store, err := schema.Defaults()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load default schemas: %w", err)
			return
		}
		o.schemas = store
	}
	if o.html == nil {
		renderer, err := sheet.New(sheet.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: init html renderer: %w", err)
			return
		}
		o.html = renderer
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
	}
	if !o.registry.Has(o.html.Name()) {
		if err := o.registry.Register(o.html); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register html renderer: %w", err)
			return
		}
	}
	manifest := sheet.NewJSON(o.html)
	if !o.registry.Has(manifest.Name()) {
		if err := o.registry.Register(manifest); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register json renderer: %w", err)
		}
	}
}

// Schemas exposes the loaded schema documents.
func (o *Orchestrator) Schemas() *schema.Store {
	return o.schemas
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Request describes a form render.
type Request struct {
	// Schema names the document in the schema store. Ignored when Document
	// is set.
	Schema   string
	Document *schema.Document

	Session client.Session
	// EntityID is sent to the API as the id hint and carried in the form.
	EntityID string
	// Entity bypasses the fetch when non-nil.
	Entity map[string]any

	// Renderer names the renderer. When empty Accept is negotiated, then
	// the default renderer is used.
	Renderer string
	Accept   string

	// Staged renders repeating containers empty and fills them on the
	// parsed tree.
	Staged bool

	RenderOptions render.RenderOptions
}

// Response is a rendered form.
type Response struct {
	Body        []byte
	ContentType string
	Renderer    string
	Document    schema.Document
	Entity      map[string]any
}

// RenderForm fetches the entity (unless supplied), builds the form and
// renders it.
func (o *Orchestrator) RenderForm(ctx context.Context, req Request) (Response, error) {
	if o.initialiseErr != nil {
		return Response{}, o.initialiseErr
	}
	doc, err := o.document(req.Schema, req.Document)
	if err != nil {
		return Response{}, err
	}
	renderer, err := o.renderer(req.Renderer, req.Accept)
	if err != nil {
		return Response{}, err
	}

	entity := req.Entity
	if entity == nil {
		entity, err = o.fetch(ctx, doc, req.Session, req.EntityID)
		if err != nil {
			return Response{}, err
		}
	}

	options := req.RenderOptions
	if id := strings.TrimSpace(req.EntityID); id != "" {
		options.Hidden = render.MergeHiddenFields(options.Hidden, render.EntityIDField(id))
	}

	var body []byte
	if html, ok := renderer.(*sheet.Renderer); ok && req.Staged {
		body, err = o.renderStaged(ctx, html, doc, entity, options)
	} else {
		options.Staged = options.Staged || req.Staged
		body, err = renderer.Render(ctx, doc, entity, options)
	}
	if err != nil {
		return Response{}, fmt.Errorf("orchestrator: render %q with %q: %w", doc.Name, renderer.Name(), err)
	}

	return Response{
		Body:        body,
		ContentType: renderer.ContentType(),
		Renderer:    renderer.Name(),
		Document:    doc,
		Entity:      entity,
	}, nil
}

// renderStaged renders the form skeleton, materialises every repeating
// container on the parsed tree and populates the bound controls.
func (o *Orchestrator) renderStaged(ctx context.Context, html *sheet.Renderer, doc schema.Document, entity map[string]any, options render.RenderOptions) ([]byte, error) {
	options.Staged = true
	result, err := html.RenderResult(ctx, doc, entity, options)
	if err != nil {
		return nil, err
	}
	tree, err := dom.ParseFragment(result.Markup)
	if err != nil {
		return nil, err
	}
	if err := o.materialize(html, tree, doc, result.RepeatingStructures, entity); err != nil {
		return nil, err
	}
	binding.Populate(tree, entity)
	return []byte(tree.String()), nil
}

// materialize fills every staged container of tree with its rows.
func (o *Orchestrator) materialize(html *sheet.Renderer, tree *dom.Document, doc schema.Document, structures []schema.RepeatingStructure, entity map[string]any) error {
	for _, structure := range structures {
		rows, err := html.MaterializeRows(structure, entity)
		if err != nil {
			return err
		}
		found, err := tree.ReplaceChildren(structure.ContainerID, rows.Markup)
		if err != nil {
			return err
		}
		if !found {
			o.logger.Printf("orchestrator: container %q missing from %q", structure.ContainerID, doc.Name)
		}
	}
	return nil
}

// SubmitRequest describes a submitted form.
type SubmitRequest struct {
	Schema   string
	Document *schema.Document
	Session  client.Session
	EntityID string
	Values   url.Values
}

// SubmitResponse carries the harvested entity and whatever the API answered.
type SubmitResponse struct {
	Document schema.Document
	Entity   map[string]any
	Saved    map[string]any
}

// Harvest binds submitted values to the schema's form and harvests them
// into a fresh entity. Nothing is sent anywhere.
func (o *Orchestrator) Harvest(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	if o.initialiseErr != nil {
		return SubmitResponse{}, o.initialiseErr
	}
	doc, err := o.document(req.Schema, req.Document)
	if err != nil {
		return SubmitResponse{}, err
	}
	if submitted := strings.TrimSpace(req.Values.Get(render.HiddenSchemaVersion)); submitted != "" && doc.Version != "" && submitted != doc.Version {
		return SubmitResponse{}, fmt.Errorf("%w: form %q, loaded %q", ErrVersionMismatch, submitted, doc.Version)
	}

	result, err := o.html.RenderResult(ctx, doc, map[string]any{}, render.RenderOptions{})
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("orchestrator: build %q: %w", doc.Name, err)
	}
	tree, err := dom.ParseFragment(result.Markup)
	if err != nil {
		return SubmitResponse{}, err
	}
	if err := o.materialize(o.html, tree, doc, result.RepeatingStructures, nil); err != nil {
		return SubmitResponse{}, err
	}
	tree.ApplySubmission(req.Values)

	return SubmitResponse{
		Document: doc,
		Entity:   binding.Harvest(tree),
	}, nil
}

// Submit harvests the submission and posts the entity to the store.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	if o.store == nil {
		return SubmitResponse{}, ErrNoStore
	}
	resp, err := o.Harvest(ctx, req)
	if err != nil {
		return SubmitResponse{}, err
	}
	saved, err := o.store.SubmitEntity(ctx, req.Session, resp.Document.EntityPath, req.EntityID, resp.Entity)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("orchestrator: submit %q: %w", resp.Document.Name, err)
	}
	resp.Saved = saved
	return resp, nil
}

func (o *Orchestrator) document(name string, doc *schema.Document) (schema.Document, error) {
	if doc != nil {
		return *doc, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Document{}, errors.New("orchestrator: schema name is required")
	}
	return o.schemas.Require(name)
}

func (o *Orchestrator) renderer(name, accept string) (render.Renderer, error) {
	if name = strings.TrimSpace(name); name != "" {
		return o.registry.Get(name)
	}
	if strings.TrimSpace(accept) != "" {
		return o.registry.Negotiate(accept)
	}
	return o.registry.Get(o.defaultRenderer)
}

// fetch reads the entity for doc. Documents without an entity path, or an
// orchestrator without a store, start from an empty entity.
func (o *Orchestrator) fetch(ctx context.Context, doc schema.Document, session client.Session, id string) (map[string]any, error) {
	if o.store == nil || strings.TrimSpace(doc.EntityPath) == "" {
		return map[string]any{}, nil
	}
	entity, err := o.store.FetchEntity(ctx, session, doc.EntityPath, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: fetch %q: %w", doc.Name, err)
	}
	if entity == nil {
		entity = map[string]any{}
	}
	return entity, nil
}
