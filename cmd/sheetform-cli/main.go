package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sheetform/pkg/orchestrator"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/renderers/sheet"
	"github.com/goliatone/go-sheetform/pkg/renderers/tui"
	"github.com/goliatone/go-sheetform/pkg/schema"
	"github.com/goliatone/go-sheetform/pkg/schema/openapi"
)

func main() {
	schemaName := flag.String("schema", "player", "schema document to render")
	schemaDir := flag.String("schema-dir", "", "directory with extra schema documents")
	entityPath := flag.String("entity", "", "JSON file holding the entity to bind (empty entity if unset)")
	rendererName := flag.String("renderer", "html", "renderer to use (html, json)")
	output := flag.String("output", "", "output file (stdout if empty)")
	staged := flag.Bool("staged", false, "render repeating rows in a second pass")
	edit := flag.Bool("edit", false, "edit the entity interactively in the terminal")
	format := flag.String("format", "json", "edited entity format (json, yaml, form)")
	openapiPath := flag.String("openapi", "", "import a schema document from this OpenAPI file and print it as YAML")
	component := flag.String("component", "", "OpenAPI component schema to import")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		out []byte
		err error
	)
	switch {
	case *openapiPath != "":
		out, err = importOpenAPI(ctx, *openapiPath, *component, *schemaName)
	default:
		out, err = renderSheet(ctx, renderConfig{
			schema:    *schemaName,
			schemaDir: *schemaDir,
			entity:    *entityPath,
			renderer:  *rendererName,
			staged:    *staged,
			edit:      *edit,
			format:    tui.OutputFormat(*format),
		})
	}
	if err != nil {
		log.Fatalf("sheetform: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
		return
	}
	fmt.Println(string(out))
}

type renderConfig struct {
	schema    string
	schemaDir string
	entity    string
	renderer  string
	staged    bool
	edit      bool
	format    tui.OutputFormat
}

func renderSheet(ctx context.Context, cfg renderConfig) ([]byte, error) {
	schemas, err := loadSchemas(cfg.schemaDir)
	if err != nil {
		return nil, err
	}
	entity, err := loadEntity(cfg.entity)
	if err != nil {
		return nil, err
	}

	html, err := sheet.New()
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(sheet.NewJSON(html))

	name := cfg.renderer
	if cfg.edit {
		editor, err := tui.New(tui.WithBuilder(html), tui.WithOutputFormat(cfg.format), tui.WithSectionHeadings(true))
		if err != nil {
			return nil, err
		}
		registry.MustRegister(editor)
		name = editor.Name()
	}

	gen := orchestrator.New(
		orchestrator.WithSchemas(schemas),
		orchestrator.WithRegistry(registry),
		orchestrator.WithHTMLRenderer(html),
	)
	resp, err := gen.RenderForm(ctx, orchestrator.Request{
		Schema:   cfg.schema,
		Entity:   entity,
		Renderer: name,
		Staged:   cfg.staged,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func loadSchemas(dir string) (*schema.Store, error) {
	store, err := schema.Defaults()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		return store, nil
	}
	extra, err := schema.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	extra.Merge(store)
	return extra, nil
}

func loadEntity(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity: %w", err)
	}
	entity := map[string]any{}
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	// Accept API responses as saved, envelope included.
	if inner, ok := entity["data"].(map[string]any); ok && len(entity) == 1 {
		entity = inner
	}
	return entity, nil
}

func importOpenAPI(ctx context.Context, path, component, name string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}
	if strings.TrimSpace(component) == "" {
		names, err := openapi.Components(ctx, data)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("-component is required; available: %s", strings.Join(names, ", "))
	}
	var options []openapi.Option
	if flagSet("schema") {
		options = append(options, openapi.WithName(name))
	}
	doc, err := openapi.Import(ctx, data, component, options...)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
