// Package server serves the sheet editor: a login page storing the game
// session in cookies, schema and entity lists, and the sheet form itself.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	sheetform "github.com/goliatone/go-sheetform"
	"github.com/goliatone/go-sheetform/pkg/client"
	"github.com/goliatone/go-sheetform/pkg/orchestrator"
	"github.com/goliatone/go-sheetform/pkg/render/template/gotemplate"
)

//go:embed templates/*.tmpl
var pageTemplates embed.FS

// IndexStore lists the entities of a collection endpoint. *client.Client
// satisfies it.
type IndexStore interface {
	FetchIndex(ctx context.Context, session client.Session, path string, namePaths ...string) ([]client.IndexEntry, error)
}

// Logger matches *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Config holds server configuration.
type Config struct {
	Addr         string
	Orchestrator *orchestrator.Orchestrator
	// Index is optional; without it entity lists only offer a new entity.
	Index  IndexStore
	Staged bool
	Logger Logger
}

// Server holds the routes and the page templates.
type Server struct {
	orch   *orchestrator.Orchestrator
	index  IndexStore
	staged bool
	pages  *gotemplate.Engine
	logger Logger
	assets fs.FS
}

// New validates cfg and prepares the page templates.
func New(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	sub, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("server: page templates: %w", err)
	}
	pages, err := gotemplate.New(gotemplate.WithFS(sub), gotemplate.WithSetName("sheetform-pages"))
	if err != nil {
		return nil, fmt.Errorf("server: page engine: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		orch:   cfg.Orchestrator,
		index:  cfg.Index,
		staged: cfg.Staged,
		pages:  pages,
		logger: logger,
		assets: sheetform.AssetsFS(),
	}, nil
}

// Routes registers every handler on a chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))

	r.Get("/", s.handleLogin)
	r.Post("/session", s.handleSession)

	r.Route("/sheets", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleSchemas)
		r.Get("/{schema}", s.handleEntities)
		r.Get("/{schema}/{id}", s.handleSheet)
		r.Post("/{schema}/{id}", s.handleSubmit)
	})
	return r
}

// Run starts the HTTP server and shuts it down when ctx is done.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(cfg)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			srv.logger.Printf("server: shutdown: %v", err)
		}
	}()

	srv.logger.Printf("starting server on %s", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
