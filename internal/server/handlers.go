package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-sheetform/pkg/client"
	"github.com/goliatone/go-sheetform/pkg/orchestrator"
	"github.com/goliatone/go-sheetform/pkg/render"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

const newEntityID = "new"

type sessionKey struct{}

// requireSession redirects to the login page when the session cookies are
// missing.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := client.SessionFromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

func sessionFrom(ctx context.Context) client.Session {
	session, _ := ctx.Value(sessionKey{}).(client.Session)
	return session
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	session, _ := client.SessionFromRequest(r)
	s.page(w, http.StatusOK, "login.tmpl", map[string]any{
		"session": sessionData(session),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "could not read the form")
		return
	}
	session := client.Session{
		GameID:   strings.TrimSpace(r.PostForm.Get(client.CookieGameID)),
		PlayerID: strings.TrimSpace(r.PostForm.Get(client.CookiePlayerID)),
	}
	if !session.Valid() {
		s.page(w, http.StatusBadRequest, "login.tmpl", map[string]any{
			"session": sessionData(session),
			"flash":   "Both a game id and a player id are required.",
		})
		return
	}
	for _, cookie := range session.Cookies() {
		http.SetCookie(w, cookie)
	}
	http.Redirect(w, r, "/sheets", http.StatusSeeOther)
}

func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	store := s.orch.Schemas()
	var schemas []any
	for _, name := range store.Names() {
		doc, _ := store.Document(name)
		schemas = append(schemas, schemaData(doc))
	}
	s.page(w, http.StatusOK, "schemas.tmpl", map[string]any{
		"session": sessionData(sessionFrom(r.Context())),
		"schemas": schemas,
	})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	session := sessionFrom(r.Context())

	var entities []any
	if s.index != nil && doc.EntityPath != "" {
		entries, err := s.index.FetchIndex(r.Context(), session, doc.EntityPath)
		if err != nil {
			s.upstreamError(w, r, err)
			return
		}
		for _, entry := range entries {
			entities = append(entities, map[string]any{"id": entry.ID, "name": entry.Name})
		}
	}
	s.page(w, http.StatusOK, "entities.tmpl", map[string]any{
		"session":  sessionData(session),
		"schema":   schemaData(doc),
		"entities": entities,
	})
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	session := sessionFrom(r.Context())

	req := orchestrator.Request{
		Document: &doc,
		Session:  session,
		EntityID: chi.URLParam(r, "id"),
		Accept:   r.Header.Get("Accept"),
		Staged:   s.staged,
	}
	if req.EntityID == newEntityID {
		req.EntityID = uuid.NewString()
		req.Entity = map[string]any{}
	}
	req.RenderOptions = render.RenderOptions{
		Action: sheetPath(doc.Name, req.EntityID),
		Method: http.MethodPost,
	}

	resp, err := s.orch.RenderForm(r.Context(), req)
	if err != nil {
		if errors.Is(err, render.ErrUnknownRenderer) {
			s.errorPage(w, r, http.StatusNotAcceptable, "no renderer for "+req.Accept)
			return
		}
		s.upstreamError(w, r, err)
		return
	}
	if resp.Renderer != "html" {
		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp.Body)
		return
	}
	s.page(w, http.StatusOK, "sheet.tmpl", map[string]any{
		"session": sessionData(session),
		"schema":  schemaData(doc),
		"form":    string(resp.Body),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "could not read the form")
		return
	}
	id := chi.URLParam(r, "id")
	if id == newEntityID {
		id = uuid.NewString()
	}

	_, err := s.orch.Submit(r.Context(), orchestrator.SubmitRequest{
		Document: &doc,
		Session:  sessionFrom(r.Context()),
		EntityID: id,
		Values:   r.PostForm,
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrVersionMismatch) {
			s.errorPage(w, r, http.StatusConflict, "the sheet changed since this form was opened; reload and try again")
			return
		}
		s.upstreamError(w, r, err)
		return
	}
	http.Redirect(w, r, sheetPath(doc.Name, id), http.StatusSeeOther)
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) (schema.Document, bool) {
	name := chi.URLParam(r, "schema")
	doc, ok := s.orch.Schemas().Document(name)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "unknown sheet "+name)
		return schema.Document{}, false
	}
	return doc, true
}

// statusClientClosedRequest is written, without a body, when the client went
// away before the upstream call finished.
const statusClientClosedRequest = 499

// upstreamError maps orchestrator and API failures onto responses.
func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, client.ErrNoSession):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, client.ErrNotFound):
		s.errorPage(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, context.Canceled):
		s.logger.Printf("server: %s %s: %v", r.Method, r.URL.Path, err)
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Printf("server: %s %s: %v", r.Method, r.URL.Path, err)
		s.errorPage(w, r, http.StatusGatewayTimeout, "the game API timed out")
	default:
		s.logger.Printf("server: %s %s: %v", r.Method, r.URL.Path, err)
		s.errorPage(w, r, http.StatusBadGateway, "the game API is unavailable")
	}
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}
	s.page(w, status, "error.tmpl", map[string]any{
		"status":  http.StatusText(status),
		"message": message,
	})
}

func (s *Server) page(w http.ResponseWriter, status int, name string, data map[string]any) {
	out, err := s.pages.RenderTemplate(name, data)
	if err != nil {
		s.logger.Printf("server: render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func sheetPath(schemaName, id string) string {
	return "/sheets/" + url.PathEscape(schemaName) + "/" + url.PathEscape(id)
}

func sessionData(session client.Session) map[string]any {
	return map[string]any{"game_id": session.GameID, "player_id": session.PlayerID}
}

func schemaData(doc schema.Document) map[string]any {
	title := doc.Title
	if title == "" {
		title = doc.Name
	}
	return map[string]any{"name": doc.Name, "title": title, "version": doc.Version}
}
