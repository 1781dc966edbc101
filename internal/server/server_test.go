package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/goliatone/go-sheetform/pkg/client"
	"github.com/goliatone/go-sheetform/pkg/orchestrator"
	"github.com/goliatone/go-sheetform/pkg/schema"
)

type fakeAPI struct {
	entities  map[string]map[string]any
	index     []client.IndexEntry
	submitted map[string]any
	submitID  string
	fetchErr  error
}

func (f *fakeAPI) FetchEntity(_ context.Context, _ client.Session, _ string, idHint string) (map[string]any, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.entities[idHint], nil
}

func (f *fakeAPI) SubmitEntity(_ context.Context, _ client.Session, _ string, idHint string, entity map[string]any) (map[string]any, error) {
	f.submitted = entity
	f.submitID = idHint
	return entity, nil
}

func (f *fakeAPI) FetchIndex(context.Context, client.Session, string, ...string) ([]client.IndexEntry, error) {
	return f.index, nil
}

func heroStore(t *testing.T) *schema.Store {
	t.Helper()
	store := schema.NewStore()
	require.NoError(t, store.Add(schema.Document{
		Name:       "hero",
		Title:      "Hero",
		Version:    "1",
		EntityPath: "/api/hero",
		Sections: []schema.Section{{
			ID:    "basics",
			Title: "Basics",
			Fields: []schema.Field{
				{ID: "name", Label: "Name", Kind: schema.KindText, Path: "character.name"},
				{ID: "inspired", Label: "Inspiration", Kind: schema.KindCheckbox, Path: "status.inspiration"},
			},
		}},
	}))
	return store
}

type ServerTestSuite struct {
	suite.Suite
	api     *fakeAPI
	handler http.Handler
	logs    bytes.Buffer
}

func (s *ServerTestSuite) SetupTest() {
	s.api = &fakeAPI{entities: map[string]map[string]any{
		"h1": {"character": map[string]any{"name": "Aria"}},
	}}
	s.logs.Reset()
	logger := log.New(&s.logs, "", 0)

	orch := orchestrator.New(
		orchestrator.WithSchemas(heroStore(s.T())),
		orchestrator.WithStore(s.api),
		orchestrator.WithLogger(logger),
	)
	srv, err := New(Config{Orchestrator: orch, Index: s.api, Logger: logger})
	s.Require().NoError(err)
	s.handler = srv.Routes()
}

func (s *ServerTestSuite) do(req *http.Request, withSession bool) *httptest.ResponseRecorder {
	if withSession {
		for _, cookie := range (client.Session{GameID: "g1", PlayerID: "p1"}).Cookies() {
			req.AddCookie(cookie)
		}
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) TestHealthz() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), false)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *ServerTestSuite) TestAssets() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/assets/sheet.css", nil), false)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), ".sheet-form")
}

func (s *ServerTestSuite) TestLoginPage() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil), false)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `action="/session"`)
}

func (s *ServerTestSuite) TestSessionSetsCookies() {
	form := url.Values{"gameId": {"g1"}, "playerId": {"p1"}}
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req, false)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/sheets", rec.Header().Get("Location"))

	cookies := map[string]string{}
	for _, cookie := range rec.Result().Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	s.Equal(map[string]string{"gameId": "g1", "playerId": "p1"}, cookies)
}

func (s *ServerTestSuite) TestSessionRequiresBothIDs() {
	form := url.Values{"gameId": {"g1"}}
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req, false)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(rec.Result().Cookies())
}

func (s *ServerTestSuite) TestSheetsRedirectWithoutSession() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets/hero/h1", nil), false)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))
}

func (s *ServerTestSuite) TestSchemaAndEntityLists() {
	s.api.index = []client.IndexEntry{{ID: "h1", Name: "Aria"}}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets", nil), true)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `href="/sheets/hero"`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/sheets/hero", nil), true)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `href="/sheets/hero/h1">Aria</a>`)
	s.Contains(rec.Body.String(), `href="/sheets/hero/new"`)
}

func (s *ServerTestSuite) TestUnknownSchema() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets/dragon", nil), true)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestSheetRendersBoundForm() {
	req := httptest.NewRequest(http.MethodGet, "/sheets/hero/h1", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	rec := s.do(req, true)
	s.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, `<!DOCTYPE html>`)
	s.Contains(body, `action="/sheets/hero/h1"`)
	s.Contains(body, `data-field="character.name"`)
	s.Contains(body, `value="Aria"`)
}

func (s *ServerTestSuite) TestSheetNegotiatesJSON() {
	req := httptest.NewRequest(http.MethodGet, "/sheets/hero/h1", nil)
	req.Header.Set("Accept", "application/json")

	rec := s.do(req, true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))

	var manifest map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &manifest))
	s.Equal("hero", manifest["schema"])
}

func (s *ServerTestSuite) TestNewSheetSkipsFetch() {
	s.api.fetchErr = client.ErrNotFound

	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets/hero/new", nil), true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), `action="/sheets/hero/new"`)
}

func (s *ServerTestSuite) TestMissingEntityIsNotFound() {
	s.api.fetchErr = client.ErrNotFound

	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets/hero/zz", nil), true)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestCancelledFetchIsNotOK() {
	s.api.fetchErr = fmt.Errorf("client: GET /api/hero: %w", context.Canceled)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets/hero/h1", nil), true)
	s.Equal(499, rec.Code)
	s.Empty(rec.Body.String())
	s.Contains(s.logs.String(), "context canceled")
}

func (s *ServerTestSuite) TestUpstreamTimeout() {
	s.api.fetchErr = fmt.Errorf("client: GET /api/hero: %w", context.DeadlineExceeded)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/sheets/hero/h1", nil), true)
	s.Equal(http.StatusGatewayTimeout, rec.Code)
}

func (s *ServerTestSuite) TestSubmitHarvestsAndRedirects() {
	form := url.Values{
		"character.name":     {"Aria Shadowmoon"},
		"status.inspiration": {"true"},
		"_schema_version":    {"1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/sheets/hero/h1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req, true)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/sheets/hero/h1", rec.Header().Get("Location"))
	s.Equal("h1", s.api.submitID)
	s.Equal(map[string]any{
		"character": map[string]any{"name": "Aria Shadowmoon"},
		"status":    map[string]any{"inspiration": true},
	}, s.api.submitted)
}

func (s *ServerTestSuite) TestSubmitVersionConflict() {
	form := url.Values{"_schema_version": {"0"}}
	req := httptest.NewRequest(http.MethodPost, "/sheets/hero/h1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req, true)
	s.Equal(http.StatusConflict, rec.Code)
	s.Nil(s.api.submitted)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestNewRequiresOrchestrator(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
