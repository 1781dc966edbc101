// Package client talks to the game API: it fetches entities wrapped in a
// {"data": ...} envelope and submits harvested entities back as raw JSON.
// Reads are retried on transient failures and can be cached.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sheetform/pkg/datapath"
)

// Header names the game API reads.
const (
	HeaderGameID    = "game_id"
	HeaderPlayerID  = "player_id"
	HeaderDMDataID  = "dm_data_id"
	HeaderRequestID = "X-Request-ID"
)

const (
	defaultAttempts    = 3
	defaultRetryDelay  = time.Second
	defaultConcurrency = 4
	maxErrorBody       = 512
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("client: entity not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Logger receives retry notices. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithRetry sets how many times a read is attempted and the constant delay
// between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay >= 0 {
			c.delay = delay
		}
	}
}

// WithCache caches entity reads. Submissions invalidate the cached entry and
// the cached collection of its path.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConcurrency bounds the parallel reads of FetchEntities.
func WithConcurrency(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.concurrency = limit
		}
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	attempts    int
	delay       time.Duration
	cache       Cache
	logger      Logger
	concurrency int
}

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     parsed,
		http:        &http.Client{Timeout: 15 * time.Second},
		attempts:    defaultAttempts,
		delay:       defaultRetryDelay,
		logger:      log.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// FetchEntity reads the entity at path. idHint selects one entity of a
// collection endpoint and is sent as the dm_data_id header.
func (c *Client) FetchEntity(ctx context.Context, session Session, path, idHint string) (map[string]any, error) {
	if !session.Valid() {
		return nil, ErrNoSession
	}
	key := CacheKey(session, path, idHint)
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, key); err != nil {
			c.logger.Printf("client: cache read %s: %v", key, err)
		} else if ok {
			return cached, nil
		}
	}

	var payload []byte
	operation := func() error {
		body, err := c.do(ctx, http.MethodGet, session, path, idHint, nil)
		if err != nil {
			var status *StatusError
			if errors.As(err, &status) && status.StatusCode < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			return err
		}
		payload = body
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), uint64(c.attempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Printf("client: GET %s failed, retrying in %s: %v", path, wait, err)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}

	entity, err := unwrapData(payload)
	if err != nil {
		return nil, fmt.Errorf("client: decode %s: %w", path, err)
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, entity); err != nil {
			c.logger.Printf("client: cache write %s: %v", key, err)
		}
	}
	return entity, nil
}

// SubmitEntity posts entity as a raw JSON body. It is not retried, since
// the API does not guarantee idempotent writes.
func (c *Client) SubmitEntity(ctx context.Context, session Session, path, idHint string, entity map[string]any) (map[string]any, error) {
	if !session.Valid() {
		return nil, ErrNoSession
	}
	body, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("client: encode entity: %w", err)
	}
	payload, err := c.do(ctx, http.MethodPost, session, path, idHint, body)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		keys := []string{CacheKey(session, path, idHint)}
		if idHint != "" {
			// the collection read by FetchIndex lists this entity too
			keys = append(keys, CacheKey(session, path, ""))
		}
		for _, key := range keys {
			if err := c.cache.Invalidate(ctx, key); err != nil {
				c.logger.Printf("client: cache invalidate %s: %v", key, err)
			}
		}
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}
	saved, err := unwrapData(payload)
	if err != nil {
		return nil, fmt.Errorf("client: decode %s response: %w", path, err)
	}
	return saved, nil
}

// IndexEntry is one entity of a collection endpoint.
type IndexEntry struct {
	ID   string
	Name string
}

// FetchIndex reads a collection endpoint whose data maps ids to entities
// and lists its entries sorted by name.
func (c *Client) FetchIndex(ctx context.Context, session Session, path string, namePaths ...string) ([]IndexEntry, error) {
	collection, err := c.FetchEntity(ctx, session, path, "")
	if err != nil {
		return nil, err
	}
	if len(namePaths) == 0 {
		namePaths = []string{"name", "character.name"}
	}
	entries := make([]IndexEntry, 0, len(collection))
	for id, value := range collection {
		entry := IndexEntry{ID: id, Name: id}
		for _, candidate := range namePaths {
			if name, ok := datapath.Get(value, candidate).(string); ok && strings.TrimSpace(name) != "" {
				entry.Name = name
				break
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name == entries[j].Name {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// FetchEntities reads several entities of one endpoint in parallel. The
// first failure cancels the remaining reads.
func (c *Client) FetchEntities(ctx context.Context, session Session, path string, ids []string) (map[string]map[string]any, error) {
	if !session.Valid() {
		return nil, ErrNoSession
	}
	var (
		mu  sync.Mutex
		out = make(map[string]map[string]any, len(ids))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			entity, err := c.FetchEntity(ctx, session, path, id)
			if err != nil {
				return fmt.Errorf("client: fetch %s %s: %w", path, id, err)
			}
			mu.Lock()
			out[id] = entity
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, session Session, path, idHint string, body []byte) ([]byte, error) {
	target := c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	// The API reads these exact lowercase names.
	req.Header[HeaderGameID] = []string{session.GameID}
	req.Header[HeaderPlayerID] = []string{session.PlayerID}
	req.Header[HeaderDMDataID] = []string{idHint}
	req.Header.Set(HeaderRequestID, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(payload))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: snippet}
	}
	return payload, nil
}

// unwrapData decodes a {"data": {...}} envelope. A missing or null data
// member yields an empty entity.
func unwrapData(payload []byte) (map[string]any, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}
	entity := map[string]any{}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return entity, nil
	}
	if err := json.Unmarshal(envelope.Data, &entity); err != nil {
		return nil, fmt.Errorf("data is not an object: %w", err)
	}
	return entity, nil
}
