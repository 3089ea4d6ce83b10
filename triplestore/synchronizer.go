// Package triplestore keeps a SPARQL 1.1 Update endpoint in step with the
// catalog: each record change becomes a delete of the record's subjects
// and/or an insert of its freshly produced graph.
package triplestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/mapping"
	"github.com/c360studio/catalogrdf/rdf"
)

const (
	// DefaultUpdatePath is resolved against the store URL for updates.
	DefaultUpdatePath = "/update/"

	// DefaultQueryPath is resolved against the store URL for queries.
	DefaultQueryPath = "/sparql/"

	// maxLoggedBodySize limits how much of a store response is logged.
	maxLoggedBodySize = 4096
)

// ErrNoStore is returned by Query when no store URL is configured.
var ErrNoStore = errors.New("no triple store configured")

// Config holds the store endpoint settings.
type Config struct {
	// StoreURL is the store base URL. Empty disables synchronisation.
	StoreURL string `yaml:"url" json:"url"`

	// UpdatePath and QueryPath are resolved against StoreURL the way a
	// browser resolves links, so an absolute path replaces any path the
	// base URL carries.
	UpdatePath string `yaml:"update_path" json:"update_path"`
	QueryPath  string `yaml:"query_path" json:"query_path"`
}

// Synchronizer submits record graphs to the triple store.
type Synchronizer struct {
	producer   *mapping.Producer
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics

	updatePath string
	queryPath  string

	mu       sync.RWMutex
	storeURL string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithHTTPClient replaces the default HTTP client. The default has no
// timeout; submissions are bounded by the caller's context.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Synchronizer) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records submissions on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// NewSynchronizer creates a Synchronizer producing graphs with producer.
func NewSynchronizer(cfg Config, producer *mapping.Producer, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		producer:   producer,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		updatePath: cfg.UpdatePath,
		queryPath:  cfg.QueryPath,
		storeURL:   strings.TrimSpace(cfg.StoreURL),
	}
	if s.updatePath == "" {
		s.updatePath = DefaultUpdatePath
	}
	if s.queryPath == "" {
		s.queryPath = DefaultQueryPath
	}
	if s.producer == nil {
		s.producer = mapping.NewProducer(nil)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreURL returns the current store base URL.
func (s *Synchronizer) StoreURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storeURL
}

// SetStoreURL swaps the store base URL. Submissions already in flight
// keep the URL they started with.
func (s *Synchronizer) SetStoreURL(u string) {
	u = strings.TrimSpace(u)
	s.mu.Lock()
	old := s.storeURL
	s.storeURL = u
	s.mu.Unlock()
	if old != u {
		s.logger.Info("Triple store URL changed", "old", old, "new", u)
	}
}

// Producer returns the producer used to build record graphs.
func (s *Synchronizer) Producer() *mapping.Producer {
	return s.producer
}

// Sync produces rec's graph and applies op to the store.
func (s *Synchronizer) Sync(ctx context.Context, rec *catalog.Record, op catalog.Operation) error {
	return s.SyncGraph(ctx, s.producer.Produce(rec), op)
}

// SyncGraph applies op for an already produced graph. Created inserts,
// Deleted deletes, Changed deletes then inserts as two separate
// submissions; a failed insert after a successful delete leaves the
// record absent until the next successful sync.
func (s *Synchronizer) SyncGraph(ctx context.Context, g *rdf.Graph, op catalog.Operation) error {
	switch op {
	case catalog.OperationCreated:
		return s.insert(ctx, g)
	case catalog.OperationChanged:
		if err := s.delete(ctx, g); err != nil {
			return err
		}
		return s.insert(ctx, g)
	case catalog.OperationDeleted:
		return s.delete(ctx, g)
	default:
		return fmt.Errorf("unsupported operation: %q", op)
	}
}

func (s *Synchronizer) insert(ctx context.Context, g *rdf.Graph) error {
	stmt, err := InsertStatement(g)
	if err != nil {
		return err
	}
	return s.Submit(ctx, KindInsert, stmt)
}

func (s *Synchronizer) delete(ctx context.Context, g *rdf.Graph) error {
	return s.Submit(ctx, KindDelete, DeleteStatement(g))
}

// Submit posts one update statement to the store as an
// application/x-www-form-urlencoded "update" field. Without a store URL it
// logs a warning and returns nil. The response is logged, never
// interpreted: only transport failures are errors.
func (s *Synchronizer) Submit(ctx context.Context, kind Kind, statement string) error {
	base := s.StoreURL()
	if base == "" {
		s.logger.Warn("No store URL configured, cannot update triple store", "kind", kind)
		s.metrics.recordSubmission(kind, statusSkipped, 0)
		return nil
	}

	endpoint, err := resolve(base, s.updatePath)
	if err != nil {
		return err
	}

	form := url.Values{"update": {statement}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.metrics.recordSubmission(kind, statusError, time.Since(start))
		return fmt.Errorf("submit %s to %s: %w", kind, endpoint, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodySize))
	s.metrics.recordSubmission(kind, statusOK, time.Since(start))

	s.logger.Debug("Triple store response",
		"kind", kind,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"body", string(body))
	return nil
}

// resolve joins ref onto base with URL reference resolution.
func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse store url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
