// Package api serves record graphs and relays SPARQL queries to the
// configured triple store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/export"
	"github.com/c360studio/catalogrdf/mapping"
	"github.com/c360studio/catalogrdf/triplestore"
)

// maxQuerySize limits POSTed query bodies.
const maxQuerySize = 1 << 20 // 1 MB

// ContentTypeNTriples is the media type of record graph responses when
// no other format is negotiated.
const ContentTypeNTriples = "application/n-triples"

// Querier forwards SPARQL queries to a store.
type Querier interface {
	Query(ctx context.Context, query, accept string) (*http.Response, error)
}

// Server holds the dependencies of the read endpoints.
type Server struct {
	lookup   catalog.Lookup
	producer *mapping.Producer
	querier  Querier
	logger   *slog.Logger
	status   func() any
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStatus serves fn's result as JSON on <prefix>status.
func WithStatus(fn func() any) Option {
	return func(s *Server) { s.status = fn }
}

// NewServer creates a Server. A nil querier disables the SPARQL endpoint.
func NewServer(lookup catalog.Lookup, producer *mapping.Producer, querier Querier, opts ...Option) *Server {
	s := &Server{
		lookup:   lookup,
		producer: producer,
		querier:  querier,
		logger:   slog.Default(),
	}
	if s.producer == nil {
		s.producer = mapping.NewProducer(nil)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHTTPHandlers registers the handlers under prefix (e.g. "rdf"):
//
//	GET      <prefix>/package/{id}
//	GET|POST <prefix>/sparql
//	GET      <prefix>/status
func (s *Server) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	mux.HandleFunc(prefix+"package/", s.handlePackage)
	mux.HandleFunc(prefix+"sparql", s.handleSparql)
	if s.status != nil {
		mux.HandleFunc(prefix+"status", s.handleStatus)
	}
}

// handlePackage returns one record's graph, as N-Triples unless the
// format query parameter or the Accept header asks for Turtle or JSON-LD.
func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Path[strings.LastIndex(r.URL.Path, "/package/")+len("/package/"):]
	id = strings.Trim(id, "/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Record id required", http.StatusBadRequest)
		return
	}

	format := export.Negotiate(r.Header.Get("Accept"))
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := export.ParseFormat(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	if s.lookup == nil {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	rec, err := s.lookup.GetRecord(r.Context(), id)
	if errors.Is(err, catalog.ErrRecordNotFound) {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Record lookup failed", "id", id, "error", err)
		http.Error(w, "Record lookup failed", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, s.producer.Produce(rec), format); err != nil {
		s.logger.Error("Failed to serialize record graph", "id", id, "format", format, "error", err)
		http.Error(w, "Failed to serialize graph", http.StatusInternalServerError)
		return
	}

	info, _ := export.GetFormatInfo(format)
	w.Header().Set("Content-Type", info.MIMEType)
	w.Header().Set("Vary", "Accept")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(buf.Bytes())
	}
}

// handleSparql relays a query to the store and copies its response back.
func (s *Server) handleSparql(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxQuerySize)
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	query := r.Form.Get("query")
	if strings.TrimSpace(query) == "" {
		http.Error(w, "query parameter required", http.StatusBadRequest)
		return
	}

	if s.querier == nil {
		http.Error(w, triplestore.ErrNoStore.Error(), http.StatusServiceUnavailable)
		return
	}

	resp, err := s.querier.Query(r.Context(), query, r.Header.Get("Accept"))
	if errors.Is(err, triplestore.ErrNoStore) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.logger.Warn("SPARQL query failed", "error", err)
		http.Error(w, "Triple store unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Debug("Relaying SPARQL response interrupted", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
