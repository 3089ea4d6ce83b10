package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/catalogrdf/api"
	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/triplestore"
)

type mapLookup map[string]*catalog.Record

func (m mapLookup) GetRecord(_ context.Context, id string) (*catalog.Record, error) {
	if rec, ok := m[id]; ok {
		return rec, nil
	}
	return nil, catalog.ErrRecordNotFound
}

type failingLookup struct{}

func (failingLookup) GetRecord(context.Context, string) (*catalog.Record, error) {
	return nil, errors.New("catalog down")
}

func newTestServer(t *testing.T, srv *api.Server) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv.RegisterHTTPHandlers("rdf", mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func census() *catalog.Record {
	title := "Census"
	return &catalog.Record{
		ID:         "r1",
		Name:       "census",
		Title:      &title,
		CatalogURL: "http://catalog.example.org/dataset/census",
	}
}

func TestHandlePackage(t *testing.T) {
	ts := newTestServer(t, api.NewServer(mapLookup{"census": census()}, nil, nil))

	resp, err := http.Get(ts.URL + "/rdf/package/census")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.ContentTypeNTriples, resp.Header.Get("Content-Type"))

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `<http://catalog.example.org/dataset/census> <http://purl.org/dc/terms/title> "Census" .`)
}

func TestHandlePackageFormats(t *testing.T) {
	ts := newTestServer(t, api.NewServer(mapLookup{"census": census()}, nil, nil))

	tests := []struct {
		name        string
		query       string
		accept      string
		contentType string
		contains    string
	}{
		{"turtle by accept", "", "text/turtle", "text/turtle", `dc:title "Census"`},
		{"jsonld by accept", "", "application/ld+json", "application/ld+json", `"@graph"`},
		{"query overrides accept", "?format=ttl", "application/ld+json", "text/turtle", "@prefix dcat:"},
		{"wildcard", "", "*/*", api.ContentTypeNTriples, "<http://purl.org/dc/terms/title>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/rdf/package/census"+tt.query, nil)
			require.NoError(t, err)
			req.Header.Set("Accept", tt.accept)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestHandlePackageErrors(t *testing.T) {
	tests := []struct {
		name   string
		lookup catalog.Lookup
		method string
		path   string
		want   int
	}{
		{"unknown record", mapLookup{}, http.MethodGet, "/rdf/package/missing", http.StatusNotFound},
		{"no lookup", nil, http.MethodGet, "/rdf/package/census", http.StatusNotFound},
		{"missing id", mapLookup{}, http.MethodGet, "/rdf/package/", http.StatusBadRequest},
		{"nested path", mapLookup{}, http.MethodGet, "/rdf/package/a/b", http.StatusBadRequest},
		{"lookup failure", failingLookup{}, http.MethodGet, "/rdf/package/census", http.StatusBadGateway},
		{"wrong method", mapLookup{}, http.MethodPost, "/rdf/package/census", http.StatusMethodNotAllowed},
		{"unknown format", mapLookup{"census": census()}, http.MethodGet, "/rdf/package/census?format=rdfxml", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, api.NewServer(tt.lookup, nil, nil))

			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHandleSparql(t *testing.T) {
	var gotQuery string
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotQuery = r.PostForm.Get("query")
		w.Header().Set("Content-Type", "application/sparql-results+xml")
		_, _ = w.Write([]byte("<sparql/>"))
	}))
	defer store.Close()

	syncer := triplestore.NewSynchronizer(triplestore.Config{StoreURL: store.URL}, nil)
	ts := newTestServer(t, api.NewServer(nil, nil, syncer))

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/rdf/sparql?query=" + url.QueryEscape("ASK { ?s ?p ?o }"))
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/sparql-results+xml", resp.Header.Get("Content-Type"))
		assert.Equal(t, "<sparql/>", string(body))
		assert.Equal(t, "ASK { ?s ?p ?o }", gotQuery)
	})

	t.Run("post", func(t *testing.T) {
		resp, err := http.PostForm(ts.URL+"/rdf/sparql", url.Values{"query": {"SELECT * { ?s ?p ?o }"}})
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "SELECT * { ?s ?p ?o }", gotQuery)
	})

	t.Run("missing query", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/rdf/sparql")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/rdf/sparql", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleSparqlWithoutStore(t *testing.T) {
	syncer := triplestore.NewSynchronizer(triplestore.Config{}, nil)
	ts := newTestServer(t, api.NewServer(nil, nil, syncer))

	resp, err := http.Get(ts.URL + "/rdf/sparql?query=ASK%20%7B%7D")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "no triple store configured"))
}

func TestHandleStatus(t *testing.T) {
	status := api.WithStatus(func() any {
		return map[string]any{"store_configured": true}
	})
	ts := newTestServer(t, api.NewServer(nil, nil, nil, status))

	resp, err := http.Get(ts.URL + "/rdf/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, true, got["store_configured"])
}
