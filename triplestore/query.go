package triplestore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Query forwards a SPARQL query to the store's query endpoint and returns
// the raw response for the caller to relay. accept, when set, is passed
// through as the Accept header. The caller must close the response body.
func (s *Synchronizer) Query(ctx context.Context, query, accept string) (*http.Response, error) {
	base := s.StoreURL()
	if base == "" {
		return nil, ErrNoStore
	}

	endpoint, err := resolve(base, s.queryPath)
	if err != nil {
		return nil, err
	}

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", endpoint, err)
	}
	return resp, nil
}
