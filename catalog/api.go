package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize bounds action API responses.
const maxResponseSize = 10 << 20

// APIClient looks records up through the catalog's action API
// (package_show).
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// APIOption configures an APIClient.
type APIOption func(*APIClient)

// WithHTTPClient overrides the HTTP client. A nil client keeps the default.
func WithHTTPClient(c *http.Client) APIOption {
	return func(a *APIClient) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithAPILogger sets the logger.
func WithAPILogger(logger *slog.Logger) APIOption {
	return func(a *APIClient) {
		a.logger = logger
	}
}

// NewAPIClient creates a client for the action API rooted at baseURL
// (the catalog site, e.g. https://catalog.example.org).
func NewAPIClient(baseURL string, opts ...APIOption) *APIClient {
	a := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type actionResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Type    string `json:"__type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetRecord implements Lookup.
func (a *APIClient) GetRecord(ctx context.Context, id string) (*Record, error) {
	endpoint := a.baseURL + "/api/3/action/package_show?id=" + url.QueryEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("package_show %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRecordNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read package_show response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("package_show %s: unexpected status %d", id, resp.StatusCode)
	}

	var ar actionResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, fmt.Errorf("decode package_show response: %w", err)
	}
	if !ar.Success {
		if ar.Error != nil && ar.Error.Type == "Not Found Error" {
			return nil, ErrRecordNotFound
		}
		msg := "unknown error"
		if ar.Error != nil {
			msg = ar.Error.Message
		}
		return nil, fmt.Errorf("package_show %s: %s", id, msg)
	}

	rec, err := ParseRecord(ar.Result)
	if err != nil {
		return nil, err
	}
	if rec.CatalogURL == "" && rec.Name != "" {
		rec.CatalogURL = a.baseURL + "/dataset/" + rec.Name
	}
	a.logger.Debug("Fetched record from action API", "id", id, "name", rec.Name)
	return rec, nil
}
