// Package catalog defines the catalog record snapshot consumed by the graph
// mapping, the lookup contract used to fetch records by identity, and the
// lookups available to this service: the catalog action API and a local
// snapshot store.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operation is the kind of change a catalog notification reports.
type Operation string

// Operation values, matching the host platform's domain object operations.
const (
	OperationCreated Operation = "created"
	OperationChanged Operation = "changed"
	OperationDeleted Operation = "deleted"
)

// ParseOperation accepts the operation names used by the catalog platform
// ("new" is an alias of "created").
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created", "create", "new":
		return OperationCreated, nil
	case "changed", "change", "updated", "update":
		return OperationChanged, nil
	case "deleted", "delete":
		return OperationDeleted, nil
	default:
		return "", fmt.Errorf("unknown operation: %q", s)
	}
}

// Resource describes one resource attached to a record. Nil fields were
// null in the source dictionary.
type Resource struct {
	URL         *string `json:"url"`
	Format      *string `json:"format"`
	Description *string `json:"description"`
}

// Record is a read-only snapshot of a catalog package.
type Record struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Title           *string        `json:"title"`
	URL             *string        `json:"url"`
	Notes           *string        `json:"notes"`
	LicenseID       *string        `json:"license_id"`
	Author          *string        `json:"author"`
	AuthorEmail     *string        `json:"author_email"`
	Maintainer      *string        `json:"maintainer"`
	MaintainerEmail *string        `json:"maintainer_email"`
	Tags            []string       `json:"tags"`
	Resources       []Resource     `json:"resources"`
	Extras          map[string]any `json:"extras"`
	Relationships   []any          `json:"relationships"`
	RatingsAverage  *float64       `json:"ratings_average"`

	// CatalogURL is the record's dereferenceable identifier (ckan_url).
	// Empty when the platform did not supply one.
	CatalogURL string `json:"ckan_url,omitempty"`
}

// recordWire accepts both shapes the platform emits for tags and extras:
// plain strings / objects from the package dictionary, and the action
// API's lists of {"name"} tags and {"key","value"} extras.
type recordWire struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Title           *string         `json:"title"`
	URL             *string         `json:"url"`
	Notes           *string         `json:"notes"`
	LicenseID       *string         `json:"license_id"`
	Author          *string         `json:"author"`
	AuthorEmail     *string         `json:"author_email"`
	Maintainer      *string         `json:"maintainer"`
	MaintainerEmail *string         `json:"maintainer_email"`
	Tags            json.RawMessage `json:"tags"`
	Resources       []Resource      `json:"resources"`
	Extras          json.RawMessage `json:"extras"`
	Relationships   []any           `json:"relationships"`
	RatingsAverage  *float64        `json:"ratings_average"`
	CatalogURL      *string         `json:"ckan_url"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	tags, err := decodeTags(w.Tags)
	if err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	extras, err := decodeExtras(w.Extras)
	if err != nil {
		return fmt.Errorf("decode extras: %w", err)
	}

	*r = Record{
		ID:              w.ID,
		Name:            w.Name,
		Title:           w.Title,
		URL:             w.URL,
		Notes:           w.Notes,
		LicenseID:       w.LicenseID,
		Author:          w.Author,
		AuthorEmail:     w.AuthorEmail,
		Maintainer:      w.Maintainer,
		MaintainerEmail: w.MaintainerEmail,
		Tags:            tags,
		Resources:       w.Resources,
		Extras:          extras,
		Relationships:   w.Relationships,
		RatingsAverage:  w.RatingsAverage,
	}
	if w.CatalogURL != nil {
		r.CatalogURL = *w.CatalogURL
	}
	return nil
}

func decodeTags(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			tags = append(tags, s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, err
		}
		tags = append(tags, obj.Name)
	}
	return tags, nil
}

func decodeExtras(raw json.RawMessage) (map[string]any, error) {
	extras := make(map[string]any)
	if isNull(raw) {
		return extras, nil
	}
	if err := json.Unmarshal(raw, &extras); err == nil {
		return extras, nil
	}
	var pairs []struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, err
	}
	for _, p := range pairs {
		extras[p.Key] = p.Value
	}
	return extras, nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// ParseRecord decodes a package dictionary.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return &r, nil
}
