// Package config provides configuration loading and management for
// catalogrdf.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete catalogrdf configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Catalog CatalogConfig `yaml:"catalog"`
	NATS    NATSConfig    `yaml:"nats"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// StoreConfig configures the triple store endpoint
type StoreConfig struct {
	// URL is the store base URL (empty = synchronisation disabled)
	URL string `yaml:"url"`
	// UpdatePath is resolved against URL for SPARQL updates (default: /update/)
	UpdatePath string `yaml:"update_path"`
	// QueryPath is resolved against URL for SPARQL queries (default: /sparql/)
	QueryPath string `yaml:"query_path"`
}

// CatalogConfig configures how records are found and described
type CatalogConfig struct {
	// SiteURL is the public catalog root; linked records resolve to
	// <site_url>/dataset/<name>
	SiteURL string `yaml:"site_url"`
	// APIURL is the action API root used to look records up by id
	APIURL string `yaml:"api_url"`
	// LicenseBase is the namespace license ids resolve under
	LicenseBase string `yaml:"license_base"`
	// SnapshotDSN is a sqlite path or postgres:// DSN for the local
	// record snapshot store (empty = disabled)
	SnapshotDSN string `yaml:"snapshot_dsn"`
	// SnapshotBucket is a NATS KV bucket for record snapshots, used by
	// serve instead of a database (empty = disabled)
	SnapshotBucket string `yaml:"snapshot_bucket"`
}

// NATSConfig configures the NATS connection and the catalog stream
type NATSConfig struct {
	URL        string        `yaml:"url"`
	Stream     string        `yaml:"stream"`
	Subject    string        `yaml:"subject"`
	Consumer   string        `yaml:"consumer"`
	MaxDeliver int           `yaml:"max_deliver"`
	AckWait    time.Duration `yaml:"ack_wait"`
}

// HTTPConfig configures the read API
type HTTPConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			URL:        "", // Disabled
			UpdatePath: "/update/",
			QueryPath:  "/sparql/",
		},
		Catalog: CatalogConfig{
			LicenseBase: "http://www.opendefinition.org/licenses/",
		},
		NATS: NATSConfig{
			URL:        "nats://localhost:4222",
			Stream:     "CATALOG",
			Subject:    "catalog.record.>",
			Consumer:   "catalogrdf",
			MaxDeliver: 3,
			AckWait:    30 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:   ":8080",
			Prefix: "/rdf/",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	urls := []struct{ name, value string }{
		{"store.url", c.Store.URL},
		{"catalog.site_url", c.Catalog.SiteURL},
		{"catalog.api_url", c.Catalog.APIURL},
	}
	for _, u := range urls {
		if err := checkHTTPURL(u.value); err != nil {
			return fmt.Errorf("%s: %w", u.name, err)
		}
	}
	if c.Catalog.SnapshotDSN != "" && c.Catalog.SnapshotBucket != "" {
		return fmt.Errorf("catalog.snapshot_dsn and catalog.snapshot_bucket are mutually exclusive")
	}
	if c.Catalog.LicenseBase == "" {
		return fmt.Errorf("catalog.license_base is required")
	}
	if c.NATS.Stream == "" {
		return fmt.Errorf("nats.stream is required")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required")
	}
	if c.NATS.MaxDeliver < 0 {
		return fmt.Errorf("nats.max_deliver must not be negative")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	return nil
}

// checkHTTPURL accepts an empty value or an absolute http(s) URL.
func checkHTTPURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Store
	mergeString(&c.Store.URL, other.Store.URL)
	mergeString(&c.Store.UpdatePath, other.Store.UpdatePath)
	mergeString(&c.Store.QueryPath, other.Store.QueryPath)

	// Catalog
	mergeString(&c.Catalog.SiteURL, other.Catalog.SiteURL)
	mergeString(&c.Catalog.APIURL, other.Catalog.APIURL)
	mergeString(&c.Catalog.LicenseBase, other.Catalog.LicenseBase)
	mergeString(&c.Catalog.SnapshotDSN, other.Catalog.SnapshotDSN)
	mergeString(&c.Catalog.SnapshotBucket, other.Catalog.SnapshotBucket)

	// NATS
	mergeString(&c.NATS.URL, other.NATS.URL)
	mergeString(&c.NATS.Stream, other.NATS.Stream)
	mergeString(&c.NATS.Subject, other.NATS.Subject)
	mergeString(&c.NATS.Consumer, other.NATS.Consumer)
	if other.NATS.MaxDeliver != 0 {
		c.NATS.MaxDeliver = other.NATS.MaxDeliver
	}
	if other.NATS.AckWait != 0 {
		c.NATS.AckWait = other.NATS.AckWait
	}

	// HTTP
	mergeString(&c.HTTP.Addr, other.HTTP.Addr)
	mergeString(&c.HTTP.Prefix, other.HTTP.Prefix)
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
