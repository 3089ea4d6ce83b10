package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.URL != "" {
		t.Errorf("expected store disabled by default, got %s", cfg.Store.URL)
	}
	if cfg.Store.UpdatePath != "/update/" {
		t.Errorf("expected update path /update/, got %s", cfg.Store.UpdatePath)
	}
	if cfg.Store.QueryPath != "/sparql/" {
		t.Errorf("expected query path /sparql/, got %s", cfg.Store.QueryPath)
	}
	if cfg.Catalog.LicenseBase != "http://www.opendefinition.org/licenses/" {
		t.Errorf("unexpected license base %s", cfg.Catalog.LicenseBase)
	}
	if cfg.NATS.Subject != "catalog.record.>" {
		t.Errorf("expected subject catalog.record.>, got %s", cfg.NATS.Subject)
	}
	if cfg.HTTP.Prefix != "/rdf/" {
		t.Errorf("expected prefix /rdf/, got %s", cfg.HTTP.Prefix)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid store url",
			modify:  func(c *Config) { c.Store.URL = "http://localhost:8000" },
			wantErr: false,
		},
		{
			name:    "store url without scheme",
			modify:  func(c *Config) { c.Store.URL = "localhost:8000" },
			wantErr: true,
		},
		{
			name:    "site url with ftp scheme",
			modify:  func(c *Config) { c.Catalog.SiteURL = "ftp://catalog.example.org" },
			wantErr: true,
		},
		{
			name:    "api url without host",
			modify:  func(c *Config) { c.Catalog.APIURL = "http://" },
			wantErr: true,
		},
		{
			name: "both snapshot stores",
			modify: func(c *Config) {
				c.Catalog.SnapshotDSN = "snapshots.db"
				c.Catalog.SnapshotBucket = "CATALOG_RECORDS"
			},
			wantErr: true,
		},
		{
			name:    "missing license base",
			modify:  func(c *Config) { c.Catalog.LicenseBase = "" },
			wantErr: true,
		},
		{
			name:    "missing stream",
			modify:  func(c *Config) { c.NATS.Stream = "" },
			wantErr: true,
		},
		{
			name:    "negative max deliver",
			modify:  func(c *Config) { c.NATS.MaxDeliver = -1 },
			wantErr: true,
		},
		{
			name:    "missing http addr",
			modify:  func(c *Config) { c.HTTP.Addr = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  url: "http://store.example.org:8000"
catalog:
  site_url: "http://catalog.example.org"
nats:
  ack_wait: 10s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Store.URL != "http://store.example.org:8000" {
		t.Errorf("expected store url, got %s", cfg.Store.URL)
	}
	if cfg.Catalog.SiteURL != "http://catalog.example.org" {
		t.Errorf("expected site url, got %s", cfg.Catalog.SiteURL)
	}
	if cfg.NATS.AckWait != 10*time.Second {
		t.Errorf("expected ack wait 10s, got %v", cfg.NATS.AckWait)
	}
	// Defaults survive for unset keys
	if cfg.Store.UpdatePath != "/update/" {
		t.Errorf("expected default update path, got %s", cfg.Store.UpdatePath)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("store: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestSaveToFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Store.URL = "http://store.example.org"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Store.URL != cfg.Store.URL {
		t.Errorf("expected %s, got %s", cfg.Store.URL, loaded.Store.URL)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{
		Store:   StoreConfig{URL: "http://store.example.org"},
		Catalog: CatalogConfig{SnapshotDSN: "snapshots.db"},
		NATS:    NATSConfig{MaxDeliver: 5},
		HTTP:    HTTPConfig{Addr: ":9090"},
	}

	base.Merge(other)

	if base.Store.URL != "http://store.example.org" {
		t.Errorf("expected merged store url, got %s", base.Store.URL)
	}
	if base.Store.UpdatePath != "/update/" {
		t.Errorf("expected update path to be preserved, got %s", base.Store.UpdatePath)
	}
	if base.Catalog.SnapshotDSN != "snapshots.db" {
		t.Errorf("expected merged dsn, got %s", base.Catalog.SnapshotDSN)
	}
	if base.NATS.MaxDeliver != 5 {
		t.Errorf("expected max deliver 5, got %d", base.NATS.MaxDeliver)
	}
	if base.NATS.Stream != "CATALOG" {
		t.Errorf("expected stream to be preserved, got %s", base.NATS.Stream)
	}
	if base.HTTP.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", base.HTTP.Addr)
	}

	base.Merge(nil)
}
