package main

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semstreams/metric"

	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/config"
	"github.com/c360studio/catalogrdf/events"
	"github.com/c360studio/catalogrdf/mapping"
	"github.com/c360studio/catalogrdf/triplestore"
	"github.com/c360studio/catalogrdf/vocabulary/dcat"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	metrics      *metric.MetricsRegistry
	eventMetrics *events.Metrics
	producer     *mapping.Producer
	syncer       *triplestore.Synchronizer
	snapshots    *catalog.SnapshotStore
	writer       events.SnapshotWriter
	lookup       catalog.Chain
	handler      *events.Handler
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metric.NewMetricsRegistry(),
	}

	a.producer = mapping.NewProducer(
		dcat.NewRegistry(cfg.Catalog.LicenseBase),
		mapping.WithTargetResolver(mapping.SiteResolver(cfg.Catalog.SiteURL)),
		mapping.WithLogger(logger),
	)

	storeMetrics, err := triplestore.NewMetrics(a.metrics)
	if err != nil {
		return nil, fmt.Errorf("register store metrics: %w", err)
	}
	a.syncer = triplestore.NewSynchronizer(triplestore.Config{
		StoreURL:   cfg.Store.URL,
		UpdatePath: cfg.Store.UpdatePath,
		QueryPath:  cfg.Store.QueryPath,
	}, a.producer, triplestore.WithLogger(logger), triplestore.WithMetrics(storeMetrics))

	if cfg.Store.URL == "" {
		logger.Warn("No store URL configured, triple store updates are disabled")
	}

	if cfg.Catalog.SnapshotDSN != "" {
		a.snapshots, err = catalog.OpenSnapshotStore(cfg.Catalog.SnapshotDSN, logger)
		if err != nil {
			return nil, err
		}
		a.writer = a.snapshots
		a.lookup = append(a.lookup, a.snapshots)
	}
	if cfg.Catalog.APIURL != "" {
		a.lookup = append(a.lookup, catalog.NewAPIClient(cfg.Catalog.APIURL, catalog.WithAPILogger(logger)))
	}

	a.eventMetrics, err = events.NewMetrics(a.metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("register event metrics: %w", err)
	}
	a.buildHandler()

	return a, nil
}

// useSnapshots makes w the snapshot writer and the first lookup, then
// rebuilds the handler around it.
func (a *app) useSnapshots(w events.SnapshotWriter, lookup catalog.Lookup) {
	a.writer = w
	a.lookup = append(catalog.Chain{lookup}, a.lookup...)
	a.buildHandler()
}

func (a *app) buildHandler() {
	opts := []events.HandlerOption{
		events.WithLookup(a.lookup),
		events.WithLogger(a.logger),
		events.WithMetrics(a.eventMetrics),
	}
	if a.writer != nil {
		opts = append(opts, events.WithSnapshots(a.writer))
	}
	a.handler = events.NewHandler(a.syncer, opts...)
}

// applyConfig takes over the settings that can change without a restart.
func (a *app) applyConfig(cfg *config.Config) {
	a.syncer.SetStoreURL(cfg.Store.URL)
}

// Close releases the snapshot store.
func (a *app) Close() error {
	if a.snapshots == nil {
		return nil
	}
	return a.snapshots.Close()
}
