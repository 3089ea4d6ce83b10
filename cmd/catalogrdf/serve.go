package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/catalogrdf/api"
	"github.com/c360studio/catalogrdf/catalog"
	"github.com/c360studio/catalogrdf/config"
	"github.com/c360studio/catalogrdf/events"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var noConsumer bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Consume catalog notifications and serve the RDF API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, noConsumer)
		},
	}
	cmd.Flags().BoolVar(&noConsumer, "no-consumer", false, "Serve the HTTP API only, without connecting to NATS")
	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, noConsumer bool) error {
	logger := setupLogging(flags.logLevel)

	cfg, err := loadConfig(flags.configPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	var consumer *events.Consumer
	if !noConsumer {
		natsClient, err := connectToNATS(signalCtx, cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer natsClient.Close(context.Background())

		if cfg.Catalog.SnapshotBucket != "" {
			if err := a.attachKVSnapshots(signalCtx, natsClient, cfg.Catalog.SnapshotBucket); err != nil {
				return err
			}
		}

		consumer = events.NewConsumer(events.ConsumerConfig{
			Stream:       cfg.NATS.Stream,
			Subject:      cfg.NATS.Subject,
			ConsumerName: cfg.NATS.Consumer,
			MaxDeliver:   cfg.NATS.MaxDeliver,
			AckWait:      cfg.NATS.AckWait,
		}, natsClient, a.handler, logger)

		if err := consumer.EnsureStream(signalCtx); err != nil {
			return err
		}
		if err := consumer.Start(signalCtx); err != nil {
			return err
		}
		defer consumer.Stop(5 * time.Second)
	}

	if path := watchedConfigPath(flags.configPath, logger); path != "" {
		watcher, err := config.NewWatcher(path, config.NewLoader(logger).LoadFile, a.applyConfig, logger)
		if err != nil {
			logger.Warn("Config hot reload unavailable", "error", err)
		} else if err := watcher.Start(signalCtx); err != nil {
			logger.Warn("Config hot reload unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.mux(consumer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr, "prefix", cfg.HTTP.Prefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("catalogrdf ready", "version", Version, "store", a.syncer.StoreURL())

	select {
	case <-signalCtx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", "error", err)
	}

	logger.Info("catalogrdf shutdown complete")
	return nil
}

// mux builds the HTTP routes: the read API under the configured prefix
// and prometheus metrics on /metrics.
func (a *app) mux(consumer *events.Consumer) *http.ServeMux {
	mux := http.NewServeMux()

	server := api.NewServer(a.lookup, a.producer, a.syncer,
		api.WithLogger(a.logger),
		api.WithStatus(func() any {
			status := map[string]any{
				"version":          Version,
				"store_configured": a.syncer.StoreURL() != "",
			}
			if consumer != nil {
				status["consumer"] = consumer.Stats()
			}
			return status
		}))
	server.RegisterHTTPHandlers(a.cfg.HTTP.Prefix, mux)

	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics.PrometheusRegistry(), promhttp.HandlerOpts{}))
	return mux
}

// attachKVSnapshots keeps record snapshots in a JetStream KV bucket.
func (a *app) attachKVSnapshots(ctx context.Context, natsClient *natsclient.Client, bucket string) error {
	js, err := natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	store, err := catalog.NewKVSnapshotStore(ctx, js, bucket, a.logger)
	if err != nil {
		return err
	}
	a.useSnapshots(store, store)
	a.logger.Info("Record snapshots kept in KV bucket", "bucket", bucket)
	return nil
}

// watchedConfigPath returns the file to watch for hot reload: the
// explicit config file, else the project file if one exists.
func watchedConfigPath(explicit string, logger *slog.Logger) string {
	if explicit != "" {
		return explicit
	}
	return config.NewLoader(logger).FindProjectConfig()
}

func connectToNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

// wrapNATSError adds guidance for the common connection failures.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Start a NATS server with JetStream enabled (nats-server -js), set
NATS_URL to point at one, or run "catalogrdf serve --no-consumer" to
serve the HTTP API only.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
