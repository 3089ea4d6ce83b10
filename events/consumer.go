package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// ConsumerConfig holds the JetStream settings of the catalog consumer.
type ConsumerConfig struct {
	Stream       string        `yaml:"stream" json:"stream"`
	Subject      string        `yaml:"subject" json:"subject"`
	ConsumerName string        `yaml:"consumer" json:"consumer"`
	MaxDeliver   int           `yaml:"max_deliver" json:"max_deliver"`
	AckWait      time.Duration `yaml:"ack_wait" json:"ack_wait"`
}

// DefaultConsumerConfig returns the consumer defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Stream:       "CATALOG",
		Subject:      DefaultSubjectPrefix + ".>",
		ConsumerName: "catalogrdf",
		MaxDeliver:   3,
		AckWait:      30 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c ConsumerConfig) Validate() error {
	if c.Stream == "" {
		return fmt.Errorf("stream is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if c.MaxDeliver < 0 {
		return fmt.Errorf("max_deliver must be non-negative")
	}
	return nil
}

// Consumer feeds catalog notifications from JetStream to a Handler, one
// at a time. Failed syncs are Nak'd for redelivery; notifications that
// can never succeed are terminated.
type Consumer struct {
	config     ConsumerConfig
	natsClient *natsclient.Client
	handler    *Handler
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewConsumer creates a Consumer. Zero fields of cfg take their defaults.
func NewConsumer(cfg ConsumerConfig, natsClient *natsclient.Client, handler *Handler, logger *slog.Logger) *Consumer {
	def := DefaultConsumerConfig()
	if cfg.Stream == "" {
		cfg.Stream = def.Stream
	}
	if cfg.Subject == "" {
		cfg.Subject = def.Subject
	}
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = def.ConsumerName
	}
	if cfg.MaxDeliver == 0 {
		cfg.MaxDeliver = def.MaxDeliver
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = def.AckWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		config:     cfg,
		natsClient: natsClient,
		handler:    handler,
		logger:     logger,
	}
}

// EnsureStream creates or updates the stream the consumer reads from.
func (c *Consumer) EnsureStream(ctx context.Context) error {
	if c.natsClient == nil {
		return fmt.Errorf("NATS client required")
	}
	js, err := c.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.config.Stream,
		Subjects: []string{c.config.Subject},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", c.config.Stream, err)
	}
	c.logger.Debug("Catalog stream ready", "stream", c.config.Stream, "subject", c.config.Subject)
	return nil
}

// Start begins consuming notifications.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	c.running = true
	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	consumerCfg := natsclient.StreamConsumerConfig{
		StreamName:    c.config.Stream,
		ConsumerName:  c.config.ConsumerName,
		FilterSubject: c.config.Subject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    c.config.MaxDeliver,
		AckWait:       c.config.AckWait,
	}

	if err := c.natsClient.ConsumeStreamWithConfig(consumeCtx, consumerCfg, c.handleMessage); err != nil {
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("start consumer: %w", err)
	}

	c.logger.Info("Catalog consumer started",
		"stream", c.config.Stream,
		"subject", c.config.Subject,
		"consumer", c.config.ConsumerName)
	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, msg jetstream.Msg) {
	switch disposition(c.handler.HandleMessage(ctx, msg.Subject(), msg.Data())) {
	case ack:
		_ = msg.Ack()
		c.processed.Add(1)
	case term:
		c.logger.Warn("Dropping catalog notification", "subject", msg.Subject())
		_ = msg.Term()
		c.dropped.Add(1)
	default:
		c.logger.Warn("Catalog notification failed, will be redelivered", "subject", msg.Subject())
		_ = msg.Nak()
		c.failed.Add(1)
	}
}

type outcome int

const (
	ack outcome = iota
	nak
	term
)

// disposition maps a handler result to the message acknowledgement.
func disposition(err error) outcome {
	switch {
	case err == nil:
		return ack
	case errors.Is(err, ErrMalformedEvent), errors.Is(err, ErrUnknownOperation):
		return term
	default:
		return nak
	}
}

// Stop stops consuming. In-flight notifications finish on their own.
func (c *Consumer) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	c.logger.Info("Catalog consumer stopped",
		"processed", c.processed.Load(),
		"failed", c.failed.Load(),
		"dropped", c.dropped.Load())
	return nil
}

// Stats reports message counts since start.
type Stats struct {
	Running   bool  `json:"running"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Stats returns the consumer's counters.
func (c *Consumer) Stats() Stats {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	return Stats{
		Running:   running,
		Processed: c.processed.Load(),
		Failed:    c.failed.Load(),
		Dropped:   c.dropped.Load(),
	}
}
