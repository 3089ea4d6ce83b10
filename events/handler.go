package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/catalogrdf/catalog"
)

// Syncer applies a record change to the graph store.
type Syncer interface {
	Sync(ctx context.Context, rec *catalog.Record, op catalog.Operation) error
}

// SnapshotWriter keeps a local copy of records seen on the stream.
type SnapshotWriter interface {
	Save(ctx context.Context, rec *catalog.Record) error
	Delete(ctx context.Context, id string) error
}

// Handler runs one produce and sync cycle per notification. Notifications
// for the same record are serialised so the delete and insert halves of
// two updates never interleave.
type Handler struct {
	syncer    Syncer
	lookup    catalog.Lookup
	snapshots SnapshotWriter
	logger    *slog.Logger
	metrics   *Metrics

	locksMu sync.Mutex
	locks   map[string]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLookup resolves notifications that carry only a record id.
func WithLookup(l catalog.Lookup) HandlerOption {
	return func(h *Handler) { h.lookup = l }
}

// WithSnapshots saves records after a successful sync and removes them
// after a delete.
func WithSnapshots(w SnapshotWriter) HandlerOption {
	return func(h *Handler) { h.snapshots = w }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics counts handled notifications on m.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates a Handler that syncs through syncer.
func NewHandler(syncer Syncer, opts ...HandlerOption) *Handler {
	h := &Handler{
		syncer: syncer,
		logger: slog.Default(),
		locks:  make(map[string]*recordLock),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleMessage decodes a raw notification and handles it.
func (h *Handler) HandleMessage(ctx context.Context, subject string, data []byte) error {
	env, err := Decode(subject, data)
	if err != nil {
		h.metrics.record("", statusError)
		return err
	}
	return h.Handle(ctx, env)
}

// Handle processes one notification. Non-record notifications are
// ignored. A deleted record that no lookup knows is logged and dropped.
func (h *Handler) Handle(ctx context.Context, env *Envelope) error {
	if !env.IsRecord() {
		h.logger.Debug("Ignoring non-record notification", "entity", env.Entity, "id", env.ID)
		h.metrics.record("", statusIgnored)
		return nil
	}

	op, err := catalog.ParseOperation(env.Operation)
	if err != nil {
		h.metrics.record("", statusError)
		return fmt.Errorf("%w: %q", ErrUnknownOperation, env.Operation)
	}

	rec, err := h.resolve(ctx, env)
	if err != nil {
		if errors.Is(err, catalog.ErrRecordNotFound) && op == catalog.OperationDeleted {
			h.logger.Warn("Deleted record not found, nothing to remove", "id", env.ID)
			h.metrics.record(string(op), statusIgnored)
			return nil
		}
		h.metrics.record(string(op), statusError)
		return err
	}

	unlock := h.lock(rec.ID)
	defer unlock()

	if err := h.syncer.Sync(ctx, rec, op); err != nil {
		h.metrics.record(string(op), statusError)
		return fmt.Errorf("sync record %s: %w", rec.ID, err)
	}
	h.updateSnapshot(ctx, rec, op)
	h.metrics.record(string(op), statusOK)

	h.logger.Debug("Synced record", "id", rec.ID, "name", rec.Name, "operation", op)
	return nil
}

func (h *Handler) resolve(ctx context.Context, env *Envelope) (*catalog.Record, error) {
	if env.Record != nil {
		return env.Record, nil
	}
	if env.ID == "" {
		return nil, fmt.Errorf("%w: no record and no id", ErrMalformedEvent)
	}
	if h.lookup == nil {
		return nil, fmt.Errorf("resolve record %s: %w", env.ID, catalog.ErrRecordNotFound)
	}
	rec, err := h.lookup.GetRecord(ctx, env.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve record %s: %w", env.ID, err)
	}
	return rec, nil
}

func (h *Handler) updateSnapshot(ctx context.Context, rec *catalog.Record, op catalog.Operation) {
	if h.snapshots == nil {
		return
	}
	var err error
	if op == catalog.OperationDeleted {
		err = h.snapshots.Delete(ctx, rec.ID)
	} else {
		err = h.snapshots.Save(ctx, rec)
	}
	if err != nil {
		h.logger.Warn("Failed to update record snapshot", "id", rec.ID, "operation", op, "error", err)
	}
}

// lock serialises work on one record id and returns the release func.
func (h *Handler) lock(id string) func() {
	h.locksMu.Lock()
	l, ok := h.locks[id]
	if !ok {
		l = &recordLock{}
		h.locks[id] = l
	}
	l.refs++
	h.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, id)
		}
		h.locksMu.Unlock()
	}
}
