package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultSnapshotBucket is the KV bucket used when none is configured.
const DefaultSnapshotBucket = "CATALOG_RECORDS"

// Key prefixes inside the bucket. Records live under id.<id>; name.<name>
// holds the id of the record currently carrying that name.
const (
	kvIDPrefix   = "id."
	kvNamePrefix = "name."
)

// kvBucket is the part of jetstream.KeyValue the store uses.
type kvBucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}

// KVSnapshotStore keeps record snapshots in a NATS KV bucket. It is the
// broker-side alternative to SnapshotStore for deployments without a
// database.
type KVSnapshotStore struct {
	kv     kvBucket
	logger *slog.Logger
}

// NewKVSnapshotStore opens bucket, creating it if it does not exist.
func NewKVSnapshotStore(ctx context.Context, js jetstream.JetStream, bucket string, logger *slog.Logger) (*KVSnapshotStore, error) {
	if bucket == "" {
		bucket = DefaultSnapshotBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open snapshot bucket %s: %w", bucket, err)
	}
	return newKVSnapshotStore(kv, logger), nil
}

func newKVSnapshotStore(kv kvBucket, logger *slog.Logger) *KVSnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVSnapshotStore{kv: kv, logger: logger.With("store", "KVSnapshotStore")}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Catalog record snapshots",
		History:     5,
	})
}

// Save stores rec and points its name at it. A renamed record loses its
// old name entry.
func (s *KVSnapshotStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record id is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	previous, err := s.byID(ctx, rec.ID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	if _, err := s.kv.Put(ctx, kvIDPrefix+rec.ID, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", rec.ID, err)
	}
	if rec.Name != "" {
		if _, err := s.kv.Put(ctx, kvNamePrefix+rec.Name, []byte(rec.ID)); err != nil {
			return fmt.Errorf("index snapshot %s: %w", rec.Name, err)
		}
	}
	if previous != nil && previous.Name != "" && previous.Name != rec.Name {
		if err := s.kv.Delete(ctx, kvNamePrefix+previous.Name); err != nil {
			s.logger.Warn("Failed to drop stale name entry", "name", previous.Name, "error", err)
		}
	}

	s.logger.Debug("Saved record snapshot", "id", rec.ID, "name", rec.Name)
	return nil
}

// GetRecord implements Lookup. id may be the record id or its name.
func (s *KVSnapshotStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	rec, err := s.byID(ctx, id)
	if !errors.Is(err, ErrRecordNotFound) {
		return rec, err
	}

	entry, err := s.kv.Get(ctx, kvNamePrefix+id)
	if isKeyNotFound(err) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve name %s: %w", id, err)
	}
	return s.byID(ctx, string(entry.Value()))
}

// Delete removes a record and its name entry. Deleting an unknown id is
// not an error.
func (s *KVSnapshotStore) Delete(ctx context.Context, id string) error {
	rec, err := s.byID(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.kv.Delete(ctx, kvIDPrefix+id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if rec.Name != "" {
		if err := s.kv.Delete(ctx, kvNamePrefix+rec.Name); err != nil {
			return fmt.Errorf("delete name entry %s: %w", rec.Name, err)
		}
	}
	return nil
}

func (s *KVSnapshotStore) byID(ctx context.Context, id string) (*Record, error) {
	entry, err := s.kv.Get(ctx, kvIDPrefix+id)
	if isKeyNotFound(err) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return ParseRecord(entry.Value())
}

func isKeyNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
