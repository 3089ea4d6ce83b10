package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is the persisted form of a record.
type Snapshot struct {
	ID        string         `gorm:"primaryKey;size:100"`
	Name      string         `gorm:"index;size:200"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName implements gorm's tabler.
func (Snapshot) TableName() string {
	return "catalog_record_snapshot"
}

// SnapshotStore keeps the last snapshot seen for each record so records
// can be served and deleted without asking the platform again.
type SnapshotStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// OpenSnapshotStore opens the store described by dsn: a postgres:// or
// postgresql:// URL selects postgres, anything else is a sqlite path
// (":memory:" included). The schema is migrated on open.
func OpenSnapshotStore(dsn string, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return NewSnapshotStore(db, logger)
}

// NewSnapshotStore wraps an open gorm handle and migrates the schema.
func NewSnapshotStore(db *gorm.DB, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot store: %w", err)
	}
	return &SnapshotStore{db: db, logger: logger.With("store", "SnapshotStore")}, nil
}

// Save upserts the snapshot of rec.
func (s *SnapshotStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record id is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	snap := Snapshot{
		ID:        rec.ID,
		Name:      rec.Name,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "data", "updated_at"}),
		}).
		Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", rec.ID, err)
	}
	s.logger.Debug("Saved record snapshot", "id", rec.ID, "name", rec.Name)
	return nil
}

// GetRecord implements Lookup. id may be the record id or its name.
func (s *SnapshotStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).
		Where("id = ? OR name = ?", id, id).
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return ParseRecord([]byte(snap.Data))
}

// Delete removes the snapshot of a record. Deleting an unknown id is not
// an error.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Snapshot{}).Error; err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database connections.
func (s *SnapshotStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
