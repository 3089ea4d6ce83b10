// Package events adapts catalog change notifications into graph store
// synchronisation: each notification on the catalog stream is decoded,
// resolved to a record snapshot, mapped and synced.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/catalogrdf/catalog"
)

var (
	// ErrUnknownOperation is returned for notifications whose operation is
	// not created, changed or deleted.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMalformedEvent is returned for notifications that do not decode.
	ErrMalformedEvent = errors.New("malformed event")
)

// DefaultSubjectPrefix is the subject prefix record notifications are
// published under; the operation is the final token.
const DefaultSubjectPrefix = "catalog.record"

// Envelope is a catalog change notification.
type Envelope struct {
	Operation string `json:"operation"`
	ID        string `json:"id,omitempty"`

	// Entity is the kind of domain object that changed. Empty means a
	// record; anything else is ignored.
	Entity string `json:"entity,omitempty"`

	// Record is the snapshot after the change. When absent it is
	// resolved by ID.
	Record *catalog.Record `json:"record,omitempty"`
}

// Decode parses a notification. When the envelope has no operation it is
// taken from the last token of subject.
func Decode(subject string, data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Operation == "" && subject != "" {
		env.Operation = subject[strings.LastIndex(subject, ".")+1:]
	}
	if env.ID == "" && env.Record != nil {
		env.ID = env.Record.ID
	}
	return &env, nil
}

// IsRecord reports whether the envelope describes a catalog record.
func (e *Envelope) IsRecord() bool {
	switch strings.ToLower(e.Entity) {
	case "", "record", "package", "dataset":
		return true
	default:
		return false
	}
}

// Subject returns the subject a notification for op is published on.
func Subject(prefix string, op catalog.Operation) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return strings.TrimSuffix(prefix, ".") + "." + string(op)
}
