package catalog

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by a Lookup that has no record for an id.
var ErrRecordNotFound = errors.New("record not found")

// Lookup fetches the current snapshot of a record by id or name.
type Lookup interface {
	GetRecord(ctx context.Context, id string) (*Record, error)
}

// Chain tries each lookup in order and returns the first record found.
// Errors other than ErrRecordNotFound stop the search.
type Chain []Lookup

// GetRecord implements Lookup.
func (c Chain) GetRecord(ctx context.Context, id string) (*Record, error) {
	for _, l := range c {
		if l == nil {
			continue
		}
		rec, err := l.GetRecord(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, ErrRecordNotFound
}
