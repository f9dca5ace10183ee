// Package store implements the wide-column persistence side of the token
// service: a keyspace/family/row-key/column-name addressed client with
// per-column TTL, and an adapter translating that shape to and from a
// token record.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any underlying store transport failure. Callers
// should treat it as an operational error, not one of the token
// service's client-visible outcomes.
var ErrUnavailable = errors.New("store: backend unavailable")

// Client is the wide-column store collaborator the token service depends
// on. A row is addressed by a 16-byte key within a keyspace/family pair;
// each column carries its own independent TTL.
type Client interface {
	// SetColumns writes columns to rowKey as a single logical batch, each
	// column expiring after ttl.
	SetColumns(ctx context.Context, keyspace, family string, rowKey [16]byte, columns map[string][]byte, ttl time.Duration) error

	// GetColumns reads the named columns of rowKey. Columns that have
	// expired or were never written are omitted from the result, not
	// reported as zero-length values.
	GetColumns(ctx context.Context, keyspace, family string, rowKey [16]byte, columnNames []string) (map[string][]byte, error)
}
