// Package store abstracts the per-user marker state the attempt lifecycle
// depends on: in-progress flags, completed-exam sets, cached results and
// practice exam blobs. The narrow KV contract keeps the state machine
// testable with an in-memory store while production runs on Redis.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// KV is the minimal key-value contract. Implementations must treat a
// zero TTL as "no expiry", and AddToSet must be atomic: concurrent adds
// to the same key never drop members.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	AddToSet(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}
