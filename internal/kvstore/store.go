// internal/kvstore/store.go
// Expiring key-value store contract shared by the seen registry,
// the queue cache and the throttle counters

package kvstore

import (
	"context"
	"time"
)

// CounterPair describes one atomic check-and-increment over a primary
// counter and an optional secondary counter. A limit of zero disables
// the check for that counter.
type CounterPair struct {
	PrimaryKey     string
	PrimaryLimit   int64
	SecondaryKey   string
	SecondaryLimit int64
	// IncrementSecondary also checks and bumps SecondaryKey
	IncrementSecondary bool
	// TTL is applied to a counter that has no expiry yet
	TTL time.Duration
}

// CounterOutcome tells which counter, if any, blocked the increment
type CounterOutcome int

const (
	CounterIncremented CounterOutcome = iota
	CounterPrimaryExhausted
	CounterSecondaryExhausted
)

// CounterResult carries the counter values after the call. When the call
// was refused the values are the unchanged current ones.
type CounterResult struct {
	Outcome   CounterOutcome
	Primary   int64
	Secondary int64
}

// Store is an external expiring key-value store. Implementations must make
// IncrementWithinLimits a single atomic operation on the server.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	GetInt(ctx context.Context, key string) (int64, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// TTL returns the remaining lifetime; found is false for missing keys
	// and keys without an expiry.
	TTL(ctx context.Context, key string) (ttl time.Duration, found bool, err error)

	// SetAdd adds members and sets ttl when the set has no expiry yet.
	// A zero ttl leaves the set without expiry.
	SetAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error
	// SetAddRefresh adds members and always resets the set's ttl.
	SetAddRefresh(ctx context.Context, key string, ttl time.Duration, members ...string) error
	SetMembers(ctx context.Context, key string) ([]string, error)

	IncrementWithinLimits(ctx context.Context, pair CounterPair) (CounterResult, error)
}
