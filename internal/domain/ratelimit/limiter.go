package ratelimit

import "context"

// Limiter is the interface for throttle checks.
//
// Implementations should use GCRA (Generic Cell Rate Algorithm) for smooth
// limiting without burst spikes at window boundaries. The interface is
// storage-agnostic; the in-memory implementation lives in
// adapter/outbound/memory.
type Limiter interface {
	// Allow checks whether an attempt identified by key may proceed under
	// the given config, and atomically advances the limiter state.
	// If the attempt is rejected, RetryAfter in the result indicates when
	// the next attempt will be allowed.
	Allow(ctx context.Context, key string, config Config) (Result, error)
}
