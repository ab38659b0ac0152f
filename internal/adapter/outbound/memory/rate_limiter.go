package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wispcms/wispgate/internal/domain/ratelimit"
)

// RateLimiter implements ratelimit.Limiter using GCRA in memory.
// Thread-safe for concurrent access. Includes background cleanup to
// prevent unbounded growth of the key map.
type RateLimiter struct {
	cells           map[string]time.Time // Theoretical Arrival Time per key
	mu              sync.Mutex
	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once
	cleanupInterval time.Duration
	maxTTL          time.Duration
}

// NewRateLimiter creates an in-memory limiter with default cleanup settings
// (cleanup every 5 minutes, keys dropped after 1 hour of inactivity).
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(5*time.Minute, 1*time.Hour)
}

// NewRateLimiterWithConfig creates an in-memory limiter with custom cleanup settings.
func NewRateLimiterWithConfig(cleanupInterval, maxTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		cells:           make(map[string]time.Time),
		stopChan:        make(chan struct{}),
		cleanupInterval: cleanupInterval,
		maxTTL:          maxTTL,
	}
}

// Allow checks if an attempt is allowed under the given config.
// Uses GCRA (Generic Cell Rate Algorithm) for smooth rate limiting.
func (r *RateLimiter) Allow(ctx context.Context, key string, config ratelimit.Config) (ratelimit.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Emission interval: time between allowed attempts.
	if config.Rate <= 0 {
		config.Rate = 1
	}
	emission := config.Period / time.Duration(config.Rate)

	// Burst offset allows burst attempts at once.
	if config.Burst <= 0 {
		config.Burst = config.Rate
	}
	burstOffset := time.Duration(config.Burst) * emission

	// Get or initialize TAT (Theoretical Arrival Time).
	tat, exists := r.cells[key]
	if !exists || tat.Before(now) {
		tat = now
	}

	allowAt := tat.Add(-burstOffset)

	if now.Before(allowAt) {
		return ratelimit.Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: allowAt.Sub(now),
			ResetAfter: tat.Sub(now),
		}, nil
	}

	// Allow the attempt, advance TAT.
	newTAT := tat.Add(emission)
	if newTAT.Before(now) {
		newTAT = now.Add(emission)
	}
	r.cells[key] = newTAT

	remaining := int((burstOffset - newTAT.Sub(now)) / emission)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > config.Burst {
		remaining = config.Burst
	}

	return ratelimit.Result{
		Allowed:    true,
		Remaining:  remaining,
		RetryAfter: 0,
		ResetAfter: newTAT.Sub(now),
	}, nil
}

// StartCleanup starts the background cleanup goroutine.
// It stops when ctx is cancelled or Stop() is called.
func (r *RateLimiter) StartCleanup(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.cleanup()
			}
		}
	}()
}

// cleanup removes keys whose TAT is older than maxTTL.
func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.maxTTL)
	cleaned := 0
	for key, tat := range r.cells {
		if tat.Before(cutoff) {
			delete(r.cells, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		slog.Debug("cleaned rate limit keys", "count", cleaned)
	}
}

// Stop stops the background cleanup goroutine and waits for it to exit.
// Safe to call multiple times.
func (r *RateLimiter) Stop() {
	r.once.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
}

// Size returns the number of tracked keys. Useful for testing cleanup behavior.
func (r *RateLimiter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cells)
}

// Compile-time interface verification.
var _ ratelimit.Limiter = (*RateLimiter)(nil)
