// Package ratelimit provides login throttling domain types.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Config defines the throttle parameters for one key.
type Config struct {
	// Rate is the number of allowed attempts in the period.
	Rate int

	// Burst is the maximum number of attempts that can occur at once.
	// Burst should be >= Rate for meaningful operation.
	Burst int

	// Period is the time window for the limit.
	Period time.Duration
}

// Result contains the outcome of a throttle check.
type Result struct {
	// Allowed indicates whether the attempt may proceed.
	Allowed bool

	// Remaining is the number of attempts left in the current window.
	Remaining int

	// RetryAfter is the duration until the next attempt will be allowed.
	// Only meaningful when Allowed is false.
	RetryAfter time.Duration

	// ResetAfter is the duration until the limit resets.
	ResetAfter time.Duration
}

// LoginKey derives the throttle key for a login attempt. The client IP and
// claimed username are hashed together so the limiter map never stores raw
// credentials, and so attempts against one account from one address share a
// budget.
func LoginKey(ip, username string) string {
	h := xxhash.New()
	_, _ = h.WriteString(ip)
	_, _ = h.Write([]byte{0}) // separator
	_, _ = h.WriteString(username)
	return fmt.Sprintf("login:%016x", h.Sum64())
}
