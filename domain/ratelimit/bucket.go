// Package ratelimit provides pure rate limiting algorithms.
// All functions are deterministic - same input always produces same output.
package ratelimit

import "time"

// BucketState is the per-key limiter state (value type).
type BucketState struct {
	Consumed     int       // Points consumed in the current window
	ResetAt      time.Time // When the current window ends
	BlockedUntil time.Time // Zero when not blocked
}

// Config holds limiter configuration (value type).
type Config struct {
	Points   int           // Allowed consumptions per window
	Window   time.Duration // Window duration
	BlockFor time.Duration // Block duration once Points is exhausted
}

// Result is the outcome of a consumption attempt (value type).
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // Zero when allowed
}

// Take attempts to consume one point.
// This is a PURE function - no side effects, deterministic.
//
// Invariants:
//   - Consumed never exceeds Points without BlockedUntil being set.
//   - While blocked, every attempt is denied until BlockedUntil passes.
//
// Returns the decision and the updated state; the caller persists the
// state if needed.
func Take(state BucketState, cfg Config, now time.Time) (Result, BucketState) {
	// Active block: deny outright, state unchanged.
	if !state.BlockedUntil.IsZero() && now.Before(state.BlockedUntil) {
		return Result{
			Allowed:    false,
			Limit:      cfg.Points,
			Remaining:  0,
			ResetAt:    state.BlockedUntil,
			RetryAfter: state.BlockedUntil.Sub(now),
		}, state
	}

	// New or expired window: reset. A lapsed block also starts fresh.
	if state.ResetAt.IsZero() || !now.Before(state.ResetAt) {
		state = BucketState{ResetAt: now.Add(cfg.Window)}
	} else if !state.BlockedUntil.IsZero() {
		state.BlockedUntil = time.Time{}
		state.Consumed = 0
	}

	if state.Consumed < cfg.Points {
		state.Consumed++
		return Result{
			Allowed:   true,
			Limit:     cfg.Points,
			Remaining: cfg.Points - state.Consumed,
			ResetAt:   state.ResetAt,
		}, state
	}

	// Exhausted: block the key.
	state.BlockedUntil = now.Add(cfg.BlockFor)
	return Result{
		Allowed:    false,
		Limit:      cfg.Points,
		Remaining:  0,
		ResetAt:    state.BlockedUntil,
		RetryAfter: cfg.BlockFor,
	}, state
}

// RetrySeconds returns the retry delay rounded up to whole seconds.
// This is a PURE function.
func RetrySeconds(r Result) int {
	if r.Allowed || r.RetryAfter <= 0 {
		return 0
	}
	secs := int((r.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// RetryMinutes returns the retry delay rounded up to whole minutes.
// This is a PURE function.
func RetryMinutes(r Result) int {
	secs := RetrySeconds(r)
	if secs == 0 {
		return 0
	}
	mins := (secs + 59) / 60
	if mins < 1 {
		mins = 1
	}
	return mins
}
