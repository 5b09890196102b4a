// Package memory provides in-process implementations of storage ports.
package memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/lionscafe/api/domain/ratelimit"
	"github.com/lionscafe/api/ports"
)

// rateLimitShard is a single shard of the limiter state map.
type rateLimitShard struct {
	mu    sync.Mutex
	state map[string]ratelimit.BucketState
}

// RateLimitStore is a sharded in-memory rate limit store. Sharding keeps
// lock contention low under concurrent request load. State is process
// local: buckets reset on restart and are not shared across instances.
type RateLimitStore struct {
	shards    []*rateLimitShard
	numShards int
	cleanup   *time.Ticker
	done      chan struct{}
}

// RateLimitStoreConfig configures the store.
type RateLimitStoreConfig struct {
	NumShards       int           // default 32
	CleanupInterval time.Duration // default 5m
}

// NewRateLimitStore creates a sharded in-memory rate limit store.
func NewRateLimitStore(cfg RateLimitStoreConfig) *RateLimitStore {
	if cfg.NumShards <= 0 {
		cfg.NumShards = 32
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	s := &RateLimitStore{
		shards:    make([]*rateLimitShard, cfg.NumShards),
		numShards: cfg.NumShards,
		done:      make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &rateLimitShard{state: make(map[string]ratelimit.BucketState)}
	}

	s.cleanup = time.NewTicker(cfg.CleanupInterval)
	go s.cleanupLoop()

	return s
}

func (s *RateLimitStore) getShard(key string) *rateLimitShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(s.numShards)]
}

// Take atomically consumes one point for the key. The read-check-write
// happens under the shard lock so concurrent requests for one key are
// serialized.
func (s *RateLimitStore) Take(ctx context.Context, key string, cfg ratelimit.Config, now time.Time) (ratelimit.Result, error) {
	shard := s.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	result, newState := ratelimit.Take(shard.state[key], cfg, now)
	shard.state[key] = newState
	return result, nil
}

// Peek returns the current state for a key without consuming (for tests).
func (s *RateLimitStore) Peek(key string) ratelimit.BucketState {
	shard := s.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.state[key]
}

// Len returns the total number of tracked keys (for tests).
func (s *RateLimitStore) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		total += len(shard.state)
		shard.mu.Unlock()
	}
	return total
}

// Clear removes all state (for tests).
func (s *RateLimitStore) Clear() {
	for _, shard := range s.shards {
		shard.mu.Lock()
		shard.state = make(map[string]ratelimit.BucketState)
		shard.mu.Unlock()
	}
}

// Close stops the cleanup goroutine.
func (s *RateLimitStore) Close() error {
	close(s.done)
	s.cleanup.Stop()
	return nil
}

func (s *RateLimitStore) cleanupLoop() {
	for {
		select {
		case <-s.cleanup.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

// removeExpired drops buckets whose window and block both lapsed more
// than an hour ago.
func (s *RateLimitStore) removeExpired() {
	cutoff := time.Now().Add(-time.Hour)

	for _, shard := range s.shards {
		shard.mu.Lock()
		for key, state := range shard.state {
			if state.ResetAt.Before(cutoff) && state.BlockedUntil.Before(cutoff) {
				delete(shard.state, key)
			}
		}
		shard.mu.Unlock()
	}
}

// Ensure interface compliance.
var _ ports.RateLimitStore = (*RateLimitStore)(nil)
