// Package cache provides process-lifetime TTL caches with read-through population
//
// A TTL cache has no capacity bound; entries leave only when they expire.
// Reads after expiry behave exactly like misses.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is an unbounded string-keyed cache whose entries expire after a fixed ttl
// safe for concurrent use
type TTL[V any] struct {
	entries *expirable.LRU[string, V]
	ttl     time.Duration
}

// New builds a TTL cache; ttl <= 0 keeps entries for the life of the process
func New[V any](ttl time.Duration) *TTL[V] {
	// size 0 disables the LRU bound, leaving expiry as the only eviction
	return &TTL[V]{
		entries: expirable.NewLRU[string, V](0, nil, ttl),
		ttl:     ttl,
	}
}

// Get returns the live value for key; ok is false on a miss or after expiry
func (c *TTL[V]) Get(key string) (v V, ok bool) {
	return c.entries.Get(key)
}

// Set stores v under key, overwriting any previous entry and restarting its ttl
func (c *TTL[V]) Set(key string, v V) {
	c.entries.Add(key, v)
}

// Delete drops key if present
func (c *TTL[V]) Delete(key string) {
	c.entries.Remove(key)
}

// Purge drops every entry
func (c *TTL[V]) Purge() {
	c.entries.Purge()
}

// Len returns the number of entries, expired ones may still be counted until swept
func (c *TTL[V]) Len() int { return c.entries.Len() }

// TTL returns the configured time to live
func (c *TTL[V]) TTL() time.Duration { return c.ttl }
