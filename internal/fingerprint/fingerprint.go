// Package fingerprint provides cheap change detection for the vault: a hash
// over every (path, mtime) pair from a walk, cached for the poll interval.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jasminestrone/tachylite/internal/vault"
)

type state struct {
	hash string
	at   time.Time
}

// Cache computes and caches the vault fingerprint.
//
// Readers load the current state through an atomic pointer, so a concurrent
// refresh can never expose a torn value. Recomputation is serialized by a
// mutex; readers may see a value up to one TTL old.
type Cache struct {
	v     *vault.Vault
	ttl   time.Duration
	mu    sync.Mutex
	state atomic.Pointer[state]
}

// NewCache creates a Cache over v with the given TTL (the poll interval).
func NewCache(v *vault.Vault, ttl time.Duration) *Cache {
	return &Cache{v: v, ttl: ttl}
}

// Hash returns the current fingerprint, recomputing only when the cached
// value has expired or was invalidated. If nothing in the vault changed
// between two calls the value is identical; any path or mtime change yields
// a different value with overwhelming probability.
func (c *Cache) Hash() (string, error) {
	if s := c.state.Load(); s != nil && time.Since(s.at) < c.ttl {
		return s.hash, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.state.Load(); s != nil && time.Since(s.at) < c.ttl {
		return s.hash, nil
	}

	entries, err := c.v.Walk()
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s:%d;", e.Path, e.ModTime.UnixNano())
	}
	digest := hex.EncodeToString(h.Sum(nil))
	c.state.Store(&state{hash: digest, at: time.Now()})
	return digest, nil
}

// Invalidate drops the cached value so the next Hash call re-walks. Called
// after every write or delete through the API and by the filesystem watcher.
func (c *Cache) Invalidate() {
	c.state.Store(nil)
}
