// Package cache provides pluggable byte caches for graph and layout results.
//
// Walking a large repository and laying out thousands of rows is cheap but
// not free; the CLI and the HTTP server cache serialized results keyed by
// the repository head and the requested window, so a refresh that didn't
// move any ref is answered without touching the object database.
//
// Backends: [FileCache] for CLI usage (XDG cache dir), [RedisCache] for a
// long-running server, and [NullCache] to disable caching.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Default TTLs per cacheable stage. Graph windows go stale as soon as a
// ref moves, so the head hash in the key carries most of the freshness;
// the TTL only bounds disk growth.
const (
	TTLGraph  = 15 * time.Minute
	TTLLayout = 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the pipeline's cacheable stages.
// Keys embed everything that affects the result, so stale entries are
// simply never looked up.
type Keyer interface {
	// GraphKey identifies a walked commit window: the repository head,
	// the set of ref tips, and the skip/limit window.
	GraphKey(head string, refsHash string, skip, limit int) string

	// LayoutKey identifies a layout pass over a specific commit list.
	LayoutKey(commitsHash string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey generates a key for a walked commit window.
func (DefaultKeyer) GraphKey(head string, refsHash string, skip, limit int) string {
	return hashKey("graph", head, refsHash, skip, limit)
}

// LayoutKey generates a key for a layout pass.
func (DefaultKeyer) LayoutKey(commitsHash string) string {
	return hashKey("layout", commitsHash)
}

// ScopedKeyer wraps a Keyer with a prefix, giving independent namespaces
// to servers that handle more than one repository.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey generates a prefixed key for a walked commit window.
func (k *ScopedKeyer) GraphKey(head string, refsHash string, skip, limit int) string {
	return k.prefix + k.inner.GraphKey(head, refsHash, skip, limit)
}

// LayoutKey generates a prefixed key for a layout pass.
func (k *ScopedKeyer) LayoutKey(commitsHash string) string {
	return k.prefix + k.inner.LayoutKey(commitsHash)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
