// Package cache defines a minimal read-through cache port.
package cache

import "time"

// Cache is a process-local key/value cache with TTL. Set is advisory: an
// implementation may reject entries under memory pressure.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) bool
	Del(key string)
	Close()
}
