package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// SetJSON stores the JSON encoding of v
func SetJSON(c *Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value %s: %w", key, err)
	}
	return c.Set(key, data, ttl)
}

// GetJSON decodes the value stored under key into a T. A value that no
// longer decodes is dropped and reported as a miss.
func GetJSON[T any](c *Cache, key string) (T, bool) {
	var v T
	data, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		c.Delete(key)
		var zero T
		return zero, false
	}
	return v, true
}
