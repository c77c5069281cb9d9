// Package cache provides the layered response cache that keeps re-runs over
// unchanged survey data from repeating expensive generation calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// GenerationKey derives the cache key for one generation call. The key
// covers everything that shapes the output: provider, model, system prompt
// and the fully rendered section prompt. Any change to the survey data or a
// section template changes the rendered prompt and therefore the key.
func GenerationKey(provider, model, system, prompt string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{provider, model, system, prompt}, "\x00")))
	return "climate:v1:" + hex.EncodeToString(h[:])
}
