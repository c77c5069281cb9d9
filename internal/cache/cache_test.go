package cache

import (
	"testing"
	"time"
)

func TestGenerationKey(t *testing.T) {
	base := GenerationKey("openai", "gpt-4o-mini", "system", "prompt")

	if GenerationKey("openai", "gpt-4o-mini", "system", "prompt") != base {
		t.Error("key is not deterministic")
	}

	variants := []string{
		GenerationKey("anthropic", "gpt-4o-mini", "system", "prompt"),
		GenerationKey("openai", "gpt-4o", "system", "prompt"),
		GenerationKey("openai", "gpt-4o-mini", "other system", "prompt"),
		GenerationKey("openai", "gpt-4o-mini", "system", "other prompt"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key", i)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache returned a value")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if val, found := c.Get("k"); !found || string(val) != "v" {
		t.Errorf("Get() = %q, %v", val, found)
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("deleted key still present")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := GenerationKey("openai", "m", "s", "p")

	if err := c.Set(key, []byte("response body"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if val, found := c.Get(key); !found || string(val) != "response body" {
		t.Errorf("Get() = %q, %v", val, found)
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry still served")
	}
}

func TestLayeredCachePromotion(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Value survives a fresh memory layer via the disk layer
	c2 := NewLayeredCache(time.Minute, dir, time.Minute)
	if val, found := c2.Get("k"); !found || string(val) != "v" {
		t.Fatalf("Get() after restart = %q, %v", val, found)
	}

	// Now promoted into the new memory layer
	if _, found := c2.memory.Get("k"); !found {
		t.Error("disk hit was not promoted to memory")
	}
}
