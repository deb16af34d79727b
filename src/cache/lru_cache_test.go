package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache(3, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	if val, ok := c.Get("a"); !ok || val != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", val, ok)
	}

	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Set("key", "value")
	if _, ok := c.Get("key"); !ok {
		t.Fatal("expected fresh entry to be present")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestLRUCacheDumpRestore(t *testing.T) {
	c := NewLRUCache(10, time.Hour)
	c.Set("a", "x")
	c.Set("b", "y")

	restored := NewLRUCache(10, time.Hour)
	restored.Restore(c.Dump())

	if val, ok := restored.Get("a"); !ok || val != "x" {
		t.Fatalf("restored Get(a) = %v, %v; want x, true", val, ok)
	}
	if restored.Len() != 2 {
		t.Fatalf("restored Len() = %d, want 2", restored.Len())
	}
}

func TestHashKeyStable(t *testing.T) {
	if HashKey("prompt") != HashKey("prompt") {
		t.Fatal("expected identical input to hash identically")
	}
	if HashKey("prompt") == HashKey("other") {
		t.Fatal("expected distinct input to hash differently")
	}
}
