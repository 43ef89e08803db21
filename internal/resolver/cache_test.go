package resolver

import (
	"testing"
	"time"

	"groovecall/internal/core"
)

func TestQueryCacheHitMiss(t *testing.T) {
	c := newQueryCache(10, time.Minute)

	if got := c.Get("missing"); got != nil {
		t.Errorf("Get() on empty cache = %v, expected nil", got)
	}

	track := &core.ResolvedTrack{Title: "Test Song", SourceID: "abc123"}
	c.Put("test song", track)

	got := c.Get("test song")
	if got == nil {
		t.Fatal("Get() after Put should hit")
	}
	if got.SourceID != "abc123" {
		t.Errorf("Get() SourceID = %q, expected %q", got.SourceID, "abc123")
	}
}

func TestQueryCacheExpiry(t *testing.T) {
	c := newQueryCache(10, 10*time.Millisecond)

	c.Put("test", &core.ResolvedTrack{Title: "Test"})
	time.Sleep(25 * time.Millisecond)

	if got := c.Get("test"); got != nil {
		t.Errorf("Get() after TTL = %v, expected nil", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, expected expired entry dropped on read", c.Len())
	}
}

func TestQueryCacheWholesaleClear(t *testing.T) {
	c := newQueryCache(3, time.Minute)

	c.Put("a", &core.ResolvedTrack{Title: "A"})
	c.Put("b", &core.ResolvedTrack{Title: "B"})
	c.Put("c", &core.ResolvedTrack{Title: "C"})

	// The insert that would exceed capacity clears everything first.
	c.Put("d", &core.ResolvedTrack{Title: "D"})

	if c.Len() != 1 {
		t.Errorf("Len() after clearing insert = %d, expected 1", c.Len())
	}
	if got := c.Get("a"); got != nil {
		t.Error("pre-clear entry survived")
	}
	if got := c.Get("d"); got == nil {
		t.Error("post-clear entry missing")
	}
}

func TestQueryCacheOverwrite(t *testing.T) {
	c := newQueryCache(10, time.Minute)

	c.Put("key", &core.ResolvedTrack{SourceID: "old"})
	c.Put("key", &core.ResolvedTrack{SourceID: "new"})

	if got := c.Get("key"); got == nil || got.SourceID != "new" {
		t.Errorf("Get() after overwrite = %v, expected new entry", got)
	}
}
