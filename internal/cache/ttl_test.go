package cache

import (
	"testing"
	"time"
)

func TestGetAfterSet(t *testing.T) {
	c := New(time.Minute)
	c.Set("appointments:b1:x:y", []string{"a"})

	v, ok := c.Get("appointments:b1:x:y")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got := v.([]string); len(got) != 1 || got[0] != "a" {
		t.Fatalf("value = %v", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 42)

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry expired early")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry readable at expiry instant")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, len = %d", c.Len())
	}
}

func TestSetWithTTLOverride(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.SetWithTTL("short", 1, time.Second)
	c.Set("long", 2)

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("short"); ok {
		t.Fatalf("override TTL not honored")
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatalf("default TTL entry should survive")
	}
}

func TestClearByPrefix_BeforeTTL(t *testing.T) {
	c := New(time.Hour)
	c.Set("appointments:b1:all", 1)
	c.Set("appointments:b1:status:pending", 2)
	c.Set("appointments:b2:all", 3)
	c.Set("capacity:b1:2025-06-01", 4)

	c.ClearByPrefix("appointments:b1")

	if _, ok := c.Get("appointments:b1:all"); ok {
		t.Fatalf("prefix entry survived invalidation")
	}
	if _, ok := c.Get("appointments:b1:status:pending"); ok {
		t.Fatalf("prefix entry survived invalidation")
	}
	if _, ok := c.Get("appointments:b2:all"); !ok {
		t.Fatalf("other business entry was cleared")
	}
	if _, ok := c.Get("capacity:b1:2025-06-01"); !ok {
		t.Fatalf("other prefix was cleared")
	}
}

func TestClear(t *testing.T) {
	c := New(time.Hour)
	c.Set("k", 1)
	c.Clear("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("cleared entry still readable")
	}
	// clearing a missing key is a no-op
	c.Clear("k")
}
