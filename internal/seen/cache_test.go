// ABOUTME: Tests for the verified-bridge cache
// ABOUTME: Covers TTL expiry, capacity eviction, and resets

package seen

import (
	"fmt"
	"testing"
	"time"
)

func TestCheckAndMark(t *testing.T) {
	c := New(time.Minute, 10)

	if c.Check("bridge-1") {
		t.Error("unmarked id reported as seen")
	}

	c.Mark("bridge-1")
	if !c.Check("bridge-1") {
		t.Error("marked id not reported as seen")
	}
	if c.Check("bridge-2") {
		t.Error("different id reported as seen")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(10*time.Millisecond, 10)

	c.Mark("bridge-1")
	if !c.Check("bridge-1") {
		t.Fatal("fresh entry not seen")
	}

	time.Sleep(20 * time.Millisecond)
	if c.Check("bridge-1") {
		t.Error("expired entry still reported as seen")
	}
}

func TestCapacityEviction(t *testing.T) {
	c := New(time.Minute, 3)

	for i := 0; i < 4; i++ {
		c.Mark(fmt.Sprintf("bridge-%d", i))
	}

	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
	// Oldest entry was evicted
	if c.Check("bridge-0") {
		t.Error("oldest entry should have been evicted")
	}
	if !c.Check("bridge-3") {
		t.Error("newest entry missing")
	}
}

func TestMarkRefreshesOrder(t *testing.T) {
	c := New(time.Minute, 2)

	c.Mark("a")
	c.Mark("b")
	c.Mark("a") // refresh: "b" is now oldest
	c.Mark("c")

	if c.Check("b") {
		t.Error("expected b to be evicted")
	}
	if !c.Check("a") || !c.Check("c") {
		t.Error("expected a and c to remain")
	}
}

func TestReset(t *testing.T) {
	c := New(time.Minute, 10)
	c.Mark("bridge-1")
	c.Reset()

	if c.Len() != 0 || c.Check("bridge-1") {
		t.Error("reset did not clear the cache")
	}
}
