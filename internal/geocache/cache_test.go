package geocache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string](10, time.Minute)

	c.Set("a", "alpha")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	c := New(10, time.Minute, WithClock[string](func() time.Time { return now }))

	c.Set("a", "alpha")

	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_ShorterFailureTTL(t *testing.T) {
	now := time.Now()
	c := New(10, 10*time.Minute, WithClock[string](func() time.Time { return now }))

	c.Set("ok", "success")
	c.SetWithTTL("bad", "failure", 2*time.Minute)

	now = now.Add(3 * time.Minute)
	_, ok := c.Get("bad")
	assert.False(t, ok, "failure entry should expire after its short TTL")
	_, ok = c.Get("ok")
	assert.True(t, ok, "success entry should still be live")
}

func TestCache_CapacityEvictsOldestInserted(t *testing.T) {
	c := New[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touching k0 must not protect it: eviction is insertion-order, not LRU.
	_, ok := c.Get("k0")
	require.True(t, ok)

	c.Set("k3", 3)

	_, ok = c.Get("k0")
	assert.False(t, ok, "oldest-inserted entry should be evicted")
	for i := 1; i <= 3; i++ {
		_, ok = c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_OverwriteKeepsInsertionPosition(t *testing.T) {
	c := New[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // overwrite, still the oldest insertion

	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}
