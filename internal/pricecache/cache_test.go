package pricecache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetchMemoizes(t *testing.T) {
	c := New()
	key := Key{Source: "mcfeed", Symbol: "SGBAUG28"}

	calls := 0
	fetch := func() string {
		calls++
		return "7412"
	}

	assert.Equal(t, "7412", GetOrFetch(c, key, time.Minute, fetch))
	assert.Equal(t, "7412", GetOrFetch(c, key, time.Minute, fetch))
	assert.Equal(t, 1, calls, "second call within TTL must be served from cache")
	assert.Equal(t, 1, c.Len())
}

func TestDistinctKeysDoNotCollide(t *testing.T) {
	c := New()
	a := GetOrFetch(c, Key{Source: "mcfeed", Symbol: "A"}, time.Minute, func() string { return "1" })
	b := GetOrFetch(c, Key{Source: "mcfeed", Symbol: "B"}, time.Minute, func() string { return "2" })
	p := GetOrFetch(c, Key{Source: "mcfeed", Symbol: "A", Params: "daily/63"}, time.Minute, func() string { return "3" })
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
	assert.Equal(t, "3", p)
	assert.Equal(t, 3, c.Len())
}

func TestTTLExpiry(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	key := Key{Source: "gg-page", Symbol: "GOLDGUINEA"}
	calls := 0
	fetch := func() int { calls++; return calls }

	require.Equal(t, 1, GetOrFetch(c, key, 15*time.Minute, fetch))

	now = now.Add(14 * time.Minute)
	assert.Equal(t, 1, GetOrFetch(c, key, 15*time.Minute, fetch), "within TTL")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, GetOrFetch(c, key, 15*time.Minute, fetch), "expired entry refetches")
}

func TestNegativeResultsCachedAtSameTTL(t *testing.T) {
	type result struct{ ok bool }
	c := New()
	key := Key{Source: "mcfeed", Symbol: "SGBAUG28"}

	calls := 0
	failed := GetOrFetch(c, key, time.Minute, func() result { calls++; return result{ok: false} })
	assert.False(t, failed.ok)

	// the failure is served from cache, bounding the retry storm
	again := GetOrFetch(c, key, time.Minute, func() result { calls++; return result{ok: true} })
	assert.False(t, again.ok)
	assert.Equal(t, 1, calls)
}

func TestForget(t *testing.T) {
	c := New()
	key := Key{Source: "mcfeed", Symbol: "X"}
	calls := 0
	fetch := func() int { calls++; return calls }

	GetOrFetch(c, key, time.Hour, fetch)
	c.Forget(key)
	assert.Equal(t, 2, GetOrFetch(c, key, time.Hour, fetch))
}

func TestConcurrentFetchesShareOneCall(t *testing.T) {
	c := New()
	key := Key{Source: "slowfeed", Symbol: "X"}

	var calls atomic.Int32
	fetch := func() int {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return 42
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, 42, GetOrFetch(c, key, time.Minute, fetch))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load(), "concurrent misses for one key must share a single fetch")
}
