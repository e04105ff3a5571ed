package momentum

import (
	"context"
	"fmt"
	"time"

	"sgbcarry/internal/pricecache"
)

// SeriesSource supplies daily close history for an instrument. The ranking
// engine does not care where history comes from; the dashboard wires in a
// feed-backed implementation, tests wire in fixtures.
type SeriesSource interface {
	Daily(ctx context.Context, symbol string, days int) ([]float64, error)
}

// CachedSource wraps a SeriesSource with the shared TTL cache so repeated
// ranking runs within a refresh window hit upstream once per symbol.
type CachedSource struct {
	src   SeriesSource
	cache *pricecache.Cache
	ttl   time.Duration
}

func NewCachedSource(src SeriesSource, cache *pricecache.Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, cache: cache, ttl: ttl}
}

type seriesResult struct {
	closes []float64
	err    error
}

func (c *CachedSource) Daily(ctx context.Context, symbol string, days int) ([]float64, error) {
	key := pricecache.Key{Source: "history", Symbol: symbol, Params: fmt.Sprintf("daily/%d", days)}
	// failures are cached too, at the same TTL, same as the quote chain
	res := pricecache.GetOrFetch(c.cache, key, c.ttl, func() seriesResult {
		closes, err := c.src.Daily(ctx, symbol, days)
		return seriesResult{closes: closes, err: err}
	})
	return res.closes, res.err
}

// Collect fetches series for a symbol list, skipping symbols whose history is
// unavailable. days should cover the longest configured window plus one.
func Collect(ctx context.Context, src SeriesSource, symbols []string, days int) []Series {
	out := make([]Series, 0, len(symbols))
	for _, sym := range symbols {
		closes, err := src.Daily(ctx, sym, days)
		if err != nil || len(closes) == 0 {
			continue
		}
		out = append(out, Series{Symbol: sym, Closes: closes})
	}
	return out
}
