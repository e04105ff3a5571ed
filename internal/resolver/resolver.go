// Package resolver turns several flaky upstream sources into one answer: the
// best available price for an instrument, tagged with where it came from.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sgbcarry/internal/feed"
	"sgbcarry/internal/observ"
	"sgbcarry/internal/pricecache"
	"sgbcarry/internal/symbols"
)

// AssetClass selects which fallback chain applies to an instrument.
type AssetClass string

const (
	ClassBond    AssetClass = "bond"    // exchange-traded SGB tranche
	ClassFutures AssetClass = "futures" // commodity contract with lot size
)

// Side states the caller's intent so field selection never guesses.
type Side string

const (
	// SideSellLong exits a long holding: proceeds, prefer the bid.
	SideSellLong Side = "sell-long"
	// SideBuyCover closes a short: cost to re-buy, prefer the offer.
	SideBuyCover Side = "buy-cover"
)

// Provenance tags for resolutions that do not come straight off a feed field.
const (
	ProvenanceManual = "manual-override"
	ProvenanceProxy  = "proxy-estimate"
	ProvenanceNone   = "none"
)

type Instrument struct {
	ExchangeSymbol string
	Class          AssetClass
}

// ResolvedPrice is the resolver's only output shape. Failure has exactly one
// representation: Value zero with Provenance "none". LastGood, when set on
// that sentinel, is display metadata for "stale as of T" rendering; it never
// masquerades as a live price.
type ResolvedPrice struct {
	Value      decimal.Decimal
	Provenance string
	ResolvedAt time.Time
	LastGood   *StalePrice
}

// StalePrice is the most recent successful resolution, with its age visible.
type StalePrice struct {
	Value  decimal.Decimal
	Source string
	AsOf   time.Time
}

func (r ResolvedPrice) Unavailable() bool {
	return r.Provenance == ProvenanceNone
}

type tier struct {
	adapter feed.Adapter
	ttl     time.Duration
}

// Resolver orders candidate sources per asset class and walks them through
// the cache until one produces a usable quote.
type Resolver struct {
	mapper *symbols.Mapper
	cache  *pricecache.Cache
	tiers  map[AssetClass][]tier

	mu       sync.Mutex
	lastGood map[string]StalePrice
}

func New(mapper *symbols.Mapper, cache *pricecache.Cache) *Resolver {
	return &Resolver{
		mapper:   mapper,
		cache:    cache,
		tiers:    map[AssetClass][]tier{},
		lastGood: map[string]StalePrice{},
	}
}

// AddTier appends a source to the chain for class. Registration order is
// priority order: structured feed first, scraped page second, computed proxy
// last.
func (r *Resolver) AddTier(class AssetClass, adapter feed.Adapter, ttl time.Duration) {
	r.tiers[class] = append(r.tiers[class], tier{adapter: adapter, ttl: ttl})
}

// Resolve implements the fallback chain. Precedence: manual override (any
// positive value) beats the live chain, which beats the unavailable sentinel.
func (r *Resolver) Resolve(ctx context.Context, inst Instrument, side Side, override decimal.Decimal) ResolvedPrice {
	now := time.Now()

	if override.IsPositive() {
		observ.IncCounter("resolve_total", map[string]string{"provenance": ProvenanceManual})
		return ResolvedPrice{Value: override, Provenance: ProvenanceManual, ResolvedAt: now}
	}

	// Unknown instruments short-circuit: no adapter ever gets called for a
	// symbol the mapper has never heard of.
	if !r.mapper.Known(inst.ExchangeSymbol) {
		observ.IncCounter("resolve_total", map[string]string{"provenance": ProvenanceNone})
		observ.Log("resolve_unmapped", map[string]any{"symbol": inst.ExchangeSymbol})
		return r.sentinel(inst, now)
	}

	for _, t := range r.tiers[inst.Class] {
		source := t.adapter.Name()

		code := ""
		if source != feed.ProxyName {
			var ok bool
			code, ok = r.mapper.Lookup(inst.ExchangeSymbol, source)
			if !ok {
				observ.IncCounter("resolve_tier_skipped_total", map[string]string{"source": source})
				continue
			}
		}

		key := pricecache.Key{Source: source, Symbol: inst.ExchangeSymbol}
		quote := pricecache.GetOrFetch(r.cache, key, t.ttl, func() feed.Quote {
			return t.adapter.Fetch(ctx, code)
		})
		if !quote.OK {
			continue
		}

		value, provenance, ok := selectField(quote, side)
		if !ok {
			// quote had prices, just not ones this side can use
			continue
		}

		r.recordLastGood(inst.ExchangeSymbol, value, source, now)
		observ.IncCounter("resolve_total", map[string]string{"provenance": provenance})
		observ.Log("resolve_ok", map[string]any{
			"symbol":     inst.ExchangeSymbol,
			"side":       string(side),
			"provenance": provenance,
			"value":      value.String(),
		})
		return ResolvedPrice{Value: value, Provenance: provenance, ResolvedAt: now}
	}

	observ.IncCounter("resolve_total", map[string]string{"provenance": ProvenanceNone})
	observ.Log("resolve_exhausted", map[string]any{
		"symbol": inst.ExchangeSymbol,
		"side":   string(side),
	})
	return r.sentinel(inst, now)
}

// selectField picks the quote field matching the caller's intent, falling
// back to the last-traded price when the preferred side is zero or absent
// (market-closed convention: a zero offer means no sellers, not a free lot).
func selectField(q feed.Quote, side Side) (decimal.Decimal, string, bool) {
	if q.Source == feed.ProxyName {
		// estimates carry a single derived number; the side distinction is
		// meaningless and the provenance must say "estimate"
		if q.Last.IsPositive() {
			return q.Last, ProvenanceProxy, true
		}
		return decimal.Zero, "", false
	}

	preferred := q.Bid
	field := "bid"
	if side == SideBuyCover {
		preferred = q.Offer
		field = "offer"
	}
	if preferred.IsPositive() {
		return preferred, q.Source + "/" + field, true
	}
	if q.Last.IsPositive() {
		return q.Last, q.Source + "/last-traded-fallback", true
	}
	return decimal.Zero, "", false
}

func (r *Resolver) sentinel(inst Instrument, now time.Time) ResolvedPrice {
	out := ResolvedPrice{Value: decimal.Zero, Provenance: ProvenanceNone, ResolvedAt: now}
	r.mu.Lock()
	if lg, ok := r.lastGood[inst.ExchangeSymbol]; ok {
		cp := lg
		out.LastGood = &cp
	}
	r.mu.Unlock()
	return out
}

func (r *Resolver) recordLastGood(symbol string, value decimal.Decimal, source string, at time.Time) {
	r.mu.Lock()
	r.lastGood[symbol] = StalePrice{Value: value, Source: source, AsOf: at}
	r.mu.Unlock()
}
