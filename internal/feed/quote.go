// Package feed holds the upstream price-source adapters. Every adapter
// normalizes its payload into a Quote and collapses all failure modes
// (transport, parse, data quality) into OK=false: callers never learn why a
// source failed, only that it did, which keeps the fallback chain above it
// source-agnostic.
package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"sgbcarry/internal/observ"
)

// Adapter fetches one instrument's quote from one upstream source. code is
// the provider-specific identifier from the symbol mapper, not the exchange
// symbol. Implementations never return an error: failures come back as
// Quote{OK: false}.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, code string) Quote
}

// Quote is the normalized result of one feed query.
//
// Invariants: OK implies at least one of Bid/Offer/Last is positive; all
// price fields are non-negative; !OK implies all price fields are zero.
type Quote struct {
	Bid       decimal.Decimal `json:"bid"`
	Offer     decimal.Decimal `json:"offer"`
	Last      decimal.Decimal `json:"last"`
	FetchedAt time.Time       `json:"fetched_at"`
	Source    string          `json:"source"`
	OK        bool            `json:"ok"`

	// Err is a short diagnostic for logs only. Nothing branches on it.
	Err string `json:"err,omitempty"`
}

// HasPrice reports whether any usable price field is present.
func (q Quote) HasPrice() bool {
	return q.Bid.IsPositive() || q.Offer.IsPositive() || q.Last.IsPositive()
}

func goodQuote(source string, bid, offer, last decimal.Decimal) Quote {
	q := Quote{
		Bid:       clampNonNegative(bid),
		Offer:     clampNonNegative(offer),
		Last:      clampNonNegative(last),
		FetchedAt: time.Now(),
		Source:    source,
	}
	if !q.HasPrice() {
		return failedQuote(source, "no usable price fields")
	}
	q.OK = true
	observ.RecordSourceSuccess(source)
	return q
}

func failedQuote(source, reason string) Quote {
	observ.RecordSourceError(source, reason)
	observ.IncCounter("feed_fetch_failures_total", map[string]string{"source": source})
	observ.Log("feed_fetch_failed", map[string]any{
		"source": source,
		"reason": reason,
	})
	return Quote{FetchedAt: time.Now(), Source: source, Err: reason}
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
