package feed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refStub serves canned reference quotes keyed by provider code.
type refStub struct {
	quotes map[string]Quote
	calls  int
}

func (r *refStub) Name() string { return "global-ref" }

func (r *refStub) Fetch(ctx context.Context, code string) Quote {
	r.calls++
	q, ok := r.quotes[code]
	if !ok {
		return Quote{Source: "global-ref", Err: "no such code"}
	}
	return q
}

func refQuote(last string) Quote {
	return Quote{Last: decimal.RequireFromString(last), Source: "global-ref", OK: true}
}

func newProxy(ref Adapter) *ProxySource {
	return NewProxySource(ProxyConfig{
		SpotCode:    "XAU",
		FxCode:      "USDINR",
		GramsPerLot: decimal.NewFromInt(8),
		Premium:     decimal.RequireFromString("1.06"),
	}, ref)
}

func TestProxyEstimate(t *testing.T) {
	ref := &refStub{quotes: map[string]Quote{
		"XAU":    refQuote("2345.60"),
		"USDINR": refQuote("83.25"),
	}}
	q := newProxy(ref).Fetch(context.Background(), "")
	require.True(t, q.OK)
	assert.Equal(t, ProxyName, q.Source)

	// 2345.60 / 31.1035 * 83.25 * 8 * 1.06, rounded to the paisa
	want := decimal.RequireFromString("2345.60").
		Div(decimal.RequireFromString("31.1035")).
		Mul(decimal.RequireFromString("83.25")).
		Mul(decimal.NewFromInt(8)).
		Mul(decimal.RequireFromString("1.06")).
		Round(2)
	assert.True(t, q.Last.Equal(want), "estimate = %s, want %s", q.Last, want)
}

func TestProxyFailsWhenReferenceLegDown(t *testing.T) {
	t.Run("missing spot", func(t *testing.T) {
		ref := &refStub{quotes: map[string]Quote{"USDINR": refQuote("83.25")}}
		q := newProxy(ref).Fetch(context.Background(), "")
		assert.False(t, q.OK)
	})
	t.Run("missing fx", func(t *testing.T) {
		ref := &refStub{quotes: map[string]Quote{"XAU": refQuote("2345.60")}}
		q := newProxy(ref).Fetch(context.Background(), "")
		assert.False(t, q.OK)
	})
	t.Run("spot down skips the fx call", func(t *testing.T) {
		ref := &refStub{}
		newProxy(ref).Fetch(context.Background(), "")
		assert.Equal(t, 1, ref.calls)
	})
}
