package feed

import (
	"context"

	"github.com/shopspring/decimal"

	"sgbcarry/internal/observ"
)

// gramsPerTroyOunce converts the international spot quote (USD per troy
// ounce) to grams.
var gramsPerTroyOunce = decimal.NewFromFloat(31.1035)

// ProxyName is the fixed source identifier for the computed estimate; callers
// use it to distinguish real quotes from derived ones.
const ProxyName = "proxy"

// ProxyConfig parameterizes the cross-rate formula.
type ProxyConfig struct {
	SpotCode    string // reference feed code for spot gold, USD/ozt
	FxCode      string // reference feed code for USDINR
	GramsPerLot decimal.Decimal
	Premium     decimal.Decimal // local premium multiplier over landed cost
}

// ProxySource estimates the futures-leg price with no direct call to the
// target instrument: spot gold converted to INR per gram, scaled to the
// contract's gram weight and marked up by the configured premium. It is the
// terminal fallback tier, the only source that can always produce a number
// as long as the global references respond.
type ProxySource struct {
	cfg ProxyConfig
	ref Adapter // global reference feed (spot gold, FX)
}

func NewProxySource(cfg ProxyConfig, ref Adapter) *ProxySource {
	return &ProxySource{cfg: cfg, ref: ref}
}

func (p *ProxySource) Name() string { return ProxyName }

// Fetch ignores code: the formula is fixed per configuration, not per
// provider identifier.
func (p *ProxySource) Fetch(ctx context.Context, code string) Quote {
	spot := p.ref.Fetch(ctx, p.cfg.SpotCode)
	if !spot.OK || !spot.Last.IsPositive() {
		return failedQuote(ProxyName, "spot gold reference unavailable")
	}
	fx := p.ref.Fetch(ctx, p.cfg.FxCode)
	if !fx.OK || !fx.Last.IsPositive() {
		return failedQuote(ProxyName, "fx reference unavailable")
	}

	perGramINR := spot.Last.Div(gramsPerTroyOunce).Mul(fx.Last)
	estimate := perGramINR.Mul(p.cfg.GramsPerLot).Mul(p.cfg.Premium).Round(2)

	observ.Log("proxy_estimate_computed", map[string]any{
		"spot_usd_ozt": spot.Last.String(),
		"usdinr":       fx.Last.String(),
		"estimate_inr": estimate.String(),
	})
	return goodQuote(ProxyName, decimal.Zero, decimal.Zero, estimate)
}
