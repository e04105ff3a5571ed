// Package pnl is pure position arithmetic. It deliberately refuses to answer
// when inputs are missing: a book with no usable price reports "no result",
// never a misleading zero.
package pnl

import "github.com/shopspring/decimal"

type Side string

const (
	Long  Side = "long"  // bond-like holding
	Short Side = "short" // futures position
)

// Position is caller-supplied state; the core never persists it.
type Position struct {
	Side  Side
	Units int64 // bond units for a long, lot count for a short
	// Entry is the cost basis of a long or the entry price of a short.
	Entry decimal.Decimal
}

type Result struct {
	PnL decimal.Decimal
	// Valuation is sale proceeds for a long, buy-back cost for a short.
	Valuation decimal.Decimal
}

// Compute returns the position's P&L at price. ok is false when units, entry
// or price are non-positive: missing data must not render as a flat zero.
func Compute(p Position, price decimal.Decimal) (Result, bool) {
	if p.Units <= 0 || !p.Entry.IsPositive() || !price.IsPositive() {
		return Result{}, false
	}
	units := decimal.NewFromInt(p.Units)

	var pnl decimal.Decimal
	switch p.Side {
	case Long:
		pnl = price.Sub(p.Entry).Mul(units)
	case Short:
		pnl = p.Entry.Sub(price).Mul(units)
	default:
		return Result{}, false
	}
	return Result{PnL: pnl, Valuation: price.Mul(units)}, true
}

// Leg pairs a position with its resolved price for book-level aggregation.
type Leg struct {
	Position Position
	Price    decimal.Decimal
}

// Book sums leg results. ok only when every leg computed: a combined number
// over partial data would be worse than no number.
func Book(legs []Leg) (Result, bool) {
	var total Result
	for _, l := range legs {
		r, ok := Compute(l.Position, l.Price)
		if !ok {
			return Result{}, false
		}
		total.PnL = total.PnL.Add(r.PnL)
		total.Valuation = total.Valuation.Add(r.Valuation)
	}
	return total, true
}

// CarrySpread is the gap between the bond leg's liquidation value and the
// futures leg's buy-back cost, the number the whole dashboard exists to watch.
func CarrySpread(bond, futures Result) decimal.Decimal {
	return bond.Valuation.Sub(futures.Valuation)
}
