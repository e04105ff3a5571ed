// Package momentum ranks instruments by trailing returns over several
// lookback windows and sizes a top-K basket by inverse volatility. It runs on
// daily close series and is independent of the live price-resolution chain.
package momentum

import (
	"math"
	"sort"
)

type Config struct {
	WindowsDays []int // trading-day lookbacks, e.g. 63/126/189/252
	// Weights are per-window composite weights; equal weighting when empty.
	Weights           []float64
	TopK              int
	VolLookbackDays   int
	AnnualizationDays int
	// VolFloor guards the inverse-volatility weight of a flat series; a zero
	// stdev would otherwise produce an infinite weight.
	VolFloor float64
}

// Series is a daily close history, oldest first.
type Series struct {
	Symbol string
	Closes []float64
}

type Score struct {
	Symbol    string
	Returns   map[int]float64 // window days -> trailing return
	Composite float64
}

// WindowReturn computes the trailing return over the final window days of a
// close series. ok is false when the series is too short or the reference
// close is non-positive.
func WindowReturn(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window+1 {
		return 0, false
	}
	ref := closes[len(closes)-1-window]
	if ref <= 0 {
		return 0, false
	}
	return closes[len(closes)-1]/ref - 1, true
}

// Rank scores every series and orders them descending by composite. A series
// contributes only the windows it is long enough for; one with no computable
// window is dropped rather than ranked at zero.
func Rank(series []Series, cfg Config) []Score {
	scores := make([]Score, 0, len(series))
	for _, s := range series {
		returns := map[int]float64{}
		var composite, weightSum float64
		for i, w := range cfg.WindowsDays {
			r, ok := WindowReturn(s.Closes, w)
			if !ok {
				continue
			}
			returns[w] = r
			weight := 1.0
			if i < len(cfg.Weights) {
				weight = cfg.Weights[i]
			}
			composite += r * weight
			weightSum += weight
		}
		if weightSum == 0 {
			continue
		}
		scores = append(scores, Score{
			Symbol:    s.Symbol,
			Returns:   returns,
			Composite: composite / weightSum,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Composite > scores[j].Composite
	})
	return scores
}

// AnnualizedVol is the stdev of trailing daily returns over lookback days,
// scaled by sqrt of the annualization factor.
func AnnualizedVol(closes []float64, lookback, annualizationDays int) (float64, bool) {
	if lookback < 2 || len(closes) < lookback+1 {
		return 0, false
	}
	tail := closes[len(closes)-1-lookback:]
	rets := make([]float64, 0, lookback)
	for i := 1; i < len(tail); i++ {
		if tail[i-1] <= 0 {
			return 0, false
		}
		rets = append(rets, tail[i]/tail[i-1]-1)
	}

	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))

	var variance float64
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)

	return math.Sqrt(variance) * math.Sqrt(float64(annualizationDays)), true
}

// InverseVolWeights derives basket weights proportional to 1/vol, summing to
// 1. Series whose volatility cannot be computed are excluded; computable ones
// are floored at cfg.VolFloor.
func InverseVolWeights(series []Series, cfg Config) map[string]float64 {
	inv := map[string]float64{}
	var total float64
	for _, s := range series {
		vol, ok := AnnualizedVol(s.Closes, cfg.VolLookbackDays, cfg.AnnualizationDays)
		if !ok {
			continue
		}
		if vol < cfg.VolFloor {
			vol = cfg.VolFloor
		}
		inv[s.Symbol] = 1 / vol
		total += 1 / vol
	}
	if total == 0 {
		return map[string]float64{}
	}
	weights := make(map[string]float64, len(inv))
	for sym, v := range inv {
		weights[sym] = v / total
	}
	return weights
}

// TopK selects the first k ranked symbols' series for weighting.
func TopK(ranked []Score, series []Series, k int) []Series {
	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}
	bySymbol := make(map[string]Series, len(series))
	for _, s := range series {
		bySymbol[s.Symbol] = s
	}
	out := make([]Series, 0, k)
	for _, sc := range ranked[:k] {
		if s, ok := bySymbol[sc.Symbol]; ok {
			out = append(out, s)
		}
	}
	return out
}
