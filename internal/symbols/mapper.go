// Package symbols translates exchange-traded identifiers to the codes each
// upstream source uses for the same instrument. A miss is reported as ok=false
// so the resolver can skip that source instead of aborting the resolution.
package symbols

import "strings"

// Mapper is a static lookup table: source name -> exchange symbol -> code.
type Mapper struct {
	table map[string]map[string]string
}

// builtin covers the SGB tranches and Gold Guinea contracts the dashboard
// tracks. Moneycontrol assigns opaque scrip ids per NSE series; the MCX feed
// keys contracts by expiry code.
var builtin = map[string]map[string]string{
	"mcfeed": {
		"SGBAUG28":   "SGA09",
		"SGBDEC2512": "SGD14",
		"SGBFEB32IV": "SGF19",
		"SGBJUN31I":  "SGJ17",
		"SGBSEP28VI": "SGS11",
	},
	"mcx-feed": {
		"GOLDGUINEA": "GGN",
	},
	"gg-page": {
		"GOLDGUINEA": "goldguinea",
	},
	"global-ref": {
		"XAUUSD": "XAU",
		"USDINR": "USDINR",
	},
}

// New returns a mapper over the built-in table merged with overrides
// (typically from config), overrides winning on conflict.
func New(overrides map[string]map[string]string) *Mapper {
	table := make(map[string]map[string]string, len(builtin))
	for source, m := range builtin {
		cp := make(map[string]string, len(m))
		for sym, code := range m {
			cp[sym] = code
		}
		table[source] = cp
	}
	for source, m := range overrides {
		dst, ok := table[source]
		if !ok {
			dst = map[string]string{}
			table[source] = dst
		}
		for sym, code := range m {
			dst[normalize(sym)] = code
		}
	}
	return &Mapper{table: table}
}

// Lookup returns the provider code for an exchange symbol on a source.
func (m *Mapper) Lookup(exchangeSymbol, source string) (string, bool) {
	bySymbol, ok := m.table[source]
	if !ok {
		return "", false
	}
	code, ok := bySymbol[normalize(exchangeSymbol)]
	return code, ok
}

// Known reports whether any source can resolve the symbol at all.
func (m *Mapper) Known(exchangeSymbol string) bool {
	sym := normalize(exchangeSymbol)
	for _, bySymbol := range m.table {
		if _, ok := bySymbol[sym]; ok {
			return true
		}
	}
	return false
}

func normalize(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}
