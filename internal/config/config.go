package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedSource configures one structured JSON pricefeed endpoint. Field keys
// name where in the payload's data object each price lives, so new feed
// variants are configuration rather than new adapter code.
type FeedSource struct {
	Name           string `yaml:"name"`
	Class          string `yaml:"class"` // "bond" | "futures": which fallback chain the source joins
	BaseURL        string `yaml:"base_url"`
	OfferKey       string `yaml:"offer_key"`
	BidKey         string `yaml:"bid_key"`
	LastKey        string `yaml:"last_key"`
	TTLMinutes     int    `yaml:"ttl_minutes"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RatePerMinute  int    `yaml:"rate_per_minute"`
}

// ScrapeSource configures one scraped quote page.
type ScrapeSource struct {
	Name           string `yaml:"name"`
	Class          string `yaml:"class"`
	BaseURL        string `yaml:"base_url"`
	Selector       string `yaml:"selector"` // CSS class name or element id holding the price text
	TTLMinutes     int    `yaml:"ttl_minutes"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Proxy configures the computed cross-rate estimate used when no direct
// source for the futures leg responds.
type Proxy struct {
	SpotGoldSymbol string  `yaml:"spot_gold_symbol"` // USD per troy ounce reference
	FxSymbol       string  `yaml:"fx_symbol"`        // USDINR reference
	GramsPerLot    float64 `yaml:"grams_per_lot"`    // Gold Guinea = 8 g
	Premium        float64 `yaml:"premium"`          // local premium over landed cost
	TTLMinutes     int     `yaml:"ttl_minutes"`
}

// Momentum configures the ranking engine.
type Momentum struct {
	// HistoryBaseURL serves daily close history per symbol; see feed.HistorySource.
	HistoryBaseURL    string  `yaml:"history_base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	WindowsDays       []int   `yaml:"windows_days"`
	TopK              int     `yaml:"top_k"`
	VolLookbackDays   int     `yaml:"vol_lookback_days"`
	AnnualizationDays int     `yaml:"annualization_days"`
	VolFloor          float64 `yaml:"vol_floor"`
	HistoryTTLMinutes int     `yaml:"history_ttl_minutes"`
}

type Root struct {
	Feeds   []FeedSource   `yaml:"feeds"`
	Scrapes []ScrapeSource `yaml:"scrapes"`
	// Reference is the global spot/FX feed backing the proxy estimate. It
	// joins no fallback chain; only the proxy reads it.
	Reference FeedSource `yaml:"reference"`
	Proxy     Proxy      `yaml:"proxy"`
	Momentum  Momentum   `yaml:"momentum"`

	// source name -> exchange symbol -> provider code, merged over the
	// built-in table in internal/symbols.
	SymbolOverrides map[string]map[string]string `yaml:"symbol_overrides"`
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Default returns the built-in configuration used when no file is supplied.
func Default() Root {
	c := Root{
		Feeds: []FeedSource{
			{
				Name:     "mcfeed",
				Class:    "bond",
				BaseURL:  "https://priceapi.moneycontrol.com/pricefeed/nse/equitycash",
				OfferKey: "OPrice",
				BidKey:   "BPrice",
				LastKey:  "pricecurrent",
			},
			{
				Name:     "mcx-feed",
				Class:    "futures",
				BaseURL:  "https://priceapi.moneycontrol.com/pricefeed/mcx/commodityfuture",
				OfferKey: "OPrice",
				BidKey:   "BPrice",
				LastKey:  "pricecurrent",
				// commodity feed lags the equity one, poll it less
				TTLMinutes: 10,
			},
		},
		Scrapes: []ScrapeSource{
			{
				Name:     "gg-page",
				Class:    "futures",
				BaseURL:  "https://www.moneycontrol.com/commodity",
				Selector: "span_price_wrap",
			},
		},
		Proxy: Proxy{
			SpotGoldSymbol: "XAUUSD",
			FxSymbol:       "USDINR",
		},
	}
	c.applyDefaults()
	return c
}

func (c *Root) applyDefaults() {
	for i := range c.Feeds {
		f := &c.Feeds[i]
		if f.Class == "" {
			f.Class = "bond"
		}
		if f.TTLMinutes == 0 {
			f.TTLMinutes = 5
		}
		if f.TimeoutSeconds == 0 {
			f.TimeoutSeconds = 5
		}
		if f.RatePerMinute == 0 {
			f.RatePerMinute = 30
		}
		if f.LastKey == "" {
			f.LastKey = "pricecurrent"
		}
	}
	for i := range c.Scrapes {
		s := &c.Scrapes[i]
		if s.Class == "" {
			s.Class = "futures"
		}
		if s.TTLMinutes == 0 {
			s.TTLMinutes = 15
		}
		if s.TimeoutSeconds == 0 {
			s.TimeoutSeconds = 5
		}
	}
	if c.Reference.Name == "" {
		c.Reference.Name = "global-ref"
	}
	if c.Reference.BaseURL == "" {
		c.Reference.BaseURL = "https://priceapi.moneycontrol.com/pricefeed/global/spot"
	}
	if c.Reference.LastKey == "" {
		c.Reference.LastKey = "pricecurrent"
	}
	if c.Reference.TTLMinutes == 0 {
		c.Reference.TTLMinutes = 60
	}
	if c.Reference.TimeoutSeconds == 0 {
		c.Reference.TimeoutSeconds = 5
	}
	if c.Reference.RatePerMinute == 0 {
		c.Reference.RatePerMinute = 10
	}
	if c.Proxy.GramsPerLot == 0 {
		c.Proxy.GramsPerLot = 8 // Gold Guinea contract size
	}
	if c.Proxy.Premium == 0 {
		c.Proxy.Premium = 1.06 // import duty plus local demand premium
	}
	if c.Proxy.TTLMinutes == 0 {
		c.Proxy.TTLMinutes = 60
	}
	if c.Momentum.HistoryBaseURL == "" {
		c.Momentum.HistoryBaseURL = "https://priceapi.moneycontrol.com/techCharts/history"
	}
	if c.Momentum.TimeoutSeconds == 0 {
		c.Momentum.TimeoutSeconds = 5
	}
	if len(c.Momentum.WindowsDays) == 0 {
		c.Momentum.WindowsDays = []int{63, 126, 189, 252}
	}
	if c.Momentum.TopK == 0 {
		c.Momentum.TopK = 5
	}
	if c.Momentum.VolLookbackDays == 0 {
		c.Momentum.VolLookbackDays = 63
	}
	if c.Momentum.AnnualizationDays == 0 {
		c.Momentum.AnnualizationDays = 252
	}
	if c.Momentum.VolFloor == 0 {
		c.Momentum.VolFloor = 1e-6
	}
	if c.Momentum.HistoryTTLMinutes == 0 {
		c.Momentum.HistoryTTLMinutes = 60
	}
}

func (c *Root) validate() error {
	seen := map[string]bool{}
	for _, f := range c.Feeds {
		if f.Name == "" || f.BaseURL == "" {
			return fmt.Errorf("feed %q: name and base_url are required", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate source name %q", f.Name)
		}
		seen[f.Name] = true
		if f.Class != "bond" && f.Class != "futures" {
			return fmt.Errorf("feed %q: class %q not bond or futures", f.Name, f.Class)
		}
		if f.TTLMinutes < 1 || f.TTLMinutes > 60 {
			return fmt.Errorf("feed %q: ttl_minutes %d outside 1..60", f.Name, f.TTLMinutes)
		}
	}
	for _, s := range c.Scrapes {
		if s.Name == "" || s.BaseURL == "" || s.Selector == "" {
			return fmt.Errorf("scrape %q: name, base_url and selector are required", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true
		if s.TTLMinutes < 1 || s.TTLMinutes > 60 {
			return fmt.Errorf("scrape %q: ttl_minutes %d outside 1..60", s.Name, s.TTLMinutes)
		}
	}
	if c.Proxy.Premium < 1.0 || c.Proxy.Premium > 1.5 {
		return fmt.Errorf("proxy premium %.3f implausible, want 1.0..1.5", c.Proxy.Premium)
	}
	return nil
}
