// Command dashboard runs the SGB / Gold Guinea carry refresh cycle: resolve
// both legs through the fallback chain, compute per-leg and combined P&L, and
// emit the results as JSON events. With -serve it keeps refreshing on an
// interval and exposes /metrics and /healthz.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sgbcarry/internal/config"
	"sgbcarry/internal/feed"
	"sgbcarry/internal/momentum"
	"sgbcarry/internal/observ"
	"sgbcarry/internal/pnl"
	"sgbcarry/internal/pricecache"
	"sgbcarry/internal/resolver"
	"sgbcarry/internal/symbols"
)

// positionsFile is the user's input surface: holdings, cost basis, optional
// manual overrides (0 means not set), and the momentum watchlist.
type positionsFile struct {
	SGB struct {
		Symbol    string  `yaml:"symbol"`
		Units     int64   `yaml:"units"`
		CostBasis float64 `yaml:"cost_basis"`
		Override  float64 `yaml:"override"`
	} `yaml:"sgb"`
	Futures struct {
		Symbol   string  `yaml:"symbol"`
		Lots     int64   `yaml:"lots"`
		Entry    float64 `yaml:"entry"`
		Override float64 `yaml:"override"`
	} `yaml:"futures"`
	Watchlist []string `yaml:"watchlist"`
}

func main() {
	var (
		configPath    = flag.String("config", "", "config file (default: built-in endpoints, or DASHBOARD_CONFIG)")
		positionsPath = flag.String("positions", "positions.yaml", "positions file")
		serveAddr     = flag.String("serve", "", "listen address for continuous mode (empty = one refresh and exit)")
		interval      = flag.Duration("interval", 5*time.Minute, "refresh interval in serve mode")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		observ.Log("config_load_failed", map[string]any{"path": *configPath, "error": err.Error()})
		os.Exit(1)
	}

	pos, err := loadPositions(*positionsPath)
	if err != nil {
		observ.Log("positions_load_failed", map[string]any{"path": *positionsPath, "error": err.Error()})
		os.Exit(1)
	}

	app := build(cfg)

	if *serveAddr == "" {
		app.refresh(context.Background(), pos)
		return
	}

	http.Handle("/metrics", observ.Handler())
	http.Handle("/healthz", observ.HealthHandler())
	go func() {
		observ.Log("serving", map[string]any{"addr": *serveAddr})
		if err := http.ListenAndServe(*serveAddr, nil); err != nil {
			observ.Log("serve_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	app.refresh(context.Background(), pos)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		app.refresh(context.Background(), pos)
	}
}

func loadConfig(path string) (config.Root, error) {
	if path == "" {
		path = os.Getenv("DASHBOARD_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func loadPositions(path string) (positionsFile, error) {
	var p positionsFile
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	err = yaml.Unmarshal(b, &p)
	return p, err
}

type app struct {
	cfg      config.Root
	mapper   *symbols.Mapper
	cache    *pricecache.Cache
	resolver *resolver.Resolver
	history  momentum.SeriesSource
}

// build wires adapters into the resolver's per-class tier chains in config
// order, with the proxy estimate as the terminal futures tier.
func build(cfg config.Root) *app {
	mapper := symbols.New(cfg.SymbolOverrides)
	cache := pricecache.New()
	res := resolver.New(mapper, cache)

	for _, f := range cfg.Feeds {
		adapter := feed.NewStructuredSource(feed.StructuredConfig{
			Name:          f.Name,
			BaseURL:       f.BaseURL,
			OfferKey:      f.OfferKey,
			BidKey:        f.BidKey,
			LastKey:       f.LastKey,
			Timeout:       time.Duration(f.TimeoutSeconds) * time.Second,
			RatePerMinute: f.RatePerMinute,
		})
		res.AddTier(class(f.Class), adapter, time.Duration(f.TTLMinutes)*time.Minute)
	}
	for _, s := range cfg.Scrapes {
		adapter := feed.NewScrapedSource(feed.ScrapedConfig{
			Name:     s.Name,
			BaseURL:  s.BaseURL,
			Selector: s.Selector,
			Timeout:  time.Duration(s.TimeoutSeconds) * time.Second,
		})
		res.AddTier(class(s.Class), adapter, time.Duration(s.TTLMinutes)*time.Minute)
	}

	ref := feed.NewStructuredSource(feed.StructuredConfig{
		Name:          cfg.Reference.Name,
		BaseURL:       cfg.Reference.BaseURL,
		OfferKey:      cfg.Reference.OfferKey,
		BidKey:        cfg.Reference.BidKey,
		LastKey:       cfg.Reference.LastKey,
		Timeout:       time.Duration(cfg.Reference.TimeoutSeconds) * time.Second,
		RatePerMinute: cfg.Reference.RatePerMinute,
	})
	spotCode, spotOK := mapper.Lookup(cfg.Proxy.SpotGoldSymbol, cfg.Reference.Name)
	fxCode, fxOK := mapper.Lookup(cfg.Proxy.FxSymbol, cfg.Reference.Name)
	if spotOK && fxOK {
		proxy := feed.NewProxySource(feed.ProxyConfig{
			SpotCode:    spotCode,
			FxCode:      fxCode,
			GramsPerLot: decimal.NewFromFloat(cfg.Proxy.GramsPerLot),
			Premium:     decimal.NewFromFloat(cfg.Proxy.Premium),
		}, ref)
		res.AddTier(resolver.ClassFutures, proxy, time.Duration(cfg.Proxy.TTLMinutes)*time.Minute)
	} else {
		observ.Log("proxy_disabled", map[string]any{
			"spot_symbol": cfg.Proxy.SpotGoldSymbol,
			"fx_symbol":   cfg.Proxy.FxSymbol,
			"reason":      "reference symbols unmapped",
		})
	}

	hist := feed.NewHistorySource(feed.HistoryConfig{
		BaseURL: cfg.Momentum.HistoryBaseURL,
		Timeout: time.Duration(cfg.Momentum.TimeoutSeconds) * time.Second,
	})

	return &app{
		cfg:      cfg,
		mapper:   mapper,
		cache:    cache,
		resolver: res,
		history:  momentum.NewCachedSource(hist, cache, time.Duration(cfg.Momentum.HistoryTTLMinutes)*time.Minute),
	}
}

func class(c string) resolver.AssetClass {
	if c == "futures" {
		return resolver.ClassFutures
	}
	return resolver.ClassBond
}

// refresh runs one full cycle: both carry legs, combined P&L, and the
// watchlist ranking when one is configured.
func (a *app) refresh(ctx context.Context, pos positionsFile) {
	start := time.Now()

	sgbPrice := a.resolver.Resolve(ctx,
		resolver.Instrument{ExchangeSymbol: pos.SGB.Symbol, Class: resolver.ClassBond},
		resolver.SideSellLong, decimal.NewFromFloat(pos.SGB.Override))
	futPrice := a.resolver.Resolve(ctx,
		resolver.Instrument{ExchangeSymbol: pos.Futures.Symbol, Class: resolver.ClassFutures},
		resolver.SideBuyCover, decimal.NewFromFloat(pos.Futures.Override))

	logResolved("sgb_leg", pos.SGB.Symbol, sgbPrice)
	logResolved("futures_leg", pos.Futures.Symbol, futPrice)

	sgbRes, sgbOK := pnl.Compute(pnl.Position{
		Side:  pnl.Long,
		Units: pos.SGB.Units,
		Entry: decimal.NewFromFloat(pos.SGB.CostBasis),
	}, sgbPrice.Value)
	futRes, futOK := pnl.Compute(pnl.Position{
		Side:  pnl.Short,
		Units: pos.Futures.Lots,
		Entry: decimal.NewFromFloat(pos.Futures.Entry),
	}, futPrice.Value)

	kv := map[string]any{
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if sgbOK {
		kv["sgb_pnl"] = sgbRes.PnL.String()
		kv["sgb_valuation"] = sgbRes.Valuation.String()
	}
	if futOK {
		kv["futures_pnl"] = futRes.PnL.String()
		kv["futures_cover_cost"] = futRes.Valuation.String()
	}
	if sgbOK && futOK {
		kv["combined_pnl"] = sgbRes.PnL.Add(futRes.PnL).String()
		kv["carry_spread"] = pnl.CarrySpread(sgbRes, futRes).String()
	} else {
		kv["combined_pnl"] = "unavailable"
	}
	observ.Log("refresh_complete", kv)

	if len(pos.Watchlist) > 0 {
		a.rankWatchlist(ctx, pos.Watchlist)
	}
}

func (a *app) rankWatchlist(ctx context.Context, watchlist []string) {
	m := a.cfg.Momentum
	days := m.WindowsDays[len(m.WindowsDays)-1] + 1
	series := momentum.Collect(ctx, a.history, watchlist, days)

	mcfg := momentum.Config{
		WindowsDays:       m.WindowsDays,
		TopK:              m.TopK,
		VolLookbackDays:   m.VolLookbackDays,
		AnnualizationDays: m.AnnualizationDays,
		VolFloor:          m.VolFloor,
	}
	ranked := momentum.Rank(series, mcfg)
	weights := momentum.InverseVolWeights(momentum.TopK(ranked, series, mcfg.TopK), mcfg)

	ranks := make([]map[string]any, 0, len(ranked))
	for i, sc := range ranked {
		ranks = append(ranks, map[string]any{
			"rank":      i + 1,
			"symbol":    sc.Symbol,
			"composite": sc.Composite,
		})
	}
	observ.Log("momentum_ranking", map[string]any{
		"requested": len(watchlist),
		"ranked":    ranks,
		"weights":   weights,
	})
}

func logResolved(leg, symbol string, rp resolver.ResolvedPrice) {
	kv := map[string]any{
		"leg":        leg,
		"symbol":     symbol,
		"value":      rp.Value.String(),
		"provenance": rp.Provenance,
	}
	if rp.Unavailable() && rp.LastGood != nil {
		kv["stale_value"] = rp.LastGood.Value.String()
		kv["stale_source"] = rp.LastGood.Source
		kv["stale_age"] = time.Since(rp.LastGood.AsOf).Round(time.Second).String()
	}
	observ.Log("price_resolved", kv)
}
