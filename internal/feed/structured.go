package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StructuredConfig describes one JSON pricefeed endpoint. The key fields name
// where each price lives in the payload's data object, so feed variants that
// only differ in field naming share this one adapter.
type StructuredConfig struct {
	Name          string
	BaseURL       string
	OfferKey      string
	BidKey        string
	LastKey       string
	Timeout       time.Duration
	RatePerMinute int
}

// StructuredSource queries a JSON pricing endpoint of the shape
// {"data": {"OPrice": ..., "BPrice": ..., "pricecurrent": ...}}. Numeric
// fields arrive as strings or numbers depending on the feed's mood, so
// extraction is tolerant of both.
type StructuredSource struct {
	cfg    StructuredConfig
	client *Client
}

func NewStructuredSource(cfg StructuredConfig) *StructuredSource {
	return &StructuredSource{
		cfg:    cfg,
		client: NewClient(cfg.Name, cfg.Timeout, cfg.RatePerMinute),
	}
}

func (s *StructuredSource) Name() string { return s.cfg.Name }

func (s *StructuredSource) Fetch(ctx context.Context, code string) Quote {
	body, err := s.client.Get(ctx, s.cfg.BaseURL+"/"+code)
	if err != nil {
		return failedQuote(s.cfg.Name, err.Error())
	}

	var payload struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return failedQuote(s.cfg.Name, fmt.Sprintf("decode pricefeed: %v", err))
	}
	if payload.Data == nil {
		return failedQuote(s.cfg.Name, "payload has no data object")
	}

	offer := extractDecimal(payload.Data, s.cfg.OfferKey)
	bid := extractDecimal(payload.Data, s.cfg.BidKey)
	last := extractDecimal(payload.Data, s.cfg.LastKey)
	return goodQuote(s.cfg.Name, bid, offer, last)
}

// extractDecimal reads one price field, accepting "15920.00", 15920.0 or an
// absent/empty value (zero). Unparseable text is treated as absent rather
// than failing the whole quote.
func extractDecimal(data map[string]json.RawMessage, key string) decimal.Decimal {
	if key == "" {
		return decimal.Zero
	}
	raw, ok := data[key]
	if !ok {
		return decimal.Zero
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}
