package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// HistoryConfig points at a daily-close history endpoint:
// GET <base_url>/<symbol>?days=N -> {"data": {"closes": [..oldest first..]}}.
type HistoryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// HistorySource feeds the momentum engine. Unlike the quote adapters it does
// return errors: the ranking pipeline skips unavailable symbols instead of
// walking a fallback chain, so there is nothing to collapse for.
type HistorySource struct {
	cfg    HistoryConfig
	client *Client
}

func NewHistorySource(cfg HistoryConfig) *HistorySource {
	return &HistorySource{
		cfg:    cfg,
		client: NewClient("history", cfg.Timeout, 0),
	}
}

func (h *HistorySource) Daily(ctx context.Context, symbol string, days int) ([]float64, error) {
	url := fmt.Sprintf("%s/%s?days=%d", h.cfg.BaseURL, symbol, days)
	body, err := h.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			Closes []float64 `json:"closes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "decode history")
	}
	if len(payload.Data.Closes) == 0 {
		return nil, errors.Errorf("no history for %s", symbol)
	}
	return payload.Data.Closes, nil
}
