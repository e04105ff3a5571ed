package feed

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgbcarry/internal/stubs"
)

func TestHistorySourceAgainstStub(t *testing.T) {
	hist := stubs.NewHistoryServer()
	hist.Set("GOLDBEES", []float64{95, 96, 97, 98, 99, 100})
	srv := httptest.NewServer(hist)
	t.Cleanup(srv.Close)

	src := NewHistorySource(HistoryConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})

	closes, err := src.Daily(context.Background(), "GOLDBEES", 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{97, 98, 99, 100}, closes, "trailing window, oldest first")

	_, err = src.Daily(context.Background(), "NOSUCH", 4)
	assert.Error(t, err)
}

func TestStructuredSourceAgainstStub(t *testing.T) {
	fs := stubs.NewFeedServer()
	fs.Set("SGD14", stubs.FeedQuote{Offer: 7521.50, Bid: 7498.00, Last: 7510.05})
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)

	src := NewStructuredSource(StructuredConfig{
		Name:     "mcfeed",
		BaseURL:  srv.URL,
		OfferKey: "OPrice",
		BidKey:   "BPrice",
		LastKey:  "pricecurrent",
		Timeout:  2 * time.Second,
	})
	q := src.Fetch(context.Background(), "SGD14")
	require.True(t, q.OK)
	assert.Equal(t, "7521.5", q.Offer.String())
	assert.Equal(t, "7498", q.Bid.String())
	assert.Equal(t, "7510.05", q.Last.String())
}
