package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStructured(t *testing.T, handler http.HandlerFunc) *StructuredSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStructuredSource(StructuredConfig{
		Name:     "testfeed",
		BaseURL:  srv.URL,
		OfferKey: "OPrice",
		BidKey:   "BPrice",
		LastKey:  "pricecurrent",
		Timeout:  2 * time.Second,
	})
}

func TestStructuredFetch(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantOK    bool
		wantOffer string
		wantBid   string
		wantLast  string
	}{
		{
			name:      "string valued fields",
			body:      `{"data":{"OPrice":"7521.50","BPrice":"7498.00","pricecurrent":"7510.05"}}`,
			wantOK:    true,
			wantOffer: "7521.5", wantBid: "7498", wantLast: "7510.05",
		},
		{
			name:      "numeric valued fields",
			body:      `{"data":{"OPrice":0,"pricecurrent":15920.0}}`,
			wantOK:    true,
			wantOffer: "0", wantBid: "0", wantLast: "15920",
		},
		{
			name:   "all fields zero means market gave us nothing",
			body:   `{"data":{"OPrice":"0","BPrice":"0","pricecurrent":"0"}}`,
			wantOK: false,
		},
		{
			name:      "negative field clamped, quote survives on last",
			body:      `{"data":{"OPrice":"-1","pricecurrent":"7510"}}`,
			wantOK:    true,
			wantOffer: "0", wantBid: "0", wantLast: "7510",
		},
		{
			name:      "unparseable field treated as absent",
			body:      `{"data":{"OPrice":"N/A","pricecurrent":"7510"}}`,
			wantOK:    true,
			wantOffer: "0", wantBid: "0", wantLast: "7510",
		},
		{name: "no data object", body: `{"message":"maintenance"}`, wantOK: false},
		{name: "malformed json", body: `{"data":{`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newStructured(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			q := src.Fetch(context.Background(), "SGA09")
			require.Equal(t, tt.wantOK, q.OK)
			assert.Equal(t, "testfeed", q.Source)
			if !tt.wantOK {
				assert.True(t, q.Bid.IsZero() && q.Offer.IsZero() && q.Last.IsZero(),
					"failed quote must carry no price fields")
				return
			}
			assert.Equal(t, tt.wantOffer, q.Offer.String())
			assert.Equal(t, tt.wantBid, q.Bid.String())
			assert.Equal(t, tt.wantLast, q.Last.String())
		})
	}
}

func TestStructuredFetchTransportFailures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		src := newStructured(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "blocked", http.StatusForbidden)
		})
		q := src.Fetch(context.Background(), "SGA09")
		assert.False(t, q.OK)
	})

	t.Run("connection refused", func(t *testing.T) {
		src := NewStructuredSource(StructuredConfig{
			Name:    "deadfeed",
			BaseURL: "http://127.0.0.1:1",
			LastKey: "pricecurrent",
			Timeout: time.Second,
		})
		q := src.Fetch(context.Background(), "SGA09")
		assert.False(t, q.OK)
		assert.NotEmpty(t, q.Err)
	})
}

func TestStructuredFetchSendsBrowserUA(t *testing.T) {
	var gotUA, gotPath string
	src := newStructured(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":{"pricecurrent":"100"}}`))
	})
	src.Fetch(context.Background(), "SGA09")
	assert.True(t, strings.Contains(gotUA, "Mozilla/5.0"), "upstream blocks non-browser agents, got %q", gotUA)
	assert.Equal(t, "/SGA09", gotPath, "provider code goes on the path")
}
