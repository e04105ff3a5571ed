package stubs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// HistoryServer mimics the daily-close history endpoint:
// GET /<symbol>?days=N returns the trailing N closes, oldest first.
type HistoryServer struct {
	mu     sync.Mutex
	series map[string][]float64
}

func NewHistoryServer() *HistoryServer {
	return &HistoryServer{series: map[string][]float64{}}
}

func (s *HistoryServer) Set(symbol string, closes []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[symbol] = closes
}

func (s *HistoryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimPrefix(r.URL.Path, "/")
	s.mu.Lock()
	closes, ok := s.series[symbol]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if n, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && n > 0 && n < len(closes) {
		closes = closes[len(closes)-n:]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"closes": closes},
	})
}
