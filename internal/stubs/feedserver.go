// Package stubs provides local stand-ins for the upstream price sources so
// the dashboard can be developed and tested offline. Payload shapes mirror
// the real endpoints.
package stubs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// FeedQuote is one instrument's state on the stub JSON feed.
type FeedQuote struct {
	Offer float64
	Bid   float64
	Last  float64
}

// FeedServer mimics the structured pricefeed: GET /<code> returns
// {"data": {"OPrice": ..., "BPrice": ..., "pricecurrent": ...}} with numbers
// rendered as strings, matching the quirks of the real feed.
type FeedServer struct {
	mu     sync.Mutex
	quotes map[string]FeedQuote
}

func NewFeedServer() *FeedServer {
	return &FeedServer{quotes: map[string]FeedQuote{}}
}

// Set installs or replaces the quote served for code.
func (s *FeedServer) Set(code string, q FeedQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[code] = q
}

func (s *FeedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/")
	s.mu.Lock()
	q, ok := s.quotes[code]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"OPrice":       fmt.Sprintf("%.2f", q.Offer),
			"BPrice":       fmt.Sprintf("%.2f", q.Bid),
			"pricecurrent": fmt.Sprintf("%.2f", q.Last),
		},
	})
}

// PageServer mimics the scraped commodity quote page: GET /<slug> returns an
// HTML document with the price inside a span carrying the well-known class.
type PageServer struct {
	mu     sync.Mutex
	prices map[string]string // slug -> displayed price text, locale-formatted
	class  string
}

func NewPageServer(class string) *PageServer {
	return &PageServer{prices: map[string]string{}, class: class}
}

func (s *PageServer) Set(slug, displayed string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[slug] = displayed
}

func (s *PageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/")
	s.mu.Lock()
	displayed, ok := s.prices[slug]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<html><body>
<div class="quote_hero">
  <h1>%s</h1>
  <span class="%s">%s</span>
  <span class="chg up">+0.42%%</span>
</div>
</body></html>`, slug, s.class, displayed)
}
