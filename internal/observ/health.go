package observ

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// SourceHealth tracks the recent fetch record of one upstream source.
type SourceHealth struct {
	Source            string    `json:"source"`
	Status            string    `json:"status"` // "healthy" | "degraded" | "failed"
	ConsecutiveErrors int       `json:"consecutive_errors"`
	TotalRequests     int64     `json:"total_requests"`
	TotalErrors       int64     `json:"total_errors"`
	LastError         string    `json:"last_error,omitempty"`
	LastCheck         time.Time `json:"last_check"`
}

var (
	healthMu sync.Mutex
	health   = map[string]*SourceHealth{}

	startTime = time.Now()
)

func sourceHealth(source string) *SourceHealth {
	h, ok := health[source]
	if !ok {
		h = &SourceHealth{Source: source, Status: "healthy"}
		health[source] = h
	}
	return h
}

func RecordSourceSuccess(source string) {
	healthMu.Lock()
	defer healthMu.Unlock()
	h := sourceHealth(source)
	h.TotalRequests++
	h.ConsecutiveErrors = 0
	h.Status = "healthy"
	h.LastCheck = time.Now()
}

func RecordSourceError(source, msg string) {
	healthMu.Lock()
	defer healthMu.Unlock()
	h := sourceHealth(source)
	h.TotalRequests++
	h.TotalErrors++
	h.ConsecutiveErrors++
	h.LastError = msg
	h.LastCheck = time.Now()
	switch {
	case h.ConsecutiveErrors >= 3:
		h.Status = "failed"
	case h.ConsecutiveErrors >= 2:
		h.Status = "degraded"
	}
}

// HealthHandler reports per-source fetch health plus process uptime.
func HealthHandler() http.Handler {
	type report struct {
		Status  string                   `json:"status"`
		Uptime  string                   `json:"uptime"`
		Sources map[string]*SourceHealth `json:"sources"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthMu.Lock()
		defer healthMu.Unlock()

		overall := "healthy"
		for _, h := range health {
			if h.Status == "failed" {
				overall = "degraded" // one dead source is survivable, the chain falls through
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report{
			Status:  overall,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Sources: health,
		})
	})
}
