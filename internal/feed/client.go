package feed

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"sgbcarry/internal/observ"
)

// Moneycontrol and the commodity pages 403 the default Go user agent, so
// every request identifies as a desktop browser.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodyBytes = 1 << 20

// Client is the HTTP client shared by all adapters of one source: bounded
// timeout, per-source rate limit, browser headers.
type Client struct {
	source  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(source string, timeout time.Duration, perMinute int) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Client{
		source:  source,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute),
	}
}

// Get fetches url and returns the response body. Errors carry context for
// logging but callers collapse them to failed quotes.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

	start := time.Now()
	resp, err := c.http.Do(req)
	observ.RecordDuration("feed_request", time.Since(start), map[string]string{"source": c.source})
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}
