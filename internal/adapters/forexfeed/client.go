package forexfeed

// client.go — forex quotes over HTTP with rate limiting and retries.
//
// The upstream returns bid/ask per pair; the observation carries the mid
// price, which is what the engine trades on.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

const (
	// Free-tier forex APIs allow around 10 req/s; stay well under.
	requestsPerSec = 5

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client implements ports.MarketDataFeed for forex pairs.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient creates a Client against the given base URL.
func NewClient(base string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(requestsPerSec, 5),
	}
}

// quoteResponse is the upstream payload for one pair.
type quoteResponse struct {
	Pair      string  `json:"pair"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Spread    float64 `json:"spread"`
	Timestamp string  `json:"timestamp"`
}

// LatestObservation returns the current mid-price snapshot for the pair.
func (c *Client) LatestObservation(ctx context.Context, pair string) (domain.MarketObservation, bool, error) {
	var q quoteResponse
	url := fmt.Sprintf("%s/quotes/%s", c.base, pair)
	if err := c.get(ctx, url, &q); err != nil {
		return domain.MarketObservation{}, false,
			fmt.Errorf("forexfeed.LatestObservation: %s: %w: %w", pair, domain.ErrCollaboratorUnavailable, err)
	}
	if q.Bid <= 0 || q.Ask <= 0 {
		return domain.MarketObservation{}, false, nil
	}

	ts, err := time.Parse(time.RFC3339, q.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}
	return domain.MarketObservation{
		Symbol:     pair,
		MarketType: domain.MarketForex,
		Price:      (q.Bid + q.Ask) / 2,
		Bid:        q.Bid,
		Ask:        q.Ask,
		Spread:     q.Spread,
		Timestamp:  ts,
	}, true, nil
}

// get does a GET with rate limiting and exponential backoff with jitter.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("upstream returned %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("forexfeed: retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, body)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return nil
}

// sleep waits with exponential backoff and jitter, honoring ctx cancellation.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := baseRetryWait << attempt
	wait += time.Duration(rand.Int63n(int64(wait / 2)))
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// Compile-time interface check.
var _ ports.MarketDataFeed = (*Client)(nil)
