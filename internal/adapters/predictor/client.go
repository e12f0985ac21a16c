package predictor

// client.go — HTTP client for the prediction service. The engine never loads
// models itself: it posts the market observation and gets back a predicted
// price. A timeout or error degrades to "no signal for this symbol".

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

const requestsPerSec = 10

// Client implements ports.PredictionService over HTTP.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient creates a Client against the given base URL with the given
// per-call timeout.
func NewClient(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		base:    base,
		limiter: rate.NewLimiter(requestsPerSec, 10),
	}
}

type predictRequest struct {
	Symbol     string  `json:"symbol"`
	MarketType string  `json:"marketType"`
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Spread     float64 `json:"spread"`
}

type predictResponse struct {
	PredictedPrice float64 `json:"predictedPrice"`
	SignalHint     string  `json:"signalHint"`
}

// Predict posts the observation and returns the model's prediction.
func (c *Client) Predict(ctx context.Context, obs domain.MarketObservation) (domain.Prediction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Prediction{}, fmt.Errorf("predictor.Predict: rate limiter: %w", err)
	}

	body, err := json.Marshal(predictRequest{
		Symbol:     obs.Symbol,
		MarketType: string(obs.MarketType),
		Price:      obs.Price,
		Volume:     obs.Volume,
		Bid:        obs.Bid,
		Ask:        obs.Ask,
		Spread:     obs.Spread,
	})
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predictor.Predict: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predict", bytes.NewReader(body))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predictor.Predict: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Prediction{},
			fmt.Errorf("predictor.Predict: %s: %w: %w", obs.Symbol, domain.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Prediction{},
			fmt.Errorf("predictor.Predict: %s: %w: status %d: %s",
				obs.Symbol, domain.ErrCollaboratorUnavailable, resp.StatusCode, b)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.Prediction{}, fmt.Errorf("predictor.Predict: decode: %w", err)
	}

	return domain.Prediction{
		Symbol:         obs.Symbol,
		MarketType:     obs.MarketType,
		CurrentPrice:   obs.Price,
		PredictedPrice: pr.PredictedPrice,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// Compile-time interface check.
var _ ports.PredictionService = (*Client)(nil)
