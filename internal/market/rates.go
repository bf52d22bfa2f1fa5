package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// RateProvider supplies a currency conversion rate. It sits at the external
// boundary; the core only reads the returned rate.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// FixedRate is a RateProvider returning a constant rate, for configuration
// overrides and tests.
type FixedRate struct {
	Value decimal.Decimal
}

func (f FixedRate) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return f.Value, nil
}

// HTTPRates looks conversion rates up from a frankfurter-compatible endpoint.
type HTTPRates struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPRates creates an HTTPRates client against api.frankfurter.app.
func NewHTTPRates() *HTTPRates {
	return &HTTPRates{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.frankfurter.app",
	}
}

func (h *HTTPRates) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/latest?from=%s&to=%s", h.baseURL, from, to)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, fmt.Errorf("rate request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate response: %w", err)
	}
	raw, ok := payload.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("no %s rate in response", to)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable %s rate %q: %w", to, raw, err)
	}
	return rate, nil
}
