// Package steam retrieves reference prices from the Steam community market.
package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"steam_market_deals/internal/retry"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	// DefaultAppID is the Steam application whose market is scanned.
	DefaultAppID = 252490

	defaultBaseURL = "https://steamcommunity.com"
)

// encodeMap is the fixed character set escaped in market hash names. All
// other characters pass through unchanged.
var encodeMap = [][2]string{
	{" ", "%20"},
	{"'", "%27"},
	{"&", "%26"},
	{"é", "%C3%A9"},
}

// priceSymbols are stripped from locale-formatted price strings before the
// remaining digits are read as integer cents.
var priceSymbols = []string{"€", ",", "--", "â‚¬", " ", "$", "."}

// Client fetches reference prices with bounded retry, degrading to an
// unknown price instead of failing the scan.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCfg   retry.Config
	baseURL    string
	appID      int
	now        func() time.Time
}

// NewClient creates a Client. requestsPerMinute caps outbound requests on top
// of the orchestrator's politeness delays.
func NewClient(retryCfg retry.Config, requestsPerMinute int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:  rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
		retryCfg: retryCfg,
		baseURL:  defaultBaseURL,
		appID:    DefaultAppID,
		now:      time.Now,
	}
}

// Fetch returns the current reference price for name, or nil when none could
// be obtained. Transient failures are retried up to the configured attempt
// count with a fixed delay; exhaustion and "no such listing" responses both
// degrade to nil and are never surfaced as errors.
func (c *Client) Fetch(ctx context.Context, name string) *Price {
	body, err := retry.WithRetry(ctx, c.retryCfg, func(ctx context.Context) ([]byte, error) {
		return c.requestOverview(ctx, name)
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("item", name).
			Msg("Failed to get reference price")
		return nil
	}

	price, err := c.parseOverview(body, name)
	if err != nil {
		log.Warn().
			Err(err).
			Str("item", name).
			Msg("Malformed price overview response")
		return nil
	}
	if price == nil {
		log.Debug().Str("item", name).Msg("No reference listing for item")
	}
	return price
}

func (c *Client) requestOverview(ctx context.Context, name string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/market/priceoverview/?appid=%d&currency=3&market_hash_name=%s",
		c.baseURL, c.appID, encodeName(name))
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("price request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// overview is the JSON payload of the price overview endpoint. Price and
// volume fields are locale-formatted strings and may be absent.
type overview struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

func (c *Client) parseOverview(body []byte, name string) (*Price, error) {
	payload, err := extractJSON(body)
	if err != nil {
		return nil, err
	}

	var ov overview
	if err := json.Unmarshal(payload, &ov); err != nil {
		return nil, fmt.Errorf("failed to decode price overview: %w", err)
	}
	if !ov.Success {
		return nil, nil
	}

	lowest, err := parsePrice(ov.LowestPrice)
	if err != nil {
		return nil, fmt.Errorf("lowest_price: %w", err)
	}
	median, err := parsePrice(ov.MedianPrice)
	if err != nil {
		return nil, fmt.Errorf("median_price: %w", err)
	}
	volume, err := parseVolume(ov.Volume)
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}

	return &Price{
		Name:        name,
		LowestPrice: lowest,
		MedianPrice: median,
		Volume:      volume,
		FetchedAt:   c.now(),
		URL:         fmt.Sprintf("%s/market/listings/%d/%s", defaultBaseURL, c.appID, encodeName(name)),
	}, nil
}

// extractJSON pulls the outermost JSON object out of a response body that may
// wrap it in non-JSON text.
func extractJSON(body []byte) ([]byte, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response: %q", string(body))
	}
	return body[start : end+1], nil
}

func encodeName(name string) string {
	for _, m := range encodeMap {
		name = strings.ReplaceAll(name, m[0], m[1])
	}
	return name
}

// parsePrice strips currency and formatting symbols, reads the remaining
// digits as integer cents, and returns the major-currency value. An absent
// field parses as zero.
func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	s := raw
	for _, sym := range priceSymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	cents, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable price %q: %w", raw, err)
	}
	return decimal.New(cents, -2), nil
}

func parseVolume(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, nil
	}
	volume, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unparseable volume %q: %w", raw, err)
	}
	return volume, nil
}
