package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const csdealsAppID = "252490"

// CSDeals scrapes listings from the cs.deals marketplace search. Listing
// prices arrive in USD and are converted to EUR through the configured
// RateProvider; the conversion rate is resolved once, on the first page.
type CSDeals struct {
	httpClient *http.Client
	rates      RateProvider
	baseURL    string
	minPrice   decimal.Decimal
	maxPrice   decimal.Decimal

	rate    decimal.Decimal
	hasRate bool
}

// NewCSDeals creates a CSDeals source showing only items priced strictly
// between minPrice and maxPrice (EUR).
func NewCSDeals(rates RateProvider, minPrice, maxPrice decimal.Decimal) *CSDeals {
	return &CSDeals{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rates:      rates,
		baseURL:    "https://cs.deals",
		minPrice:   minPrice,
		maxPrice:   maxPrice,
	}
}

func (c *CSDeals) Name() string {
	return "csdeals"
}

func (c *CSDeals) GetPage(ctx context.Context, page int) ([]Item, error) {
	rate, err := c.conversionRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("csdeals page %d: %w", page, err)
	}

	form := url.Values{
		"appid":     {csdealsAppID},
		"sort":      {"discount"},
		"sort_desc": {"1"},
		"page":      {strconv.Itoa(page)},
	}
	body, err := c.request(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("csdeals page %d: %w", page, err)
	}

	var payload struct {
		Response struct {
			Results map[string][]struct {
				Name  string      `json:"c"`
				Price json.Number `json:"i"`
			} `json:"results"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("csdeals page %d: malformed response: %w", page, err)
	}

	var items []Item
	for _, raw := range payload.Response.Results[csdealsAppID] {
		usd, err := decimal.NewFromString(raw.Price.String())
		if err != nil {
			return nil, fmt.Errorf("csdeals page %d: unparseable price %q: %w", page, raw.Price, err)
		}
		price := usd.Mul(rate).Round(2)
		if price.GreaterThan(c.minPrice) && price.LessThan(c.maxPrice) {
			items = append(items, Item{
				Source: c.Name(),
				Name:   raw.Name,
				Price:  price,
			})
		}
	}

	log.Debug().
		Int("page", page).
		Int("items", len(items)).
		Msg("Retrieved csdeals page")
	return items, nil
}

func (c *CSDeals) conversionRate(ctx context.Context) (decimal.Decimal, error) {
	if c.hasRate {
		return c.rate, nil
	}
	rate, err := c.rates.Rate(ctx, "USD", "EUR")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve USD/EUR rate: %w", err)
	}
	c.rate = rate
	c.hasRate = true
	log.Debug().Str("rate", rate.String()).Msg("Resolved USD/EUR conversion rate")
	return rate, nil
}

func (c *CSDeals) request(ctx context.Context, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/ajax/marketplace-search",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.84 Safari/537.36 OPR/85.0.4341.65")
	req.Header.Set("x-requested-with", "XMLHttpRequest")
	req.Header.Set("content-type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
