package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"steam_market_deals/internal/retry"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const skinportAppID = 252490

// Anti-bot headers the browse endpoint expects on every request.
var skinportHeaders = map[string]string{
	"accept":          "application/json text/plain, */*",
	"accept-encoding": "utf-8",
	"accept-language": "en-US,en;q=0.9",
	"origin":          "https://skinport.com",
	"referer":         fmt.Sprintf("https://skinport.com/market/%d", skinportAppID),
	"sec-fetch-dest":  "empty",
	"sec-fetch-mode":  "cors",
	"sec-fetch-site":  "same-site",
	"user-agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/87.0.4280.141 Safari/537.36 OPR/73.0.3856.415",
}

// Skinport scrapes listings from the skinport.com browse endpoint.
type Skinport struct {
	httpClient *http.Client
	retryCfg   retry.Config
	baseURL    string
	sortBy     string // one of sale, popular, percent, price, wear, date
	order      string // asc or desc
	priceMin   int    // minor-currency units, 200 = 2.00€
	priceMax   int
}

// SkinportOptions configure a Skinport source. Zero values fall back to the
// defaults: sort by date descending, prices between 2.00€ and 100.00€.
type SkinportOptions struct {
	SortBy   string
	Order    string
	PriceMin int
	PriceMax int
}

// NewSkinport creates a Skinport source.
func NewSkinport(retryCfg retry.Config, opts SkinportOptions) *Skinport {
	if opts.SortBy == "" {
		opts.SortBy = "date"
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}
	if opts.PriceMin == 0 {
		opts.PriceMin = 200
	}
	if opts.PriceMax == 0 {
		opts.PriceMax = 10000
	}
	return &Skinport{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryCfg:   retryCfg,
		baseURL:    "https://app.skinport.com",
		sortBy:     opts.SortBy,
		order:      opts.Order,
		priceMin:   opts.PriceMin,
		priceMax:   opts.PriceMax,
	}
}

func (s *Skinport) Name() string {
	return "skinport"
}

// GetPage fetches one page of listings. The page index maps onto the
// endpoint's skip parameter.
func (s *Skinport) GetPage(ctx context.Context, page int) ([]Item, error) {
	pageURL := fmt.Sprintf("%s/browse/%d?pricegt=%d&pricelt=%d&sort=%s&order=%s&skip=%d",
		s.baseURL, skinportAppID, s.priceMin, s.priceMax, s.sortBy, s.order, page)

	body, err := retry.WithRetry(ctx, s.retryCfg, func(ctx context.Context) ([]byte, error) {
		return s.request(ctx, pageURL)
	})
	if err != nil {
		return nil, fmt.Errorf("skinport page %d: %w", page, err)
	}

	var payload struct {
		Items []struct {
			MarketName     string `json:"marketName"`
			SalePrice      int64  `json:"salePrice"`
			SuggestedPrice int64  `json:"suggestedPrice"`
			URL            string `json:"url"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("skinport page %d: malformed response: %w", page, err)
	}

	items := make([]Item, 0, len(payload.Items))
	for _, raw := range payload.Items {
		suggested := decimal.New(raw.SuggestedPrice, -2)
		items = append(items, Item{
			Source:         s.Name(),
			Name:           raw.MarketName,
			Price:          decimal.New(raw.SalePrice, -2),
			URL:            fmt.Sprintf("https://skinport.com/market/%d?search=%s", skinportAppID, url.QueryEscape(raw.URL)),
			SuggestedPrice: &suggested,
		})
	}

	log.Debug().
		Int("page", page).
		Int("items", len(items)).
		Msg("Retrieved skinport page")
	return items, nil
}

func (s *Skinport) request(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range skinportHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("browse request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
