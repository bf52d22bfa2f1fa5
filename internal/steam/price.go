package steam

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the most recently observed reference-market valuation for one
// item. It is immutable: a refetch replaces the whole value, fields are never
// merged.
type Price struct {
	Name        string          `json:"name"`
	LowestPrice decimal.Decimal `json:"lowest_price"`
	MedianPrice decimal.Decimal `json:"median_price"`
	Volume      int             `json:"volume"`
	FetchedAt   time.Time       `json:"fetched_at"`
	URL         string          `json:"url"`
}
