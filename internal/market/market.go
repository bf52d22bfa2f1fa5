// Package market abstracts the third-party marketplaces that supply buy-side
// listings, one Source implementation per external venue.
package market

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is one marketplace listing mapped into the common capability set.
// Source tags the venue; SuggestedPrice is a venue-specific extra carried
// only by sources that publish one. Items are produced fresh on every page
// fetch and never persisted.
type Item struct {
	Source         string
	Name           string
	Price          decimal.Decimal
	URL            string
	SuggestedPrice *decimal.Decimal
}

// Source yields pages of marketplace listings. Each implementation owns its
// pagination contract, price-range filter, and any currency conversion it
// performs. Response-shape failures are returned as errors; the caller skips
// the page and continues.
type Source interface {
	Name() string
	GetPage(ctx context.Context, page int) ([]Item, error)
}
