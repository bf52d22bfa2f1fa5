// Package alert models qualifying deal opportunities and their per-run
// bookkeeping: the dedup ledger, the append-only deals log, and the audio
// side effect.
package alert

import (
	"fmt"
	"strings"

	"steam_market_deals/internal/market"
	"steam_market_deals/internal/profit"
	"steam_market_deals/internal/steam"

	"github.com/shopspring/decimal"
)

// Alert is one qualifying opportunity: a marketplace listing whose implied
// profit against the reference price exceeded the threshold. Immutable after
// construction.
type Alert struct {
	Item       market.Item
	Ref        steam.Price
	Percentage decimal.Decimal
	SellEven   decimal.Decimal
	NetProfit  decimal.Decimal
}

// New derives the sell-even price and net profit and returns the Alert.
func New(item market.Item, ref steam.Price, percentage decimal.Decimal) *Alert {
	return &Alert{
		Item:       item,
		Ref:        ref,
		Percentage: percentage,
		SellEven:   profit.SellEven(item.Price),
		NetProfit:  profit.TaxAdjusted(ref.LowestPrice).Sub(item.Price),
	}
}

// String renders the multi-line record used for the console banner, the
// deals log, and the end-of-run summary.
func (a *Alert) String() string {
	return fmt.Sprintf(
		"item: [%q],  buy price: %s€  sell price: %s€  volume: %d\n"+
			"profit percent: %s%% profit: %s€ sell/even: %s€\n"+
			"market_link: %s  steam: %s\n"+
			"%s",
		a.Item.Name, a.Item.Price, a.Ref.LowestPrice, a.Ref.Volume,
		a.Percentage, a.NetProfit, a.SellEven,
		a.Item.URL, a.Ref.URL,
		strings.Repeat("-", 150),
	)
}
