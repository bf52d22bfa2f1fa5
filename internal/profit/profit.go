// Package profit holds the deterministic money math for deal evaluation.
// All functions are pure; rounding is half away from zero to 2 places.
package profit

import "github.com/shopspring/decimal"

var (
	baseDeduction = decimal.RequireFromString("0.98") // 2% off the base price
	marketCut     = decimal.RequireFromString("0.87") // 13% reference market cut
	saleCut       = decimal.RequireFromString("0.88") // 12% marketplace sale cut

	buyerFee   = decimal.RequireFromString("1.13")
	listingFee = decimal.RequireFromString("1.12")

	hundred = decimal.NewFromInt(100)
)

// TaxAdjusted returns the net proceeds of selling at price after all three
// deductions. The intermediate rounding after the first two deductions is
// part of the contract and not equivalent to one combined rounding.
func TaxAdjusted(price decimal.Decimal) decimal.Decimal {
	return price.Mul(baseDeduction).Mul(marketCut).Round(2).Mul(saleCut).Round(2)
}

// SellEven returns the reference-market listing price at which reselling an
// item bought at marketPrice breaks even.
func SellEven(marketPrice decimal.Decimal) decimal.Decimal {
	return marketPrice.Mul(buyerFee).Mul(listingFee).Round(2)
}

// Percentage returns the profit of buying at marketPrice and selling at the
// tax-adjusted reference lowest price, as a percentage of the buy price.
func Percentage(marketPrice, referenceLowest decimal.Decimal) decimal.Decimal {
	if marketPrice.IsZero() {
		return decimal.Zero
	}
	return TaxAdjusted(referenceLowest).Div(marketPrice).Mul(hundred).Sub(hundred).Round(2)
}
