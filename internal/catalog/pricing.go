package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies a percentage discount and rounds the result to the
// nearest whole unit. A discount outside (0, 100] leaves the price untouched.
func DiscountedPrice(price decimal.Decimal, discountPercent int) decimal.Decimal {
	if discountPercent <= 0 || discountPercent > 100 {
		return price
	}
	cut := price.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred)
	return price.Sub(cut).Round(0)
}
