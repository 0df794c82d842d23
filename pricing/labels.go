package pricing

import "github.com/shopspring/decimal"

const (
	StockOut = "Out of Stock"
	StockLow = "Low Stock"
	StockIn  = "In Stock"

	LowStockThreshold = 5
)

func StockLabel(stock int) string {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// DiscountPercent is the whole-number markdown implied by originalPrice > price.
func DiscountPercent(originalPrice, price float64) int {
	if originalPrice <= 0 || originalPrice <= price {
		return 0
	}
	orig := decimal.NewFromFloat(originalPrice)
	pct := orig.Sub(decimal.NewFromFloat(price)).Div(orig).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
