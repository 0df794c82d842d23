package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

func TestShippingThreshold(t *testing.T) {
	p := PolicyFromSettings(models.DefaultSiteSettings())

	assert.Equal(t, 9.99, p.Shipping(100))
	assert.Equal(t, 0.0, p.Shipping(100.01))
	assert.Equal(t, 9.99, p.Shipping(20))
	assert.Equal(t, 0.0, p.Shipping(0))
}

func TestShippingFollowsSettings(t *testing.T) {
	p := ShippingPolicy{Fee: 15, FreeThreshold: 500}
	assert.Equal(t, 15.0, p.Shipping(300))
	assert.Equal(t, 0.0, p.Shipping(600))
}

func TestSummarizeWithoutCoupon(t *testing.T) {
	s := Summarize(40, ShippingPolicy{Fee: 9.99, FreeThreshold: 100}, nil)
	assert.Equal(t, 40.0, s.Subtotal)
	assert.Equal(t, 9.99, s.Shipping)
	assert.Equal(t, 0.0, s.Discount)
	assert.Equal(t, 49.99, s.Total)
	assert.Empty(t, s.CouponCode)
}

func TestSummarizeUsesCouponEvaluator(t *testing.T) {
	c := coupon(models.DiscountPercentage, 10, 0, nil)
	c.Code = "SAVE10"
	res, err := EvaluateCoupon(c, 250, now)
	require.NoError(t, err)

	s := Summarize(250, ShippingPolicy{Fee: 9.99, FreeThreshold: 100}, &res)
	assert.Equal(t, 0.0, s.Shipping)
	assert.Equal(t, 25.0, s.Discount)
	assert.Equal(t, 225.0, s.Total)
	assert.Equal(t, "SAVE10", s.CouponCode)
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 0.3, LineTotal(0.1, 3))
	assert.Equal(t, 59.97, LineTotal(19.99, 3))
}

func TestStockLabelBoundaries(t *testing.T) {
	assert.Equal(t, "Out of Stock", StockLabel(0))
	assert.Equal(t, "Low Stock", StockLabel(1))
	assert.Equal(t, "Low Stock", StockLabel(5))
	assert.Equal(t, "In Stock", StockLabel(6))
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 25, DiscountPercent(100, 75))
	assert.Equal(t, 33, DiscountPercent(30, 20))
	assert.Equal(t, 0, DiscountPercent(0, 20))
	assert.Equal(t, 0, DiscountPercent(20, 25))
}

func TestSummarizeTotalIsNeverNegative(t *testing.T) {
	res, err := EvaluateCoupon(coupon(models.DiscountPercentage, 150, 0, nil), 200, now)
	require.NoError(t, err)

	s := Summarize(200, ShippingPolicy{Fee: 9.99, FreeThreshold: 100}, &res)
	assert.Equal(t, 0.0, s.Total)

	s = Summarize(50, ShippingPolicy{Fee: 0, FreeThreshold: 0}, &CouponResult{DiscountAmount: 80})
	assert.Equal(t, 0.0, s.Total)
}
