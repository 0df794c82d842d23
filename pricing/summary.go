package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/models"
)

type ShippingPolicy struct {
	Fee           float64
	FreeThreshold float64
}

func PolicyFromSettings(s models.SiteSettings) ShippingPolicy {
	return ShippingPolicy{Fee: s.ShippingFee, FreeThreshold: s.FreeShippingThreshold}
}

// Shipping is free above the threshold and for an empty cart.
func (p ShippingPolicy) Shipping(subtotal float64) float64 {
	if subtotal <= 0 || subtotal > p.FreeThreshold {
		return 0
	}
	return p.Fee
}

type Summary struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
	CouponCode string  `json:"couponCode,omitempty"`
}

// Summarize builds the order summary. coupon is the result of EvaluateCoupon
// for the same subtotal, or nil when no coupon applies.
func Summarize(subtotal float64, policy ShippingPolicy, coupon *CouponResult) Summary {
	s := Summary{
		Subtotal: subtotal,
		Shipping: policy.Shipping(subtotal),
	}
	if coupon != nil {
		s.Discount = coupon.DiscountAmount
		s.CouponCode = coupon.Code
	}
	total := decimal.NewFromFloat(s.Subtotal).
		Add(decimal.NewFromFloat(s.Shipping)).
		Sub(decimal.NewFromFloat(s.Discount)).
		Round(2)
	s.Total = decimal.Max(total, decimal.Zero).InexactFloat64()
	return s
}

// LineTotal is price × quantity rounded to cents.
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}
