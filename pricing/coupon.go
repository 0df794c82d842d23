// Package pricing holds the storefront's money rules: coupon evaluation,
// order summaries, and the derived labels shown next to products.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/models"
)

type RejectionReason string

const (
	ReasonInvalidCode   RejectionReason = "invalid_code"
	ReasonInactive      RejectionReason = "inactive"
	ReasonExpired       RejectionReason = "expired"
	ReasonUsageLimit    RejectionReason = "usage_limit_reached"
	ReasonMinimumNotMet RejectionReason = "minimum_not_met"
)

// Rejection is returned when a coupon cannot be applied to a cart.
type Rejection struct {
	Reason  RejectionReason `json:"reason"`
	Message string          `json:"message"`
}

func (r *Rejection) Error() string { return r.Message }

func reject(reason RejectionReason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

type CouponResult struct {
	CouponID       string  `json:"couponId"`
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalTotal     float64 `json:"finalTotal"`
}

// EvaluateCoupon checks c against a cart subtotal. Checks run in a fixed
// order and the first failing one is reported. A nil coupon is an unknown code.
func EvaluateCoupon(c *models.Coupon, subtotal float64, now time.Time) (CouponResult, error) {
	if c == nil {
		return CouponResult{}, reject(ReasonInvalidCode, "Invalid coupon code")
	}
	if !c.IsActive {
		return CouponResult{}, reject(ReasonInactive, "Coupon %s is not active", c.Code)
	}
	if !now.Before(c.ExpiryDate) {
		return CouponResult{}, reject(ReasonExpired, "Coupon %s has expired", c.Code)
	}
	if c.UsedCount >= c.UsageLimit {
		return CouponResult{}, reject(ReasonUsageLimit, "Coupon %s usage limit reached", c.Code)
	}

	sub := decimal.NewFromFloat(subtotal)
	minPurchase := decimal.NewFromFloat(c.MinPurchase)
	if sub.LessThan(minPurchase) {
		return CouponResult{}, reject(ReasonMinimumNotMet, "Minimum purchase of %s required", minPurchase.String())
	}

	discount := Discount(c, sub).Round(0)
	final := decimal.Max(sub.Sub(discount).Round(0), decimal.Zero)

	return CouponResult{
		CouponID:       c.ID.Hex(),
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountAmount: discount.InexactFloat64(),
		FinalTotal:     final.InexactFloat64(),
	}, nil
}

// Discount is the unrounded discount c grants on subtotal. Percentage
// discounts honour MaxDiscount. No discount exceeds the subtotal.
func Discount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	value := decimal.NewFromFloat(c.DiscountValue)
	if value.IsNegative() || !subtotal.IsPositive() {
		return decimal.Zero
	}

	switch c.DiscountType {
	case models.DiscountPercentage:
		d := subtotal.Mul(value).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil {
			d = decimal.Min(d, decimal.NewFromFloat(*c.MaxDiscount))
		}
		return decimal.Min(d, subtotal)
	case models.DiscountFixed:
		return decimal.Min(value, subtotal)
	default:
		return decimal.Zero
	}
}

func ValidDiscountType(t string) bool {
	return t == models.DiscountPercentage || t == models.DiscountFixed
}
