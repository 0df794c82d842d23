package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/middleware"
	"storefront/models"
	"storefront/pricing"
	"storefront/services"
)

type CouponRepository interface {
	List(ctx context.Context) ([]models.Coupon, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	Create(ctx context.Context, c *models.Coupon) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Coupon, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CouponController struct {
	base
	coupons CouponRepository
	svc     *services.CouponService
}

func NewCouponController(coupons CouponRepository, svc *services.CouponService, timeout time.Duration) *CouponController {
	return &CouponController{base: newBase(timeout), coupons: coupons, svc: svc}
}

func (cc *CouponController) List(c *gin.Context) {
	ctx, cancel := cc.ctx(c)
	defer cancel()

	coupons, err := cc.coupons.List(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, coupons)
}

func (cc *CouponController) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	coupon, err := cc.coupons.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	ok(c, http.StatusOK, coupon)
}

type couponInput struct {
	Code          *string    `json:"code"`
	DiscountType  *string    `json:"discountType"`
	DiscountValue *float64   `json:"discountValue"`
	MinPurchase   *float64   `json:"minPurchase"`
	MaxDiscount   *float64   `json:"maxDiscount"`
	UsageLimit    *int       `json:"usageLimit"`
	ExpiryDate    *time.Time `json:"expiryDate"`
	IsActive      *bool      `json:"isActive"`
}

func (in couponInput) validate() error {
	if in.Code != nil && models.NormalizeCouponCode(*in.Code) == "" {
		return errors.New("Coupon code is required")
	}
	if in.DiscountType != nil && !pricing.ValidDiscountType(*in.DiscountType) {
		return errors.New("Discount type must be percentage or fixed")
	}
	if in.DiscountValue != nil && *in.DiscountValue <= 0 {
		return errors.New("Discount value must be positive")
	}
	if in.DiscountType != nil && *in.DiscountType == models.DiscountPercentage &&
		in.DiscountValue != nil && *in.DiscountValue > 100 {
		return errors.New("Percentage discount cannot exceed 100")
	}
	if in.MinPurchase != nil && *in.MinPurchase < 0 {
		return errors.New("Minimum purchase must not be negative")
	}
	if in.MaxDiscount != nil && *in.MaxDiscount < 0 {
		return errors.New("Maximum discount must not be negative")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 0 {
		return errors.New("Usage limit must not be negative")
	}
	return nil
}

// over fills every field left unset in the input from c, so rules spanning
// several fields see the coupon as it will be stored.
func (in couponInput) over(c *models.Coupon) couponInput {
	if in.Code == nil {
		in.Code = &c.Code
	}
	if in.DiscountType == nil {
		in.DiscountType = &c.DiscountType
	}
	if in.DiscountValue == nil {
		in.DiscountValue = &c.DiscountValue
	}
	if in.MinPurchase == nil {
		in.MinPurchase = &c.MinPurchase
	}
	if in.MaxDiscount == nil {
		in.MaxDiscount = c.MaxDiscount
	}
	if in.UsageLimit == nil {
		in.UsageLimit = &c.UsageLimit
	}
	if in.ExpiryDate == nil {
		in.ExpiryDate = &c.ExpiryDate
	}
	if in.IsActive == nil {
		in.IsActive = &c.IsActive
	}
	return in
}

func (cc *CouponController) Create(c *gin.Context) {
	var in couponInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Code == nil || in.DiscountType == nil || in.DiscountValue == nil || in.ExpiryDate == nil || in.UsageLimit == nil {
		fail(c, http.StatusBadRequest, "code, discountType, discountValue, usageLimit and expiryDate are required")
		return
	}
	if err := in.validate(); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	coupon := models.Coupon{
		Code:          *in.Code,
		DiscountType:  *in.DiscountType,
		DiscountValue: *in.DiscountValue,
		UsageLimit:    *in.UsageLimit,
		ExpiryDate:    *in.ExpiryDate,
		IsActive:      true,
	}
	if in.MinPurchase != nil {
		coupon.MinPurchase = *in.MinPurchase
	}
	if in.MaxDiscount != nil && coupon.DiscountType == models.DiscountPercentage {
		coupon.MaxDiscount = in.MaxDiscount
	}
	if in.IsActive != nil {
		coupon.IsActive = *in.IsActive
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	if err := cc.coupons.Create(ctx, &coupon); err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusCreated, coupon)
}

func (cc *CouponController) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var in couponInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := in.validate(); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	fields := bson.M{}
	if in.Code != nil {
		fields["code"] = models.NormalizeCouponCode(*in.Code)
	}
	if in.DiscountType != nil {
		fields["discountType"] = *in.DiscountType
	}
	if in.DiscountValue != nil {
		fields["discountValue"] = *in.DiscountValue
	}
	if in.MinPurchase != nil {
		fields["minPurchase"] = *in.MinPurchase
	}
	if in.MaxDiscount != nil {
		fields["maxDiscount"] = *in.MaxDiscount
	}
	if in.UsageLimit != nil {
		fields["usageLimit"] = *in.UsageLimit
	}
	if in.ExpiryDate != nil {
		fields["expiryDate"] = *in.ExpiryDate
	}
	if in.IsActive != nil {
		fields["isActive"] = *in.IsActive
	}
	if len(fields) == 0 {
		fail(c, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	current, err := cc.coupons.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	if err := in.over(current).validate(); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := cc.coupons.Update(ctx, id, fields)
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	ok(c, http.StatusOK, updated)
}

func (cc *CouponController) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	if err := cc.coupons.Delete(ctx, id); err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id.Hex()})
}

const (
	actionValidate = "validate"
	actionUse      = "use"
)

// Patch runs an action against the coupon named by the path, which may be its
// id or its code. "validate" prices a cart total; "use" records a redemption
// and is admin only.
func (cc *CouponController) Patch(c *gin.Context) {
	var in struct {
		Action    string   `json:"action" binding:"required"`
		CartTotal *float64 `json:"cartTotal"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "action is required")
		return
	}
	ref := strings.TrimSpace(c.Param("id"))

	switch in.Action {
	case actionValidate:
		cc.validate(c, ref, in.CartTotal)
	case actionUse:
		if !middleware.IsAdmin(c) {
			fail(c, http.StatusForbidden, "Access denied: admin only")
			return
		}
		cc.use(c, ref)
	default:
		fail(c, http.StatusBadRequest, "action must be validate or use")
	}
}

// Validate is the code-first form of Patch's validate action.
func (cc *CouponController) Validate(c *gin.Context) {
	var in struct {
		Code      string   `json:"code"`
		CartTotal *float64 `json:"cartTotal"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	cc.validate(c, in.Code, in.CartTotal)
}

func (cc *CouponController) validate(c *gin.Context, ref string, cartTotal *float64) {
	if strings.TrimSpace(ref) == "" {
		fail(c, http.StatusBadRequest, "Coupon code is required")
		return
	}
	if cartTotal == nil || *cartTotal < 0 {
		fail(c, http.StatusBadRequest, "cartTotal must be a non-negative number")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	res, _, err := cc.svc.Validate(ctx, ref, *cartTotal)
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	ok(c, http.StatusOK, res)
}

func (cc *CouponController) use(c *gin.Context, ref string) {
	ctx, cancel := cc.ctx(c)
	defer cancel()

	coupon, err := cc.svc.Resolve(ctx, ref)
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	if coupon == nil {
		fail(c, http.StatusNotFound, "Coupon not found")
		return
	}
	if err := cc.svc.Consume(ctx, coupon.ID); err != nil {
		var rejection *pricing.Rejection
		if errors.As(err, &rejection) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": rejection.Message, "reason": rejection.Reason})
			return
		}
		respondError(c, err, "Coupon not found")
		return
	}
	updated, err := cc.coupons.FindByID(ctx, coupon.ID)
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	ok(c, http.StatusOK, updated)
}
