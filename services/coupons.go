// Package services orchestrates the multi-step storefront operations
// (coupon redemption, checkout and order lifecycle) over the repositories.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/models"
	"storefront/pricing"
)

type CouponRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUsage(ctx context.Context, id primitive.ObjectID) (bool, error)
	DecrementUsage(ctx context.Context, id primitive.ObjectID) error
}

type CouponService struct {
	repo CouponRepository
	now  func() time.Time
}

func NewCouponService(repo CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

// Resolve looks a coupon up by id when ref is an ObjectID, otherwise by code.
// A coupon that does not exist resolves to nil without error.
func (s *CouponService) Resolve(ctx context.Context, ref string) (*models.Coupon, error) {
	var (
		c   *models.Coupon
		err error
	)
	if id, idErr := primitive.ObjectIDFromHex(ref); idErr == nil {
		c, err = s.repo.FindByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			c, err = s.repo.FindByCode(ctx, ref)
		}
	} else {
		c, err = s.repo.FindByCode(ctx, ref)
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// Validate evaluates the coupon named by ref against a cart subtotal without
// consuming it.
func (s *CouponService) Validate(ctx context.Context, ref string, subtotal float64) (pricing.CouponResult, *models.Coupon, error) {
	c, err := s.Resolve(ctx, ref)
	if err != nil {
		return pricing.CouponResult{}, nil, err
	}
	res, err := pricing.EvaluateCoupon(c, subtotal, s.now())
	if err != nil {
		return pricing.CouponResult{}, c, err
	}
	return res, c, nil
}

// Consume records one redemption. It never pushes usedCount past usageLimit,
// even under concurrent redemptions.
func (s *CouponService) Consume(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.repo.IncrementUsage(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &pricing.Rejection{
		Reason:  pricing.ReasonUsageLimit,
		Message: "Coupon " + c.Code + " usage limit reached",
	}
}

// Release undoes a Consume whose order could not be completed.
func (s *CouponService) Release(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DecrementUsage(ctx, id)
}
