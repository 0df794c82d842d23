// Package jobs runs the periodic housekeeping that keeps denormalised and
// time-bound data in step.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

const (
	ScheduleExpireCoupons   = "@midnight"
	SchedulePurgeBlacklist  = "@hourly"
	ScheduleRecountCategory = "0 0 3 * * *"

	jobTimeout = 2 * time.Minute
)

type CouponExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type ProductCounter interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type CategoryRecounter interface {
	Recount(ctx context.Context, counts map[string]int) (int, error)
}

type Runner struct {
	Coupons    CouponExpirer
	Tokens     TokenPurger
	Products   ProductCounter
	Categories CategoryRecounter

	now func() time.Time
}

func NewRunner(coupons CouponExpirer, tokens TokenPurger, products ProductCounter, categories CategoryRecounter) *Runner {
	return &Runner{Coupons: coupons, Tokens: tokens, Products: products, Categories: categories, now: time.Now}
}

func (r *Runner) ExpireCoupons(ctx context.Context) error {
	n, err := r.Coupons.DeactivateExpired(ctx, r.now())
	if err != nil {
		return err
	}
	slog.Info("expired coupons deactivated", "count", n)
	return nil
}

func (r *Runner) PurgeBlacklist(ctx context.Context) error {
	n, err := r.Tokens.PurgeExpired(ctx, r.now())
	if err != nil {
		return err
	}
	slog.Debug("blacklisted tokens purged", "count", n)
	return nil
}

// RecountCategories repairs drift in Category.productCount.
func (r *Runner) RecountCategories(ctx context.Context) error {
	counts, err := r.Products.CountByCategory(ctx)
	if err != nil {
		return err
	}
	fixed, err := r.Categories.Recount(ctx, counts)
	if err != nil {
		return err
	}
	slog.Info("category counts recomputed", "fixed", fixed)
	return nil
}

// Start registers every job on a new scheduler and starts it. Stop the
// returned scheduler on shutdown.
func (r *Runner) Start() (*cron.Cron, error) {
	c := cron.New()
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"expire-coupons", ScheduleExpireCoupons, r.ExpireCoupons},
		{"purge-blacklist", SchedulePurgeBlacklist, r.PurgeBlacklist},
		{"recount-categories", ScheduleRecountCategory, r.RecountCategories},
	}
	for _, j := range jobs {
		j := j
		err := c.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := j.run(ctx); err != nil {
				slog.Error("scheduled job failed", "job", j.name, "error", err)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	c.Start()
	return c, nil
}
