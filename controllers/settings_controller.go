package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (models.SiteSettings, error)
	Put(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error)
}

type SettingsController struct {
	base
	settings SettingsRepository
}

func NewSettingsController(settings SettingsRepository, timeout time.Duration) *SettingsController {
	return &SettingsController{base: newBase(timeout), settings: settings}
}

func (sc *SettingsController) Get(c *gin.Context) {
	ctx, cancel := sc.ctx(c)
	defer cancel()

	s, err := sc.settings.Get(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, s)
}

// Put merges the supplied fields into the current settings.
func (sc *SettingsController) Put(c *gin.Context) {
	var in struct {
		ShippingFee           *float64 `json:"shippingFee"`
		FreeShippingThreshold *float64 `json:"freeShippingThreshold"`
		TopBanner             *struct {
			Enabled         *bool   `json:"enabled"`
			Text            *string `json:"text"`
			BackgroundColor *string `json:"backgroundColor"`
			TextColor       *string `json:"textColor"`
		} `json:"topBanner"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if (in.ShippingFee != nil && *in.ShippingFee < 0) || (in.FreeShippingThreshold != nil && *in.FreeShippingThreshold < 0) {
		fail(c, http.StatusBadRequest, "Shipping values must not be negative")
		return
	}

	ctx, cancel := sc.ctx(c)
	defer cancel()

	s, err := sc.settings.Get(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if in.ShippingFee != nil {
		s.ShippingFee = *in.ShippingFee
	}
	if in.FreeShippingThreshold != nil {
		s.FreeShippingThreshold = *in.FreeShippingThreshold
	}
	if b := in.TopBanner; b != nil {
		if b.Enabled != nil {
			s.TopBanner.Enabled = *b.Enabled
		}
		if b.Text != nil {
			s.TopBanner.Text = *b.Text
		}
		if b.BackgroundColor != nil {
			s.TopBanner.BackgroundColor = *b.BackgroundColor
		}
		if b.TextColor != nil {
			s.TopBanner.TextColor = *b.TextColor
		}
	}

	saved, err := sc.settings.Put(ctx, s)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, saved)
}
