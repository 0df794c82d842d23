package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/database"
)

type StatsSource interface {
	Stats(ctx context.Context) (*database.Stats, error)
}

type StatsController struct {
	base
	source StatsSource
}

func NewStatsController(source StatsSource, timeout time.Duration) *StatsController {
	return &StatsController{base: newBase(timeout), source: source}
}

func (sc *StatsController) Get(c *gin.Context) {
	ctx, cancel := sc.ctx(c)
	defer cancel()

	stats, err := sc.source.Stats(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, stats)
}
