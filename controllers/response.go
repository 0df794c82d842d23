package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/integrations"
	"storefront/middleware"
	"storefront/models"
	"storefront/pricing"
	"storefront/services"
)

// DefaultTimeout bounds every database round trip made by a handler.
const DefaultTimeout = 5 * time.Second

type base struct {
	timeout time.Duration
}

func newBase(timeout time.Duration) base {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return base{timeout: timeout}
}

func (b base) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), b.timeout)
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// respondError maps domain errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a generic 500.
func respondError(c *gin.Context, err error, notFound string) {
	var rejection *pricing.Rejection
	switch {
	case errors.As(err, &rejection):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": rejection.Message, "reason": rejection.Reason})
	case errors.Is(err, database.ErrNotFound):
		fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, database.ErrInvalidID):
		fail(c, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, database.ErrDuplicate):
		fail(c, http.StatusConflict, "Already exists")
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, services.ErrInsufficientStock):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmptyCart):
		fail(c, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, integrations.ErrNotConfigured):
		fail(c, http.StatusServiceUnavailable, "Service not configured")
	case errors.Is(err, context.DeadlineExceeded):
		slog.Error("request timed out", "path", c.FullPath(), "error", err)
		fail(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := database.ParseID(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUser returns the authenticated user's id.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid user")
		return primitive.NilObjectID, false
	}
	return id, true
}
