package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/database"
	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

type OrderRepository interface {
	List(ctx context.Context, status models.OrderStatus, userID primitive.ObjectID) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Delete(ctx context.Context, ids ...primitive.ObjectID) (int64, error)
}

type OrderController struct {
	base
	orders   OrderRepository
	svc      *services.OrderService
	notifier services.Notifier
}

func NewOrderController(orders OrderRepository, svc *services.OrderService, notifier services.Notifier, timeout time.Duration) *OrderController {
	if notifier == nil {
		notifier = services.NopNotifier{}
	}
	return &OrderController{base: newBase(timeout), orders: orders, svc: svc, notifier: notifier}
}

func (oc *OrderController) Checkout(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	var in services.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "customer_name, a valid email and shipping_address are required")
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.svc.Checkout(ctx, userID, in)
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	ok(c, http.StatusCreated, order)
}

func (oc *OrderController) Mine(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	orders, err := oc.orders.List(ctx, "", userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, orders)
}

func (oc *OrderController) CancelMine(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.svc.Cancel(ctx, id, userID)
	if err != nil {
		respondError(c, err, "Order not found")
		return
	}
	ok(c, http.StatusOK, order)
}

func (oc *OrderController) List(c *gin.Context) {
	var status models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s, err := models.ParseOrderStatus(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid status value")
			return
		}
		status = s
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	orders, err := oc.orders.List(ctx, status, primitive.NilObjectID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, orders)
}

// Get returns an order to an admin or to the customer who placed it.
func (oc *OrderController) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.orders.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "Order not found")
		return
	}
	if !middleware.IsAdmin(c) && order.UserID.Hex() != middleware.UserID(c) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	ok(c, http.StatusOK, order)
}

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "status is required")
		return
	}
	status, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid status value")
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		respondError(c, err, "Order not found")
		return
	}
	ok(c, http.StatusOK, order)
}

type bulkResult struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BulkUpdateStatus applies one status to many orders. Each order is moved
// independently and reported on its own; one failure does not stop the rest.
func (oc *OrderController) BulkUpdateStatus(c *gin.Context) {
	var in struct {
		IDs    []string `json:"ids" binding:"required,min=1"`
		Status string   `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "ids and status are required")
		return
	}
	status, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid status value")
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	results := make([]bulkResult, 0, len(in.IDs))
	updated := 0
	for _, raw := range in.IDs {
		res := bulkResult{ID: raw}
		id, err := database.ParseID(raw)
		if err != nil {
			res.Error = "Invalid id"
			results = append(results, res)
			continue
		}
		order, err := oc.svc.UpdateStatus(ctx, id, status)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Status = string(order.Status)
			updated++
		}
		results = append(results, res)
	}
	ok(c, http.StatusOK, gin.H{"updated": updated, "results": results})
}

func (oc *OrderController) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := oc.ctx(c)
	defer cancel()

	n, err := oc.orders.Delete(ctx, id)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if n == 0 {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	oc.notifier.Broadcast(services.EventOrderDeleted, gin.H{"ids": []string{id.Hex()}})
	ok(c, http.StatusOK, gin.H{"deleted": n})
}

func (oc *OrderController) BulkDelete(c *gin.Context) {
	var in struct {
		IDs []string `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "ids are required")
		return
	}
	ids := make([]primitive.ObjectID, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id, err := database.ParseID(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid id "+raw)
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	n, err := oc.orders.Delete(ctx, ids...)
	if err != nil {
		respondError(c, err, "")
		return
	}
	oc.notifier.Broadcast(services.EventOrderDeleted, gin.H{"ids": in.IDs})
	ok(c, http.StatusOK, gin.H{"deleted": n})
}
