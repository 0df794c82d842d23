package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/cart"
	"storefront/database"
	"storefront/models"
	"storefront/services"
)

// CartStorage persists the per-user cart and wishlist item lists.
type CartStorage interface {
	LoadCart(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error)
	SaveCart(ctx context.Context, userID primitive.ObjectID, items []models.CartLine) error
	LoadWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistEntry, error)
	SaveWishlist(ctx context.Context, userID primitive.ObjectID, items []models.WishlistEntry) error
}

type ProductFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type CartController struct {
	base
	storage  CartStorage
	products ProductFinder
	orders   *services.OrderService
}

func NewCartController(storage CartStorage, products ProductFinder, orders *services.OrderService, timeout time.Duration) *CartController {
	return &CartController{base: newBase(timeout), storage: storage, products: products, orders: orders}
}

func (cc *CartController) load(ctx context.Context, userID primitive.ObjectID) (*cart.Cart, error) {
	lines, err := cc.storage.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.FromItems(lines), nil
}

func (cc *CartController) save(ctx context.Context, c *gin.Context, userID primitive.ObjectID, crt *cart.Cart) {
	if err := cc.storage.SaveCart(ctx, userID, crt.Items()); err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, crt.Snapshot())
}

func (cc *CartController) Get(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	crt, err := cc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, crt.Snapshot())
}

func (cc *CartController) Add(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	var in struct {
		ID        string `json:"id"`
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if in.ID == "" {
		in.ID = in.ProductID
	}
	productID, err := database.ParseID(in.ID)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid product id")
		return
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	product, err := cc.products.FindByID(ctx, productID)
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	crt, err := cc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if crt.Quantity(productID.Hex())+in.Quantity > product.Stock {
		fail(c, http.StatusBadRequest, "Quantity exceeds available stock")
		return
	}

	crt.Add(models.CartLine{
		ID:    product.ID.Hex(),
		Name:  product.Name,
		Price: product.Price,
		Image: product.Image,
	}, in.Quantity)
	cc.save(ctx, c, userID, crt)
}

func (cc *CartController) Update(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	var in struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "quantity is required")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	crt, err := cc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if *in.Quantity > 0 {
		product, err := cc.products.FindByID(ctx, productID)
		if err != nil {
			respondError(c, err, "Product not found")
			return
		}
		if *in.Quantity > product.Stock {
			fail(c, http.StatusBadRequest, "Quantity exceeds available stock")
			return
		}
	}
	if !crt.SetQuantity(productID.Hex(), *in.Quantity) {
		fail(c, http.StatusNotFound, "Item not in cart")
		return
	}
	cc.save(ctx, c, userID, crt)
}

func (cc *CartController) Remove(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	crt, err := cc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if !crt.Remove(productID.Hex()) {
		fail(c, http.StatusNotFound, "Item not in cart")
		return
	}
	cc.save(ctx, c, userID, crt)
}

func (cc *CartController) Clear(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	cc.save(ctx, c, userID, cart.New())
}

// Summary prices the stored cart with the current shipping settings and an
// optional ?coupon= code.
func (cc *CartController) Summary(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	summary, err := cc.orders.Summary(ctx, userID, c.Query("coupon"))
	if err != nil {
		respondError(c, err, "Coupon not found")
		return
	}
	ok(c, http.StatusOK, summary)
}
