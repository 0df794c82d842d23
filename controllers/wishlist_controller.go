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
)

type WishlistController struct {
	base
	storage  CartStorage
	products ProductFinder
}

func NewWishlistController(storage CartStorage, products ProductFinder, timeout time.Duration) *WishlistController {
	return &WishlistController{base: newBase(timeout), storage: storage, products: products}
}

type wishlistView struct {
	Items      []models.WishlistEntry `json:"items"`
	TotalItems int                    `json:"totalItems"`
}

func (wc *WishlistController) load(ctx context.Context, userID primitive.ObjectID) (*cart.Wishlist, error) {
	entries, err := wc.storage.LoadWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.WishlistFromItems(entries), nil
}

func (wc *WishlistController) save(ctx context.Context, c *gin.Context, userID primitive.ObjectID, w *cart.Wishlist, extra gin.H) {
	if err := wc.storage.SaveWishlist(ctx, userID, w.Items()); err != nil {
		respondError(c, err, "")
		return
	}
	data := gin.H{"items": w.Items(), "totalItems": w.TotalItems()}
	for k, v := range extra {
		data[k] = v
	}
	ok(c, http.StatusOK, data)
}

func (wc *WishlistController) Get(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := wc.ctx(c)
	defer cancel()

	w, err := wc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, wishlistView{Items: w.Sorted(c.Query("sort")), TotalItems: w.TotalItems()})
}

func (wc *WishlistController) entry(ctx context.Context, c *gin.Context) (models.WishlistEntry, bool) {
	var in struct {
		ID        string `json:"id"`
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return models.WishlistEntry{}, false
	}
	if in.ID == "" {
		in.ID = in.ProductID
	}
	id, err := database.ParseID(in.ID)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid product id")
		return models.WishlistEntry{}, false
	}
	p, err := wc.products.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "Product not found")
		return models.WishlistEntry{}, false
	}
	return models.WishlistEntry{ID: p.ID.Hex(), Name: p.Name, Price: p.Price, Image: p.Image}, true
}

func (wc *WishlistController) Add(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := wc.ctx(c)
	defer cancel()

	item, valid := wc.entry(ctx, c)
	if !valid {
		return
	}
	w, err := wc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	added := w.Add(item)
	wc.save(ctx, c, userID, w, gin.H{"added": added})
}

func (wc *WishlistController) Toggle(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := wc.ctx(c)
	defer cancel()

	item, valid := wc.entry(ctx, c)
	if !valid {
		return
	}
	w, err := wc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	inWishlist := w.Toggle(item)
	wc.save(ctx, c, userID, w, gin.H{"inWishlist": inWishlist})
}

func (wc *WishlistController) Remove(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	ctx, cancel := wc.ctx(c)
	defer cancel()

	w, err := wc.load(ctx, userID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if !w.Remove(productID.Hex()) {
		fail(c, http.StatusNotFound, "Item not in wishlist")
		return
	}
	wc.save(ctx, c, userID, w, nil)
}

func (wc *WishlistController) Clear(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	ctx, cancel := wc.ctx(c)
	defer cancel()

	wc.save(ctx, c, userID, cart.NewWishlist(), nil)
}
