package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/catalog"
	"storefront/database"
	"storefront/models"
)

type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (before, after *models.Product, err error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CategoryCounter keeps Category.productCount roughly in step with products.
type CategoryCounter interface {
	AdjustCount(ctx context.Context, name string, delta int) error
}

type ProductController struct {
	base
	products   ProductRepository
	categories CategoryCounter
}

func NewProductController(products ProductRepository, categories CategoryCounter, timeout time.Duration) *ProductController {
	return &ProductController{base: newBase(timeout), products: products, categories: categories}
}

func (pc *ProductController) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	products, err := pc.products.List(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, catalog.Views(catalog.Apply(products, filter, c.Query("sort"))))
}

func filterFromQuery(c *gin.Context) (catalog.Filter, error) {
	f := catalog.Filter{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: c.Query("category"),
		Color:    c.Query("color"),
		Badge:    c.Query("badge"),
		Stock:    c.Query("stock"),
	}
	switch f.Stock {
	case "", catalog.StockIn, catalog.StockLow, catalog.StockOut:
	default:
		return f, errors.New("stock must be one of in, low, out")
	}

	var err error
	if f.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.Featured, err = queryBool(c, "featured"); err != nil {
		return f, err
	}
	if f.SpecialDiscount, err = queryBool(c, "specialDiscount"); err != nil {
		return f, err
	}
	return f, nil
}

func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(key + " must be a number")
	}
	return &v, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New(key + " must be true or false")
	}
	return &v, nil
}

func (pc *ProductController) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	p, err := pc.products.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	ok(c, http.StatusOK, catalog.NewView(*p))
}

func (pc *ProductController) Create(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "Name is required and prices and stock must not be negative")
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" {
		fail(c, http.StatusBadRequest, "Name is required")
		return
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	if err := pc.products.Create(ctx, &p); err != nil {
		respondError(c, err, "")
		return
	}
	pc.adjustCount(ctx, p.Category, 1)
	ok(c, http.StatusCreated, catalog.NewView(p))
}

type productInput struct {
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	Price           *float64  `json:"price"`
	OriginalPrice   *float64  `json:"originalPrice"`
	Image           *string   `json:"image"`
	Images          *[]string `json:"images"`
	Category        *string   `json:"category"`
	Colors          *[]string `json:"colors"`
	Badge           *string   `json:"badge"`
	Stock           *int      `json:"stock"`
	Featured        *bool     `json:"featured"`
	SpecialDiscount *bool     `json:"specialDiscount"`
}

func (in productInput) fields() (bson.M, error) {
	update := bson.M{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errors.New("Name must not be empty")
		}
		update["name"] = name
	}
	if in.Description != nil {
		update["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, errors.New("Price must not be negative")
		}
		update["price"] = *in.Price
	}
	if in.OriginalPrice != nil {
		if *in.OriginalPrice < 0 {
			return nil, errors.New("Original price must not be negative")
		}
		update["originalPrice"] = *in.OriginalPrice
	}
	if in.Image != nil {
		update["image"] = *in.Image
	}
	if in.Images != nil {
		update["images"] = *in.Images
	}
	if in.Category != nil {
		update["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Colors != nil {
		update["colors"] = *in.Colors
	}
	if in.Badge != nil {
		update["badge"] = *in.Badge
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, errors.New("Stock must not be negative")
		}
		update["stock"] = *in.Stock
	}
	if in.Featured != nil {
		update["featured"] = *in.Featured
	}
	if in.SpecialDiscount != nil {
		update["specialDiscount"] = *in.SpecialDiscount
	}
	if len(update) == 0 {
		return nil, errors.New("No fields to update")
	}
	return update, nil
}

func (pc *ProductController) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	fields, err := in.fields()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	before, after, err := pc.products.Update(ctx, id, fields)
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	if before.Category != after.Category {
		pc.adjustCount(ctx, before.Category, -1)
		pc.adjustCount(ctx, after.Category, 1)
	}
	ok(c, http.StatusOK, catalog.NewView(*after))
}

func (pc *ProductController) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := pc.ctx(c)
	defer cancel()

	deleted, err := pc.products.Delete(ctx, id)
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	pc.adjustCount(ctx, deleted.Category, -1)
	ok(c, http.StatusOK, gin.H{"id": deleted.ID.Hex()})
}

func (pc *ProductController) adjustCount(ctx context.Context, category string, delta int) {
	if pc.categories == nil {
		return
	}
	if err := pc.categories.AdjustCount(ctx, category, delta); err != nil {
		slog.Warn("adjust category count", "category", category, "delta", delta, "error", err)
	}
}

func (pc *ProductController) Export(c *gin.Context) {
	ctx, cancel := pc.ctx(c)
	defer cancel()

	products, err := pc.products.List(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	if err := catalog.WriteWorkbook(c.Writer, products); err != nil {
		slog.Error("write products workbook", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to write Excel file")
	}
}

// Import creates or updates products from an uploaded workbook in the export
// layout. Rows naming an existing id update that product.
func (pc *ProductController) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Excel file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to open Excel file")
		return
	}
	defer file.Close()

	rows, skipped, err := catalog.ReadWorkbook(file, header.Size)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout*time.Duration(max(1, len(rows)/20+1)))
	defer cancel()

	created, updated := 0, 0
	for _, row := range rows {
		p := row.Product
		if id, err := primitive.ObjectIDFromHex(row.ID); err == nil {
			fields := bson.M{
				"name": p.Name, "description": p.Description, "price": p.Price,
				"originalPrice": p.OriginalPrice, "category": p.Category, "colors": p.Colors,
				"badge": p.Badge, "stock": p.Stock, "featured": p.Featured,
				"specialDiscount": p.SpecialDiscount, "image": p.Image,
			}
			before, after, err := pc.products.Update(ctx, id, fields)
			if err == nil {
				if before.Category != after.Category {
					pc.adjustCount(ctx, before.Category, -1)
					pc.adjustCount(ctx, after.Category, 1)
				}
				updated++
				continue
			}
			if !errors.Is(err, database.ErrNotFound) {
				respondError(c, err, "")
				return
			}
		}
		if err := pc.products.Create(ctx, &p); err != nil {
			respondError(c, err, "")
			return
		}
		pc.adjustCount(ctx, p.Category, 1)
		created++
	}
	ok(c, http.StatusOK, gin.H{"created": created, "updated": updated, "skippedRows": skipped})
}
