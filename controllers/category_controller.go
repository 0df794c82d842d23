package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CategoryController struct {
	base
	categories CategoryRepository
}

func NewCategoryController(categories CategoryRepository, timeout time.Duration) *CategoryController {
	return &CategoryController{base: newBase(timeout), categories: categories}
}

func (cc *CategoryController) List(c *gin.Context) {
	ctx, cancel := cc.ctx(c)
	defer cancel()

	categories, err := cc.categories.List(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, categories)
}

func (cc *CategoryController) Create(c *gin.Context) {
	var in struct {
		Name  string `json:"name" binding:"required"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		fail(c, http.StatusBadRequest, "Name is required")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	category := models.Category{Name: strings.TrimSpace(in.Name), Image: in.Image}
	if err := cc.categories.Create(ctx, &category); err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusCreated, category)
}

func (cc *CategoryController) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var in struct {
		Name  *string `json:"name"`
		Image *string `json:"image"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	fields := bson.M{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			fail(c, http.StatusBadRequest, "Name must not be empty")
			return
		}
		fields["name"] = name
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if len(fields) == 0 {
		fail(c, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	updated, err := cc.categories.Update(ctx, id, fields)
	if err != nil {
		respondError(c, err, "Category not found")
		return
	}
	ok(c, http.StatusOK, updated)
}

func (cc *CategoryController) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	if err := cc.categories.Delete(ctx, id); err != nil {
		respondError(c, err, "Category not found")
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id.Hex()})
}
