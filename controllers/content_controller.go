package controllers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
)

type ContentRepository[T any, PT interface {
	*T
	Touch(time.Time)
}] interface {
	List(ctx context.Context, activeOnly bool) ([]T, error)
	Create(ctx context.Context, item PT) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
)

var (
	heroSlideFields = map[string]fieldKind{
		"title": kindString, "subtitle": kindString, "image": kindString, "link": kindString,
		"buttonText": kindString, "order": kindInt, "isActive": kindBool,
	}
	galleryFields = map[string]fieldKind{
		"image": kindString, "caption": kindString, "order": kindInt, "isActive": kindBool,
	}
)

// ContentController serves an ordered list of storefront blocks such as hero
// slides or review screenshots.
type ContentController[T any, PT interface {
	*T
	Touch(time.Time)
}] struct {
	base
	repo   ContentRepository[T, PT]
	fields map[string]fieldKind
	noun   string
}

func NewHeroSlideController(repo ContentRepository[models.HeroSlide, *models.HeroSlide], timeout time.Duration) *ContentController[models.HeroSlide, *models.HeroSlide] {
	return &ContentController[models.HeroSlide, *models.HeroSlide]{base: newBase(timeout), repo: repo, fields: heroSlideFields, noun: "Slide"}
}

func NewGalleryController(repo ContentRepository[models.GalleryImage, *models.GalleryImage], timeout time.Duration) *ContentController[models.GalleryImage, *models.GalleryImage] {
	return &ContentController[models.GalleryImage, *models.GalleryImage]{base: newBase(timeout), repo: repo, fields: galleryFields, noun: "Image"}
}

// List returns every item, or only active ones with ?active=true.
func (cc *ContentController[T, PT]) List(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	ctx, cancel := cc.ctx(c)
	defer cancel()

	items, err := cc.repo.List(ctx, activeOnly)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, items)
}

func (cc *ContentController[T, PT]) Create(c *gin.Context) {
	item := PT(new(T))
	if err := c.ShouldBindJSON(item); err != nil {
		fail(c, http.StatusBadRequest, "Image is required")
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	if err := cc.repo.Create(ctx, item); err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusCreated, item)
}

func (cc *ContentController[T, PT]) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	fields, err := cc.updateFields(body)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	updated, err := cc.repo.Update(ctx, id, fields)
	if err != nil {
		respondError(c, err, cc.noun+" not found")
		return
	}
	ok(c, http.StatusOK, updated)
}

// updateFields keeps the known keys of body and checks their JSON types.
func (cc *ContentController[T, PT]) updateFields(body map[string]any) (bson.M, error) {
	fields := bson.M{}
	for key, value := range body {
		kind, known := cc.fields[key]
		if !known {
			continue
		}
		switch kind {
		case kindString:
			s, isString := value.(string)
			if !isString {
				return nil, fmt.Errorf("%s must be a string", key)
			}
			if key == "image" && s == "" {
				return nil, fmt.Errorf("image must not be empty")
			}
			fields[key] = s
		case kindInt:
			n, isNumber := value.(float64)
			if !isNumber || n != math.Trunc(n) {
				return nil, fmt.Errorf("%s must be a whole number", key)
			}
			fields[key] = int(n)
		case kindBool:
			b, isBool := value.(bool)
			if !isBool {
				return nil, fmt.Errorf("%s must be true or false", key)
			}
			fields[key] = b
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("No fields to update")
	}
	return fields, nil
}

func (cc *ContentController[T, PT]) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx, cancel := cc.ctx(c)
	defer cancel()

	if err := cc.repo.Delete(ctx, id); err != nil {
		respondError(c, err, cc.noun+" not found")
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id.Hex()})
}
