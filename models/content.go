package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HeroSlide struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Subtitle   string             `bson:"subtitle" json:"subtitle"`
	Image      string             `bson:"image" json:"image" binding:"required"`
	Link       string             `bson:"link" json:"link"`
	ButtonText string             `bson:"buttonText" json:"buttonText"`
	Order      int                `bson:"order" json:"order"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type GalleryImage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Image     string             `bson:"image" json:"image" binding:"required"`
	Caption   string             `bson:"caption" json:"caption"`
	Order     int                `bson:"order" json:"order"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type TopBanner struct {
	Enabled         bool   `bson:"enabled" json:"enabled"`
	Text            string `bson:"text" json:"text"`
	BackgroundColor string `bson:"backgroundColor" json:"backgroundColor"`
	TextColor       string `bson:"textColor" json:"textColor"`
}

type SiteSettings struct {
	ShippingFee           float64   `bson:"shippingFee" json:"shippingFee"`
	FreeShippingThreshold float64   `bson:"freeShippingThreshold" json:"freeShippingThreshold"`
	TopBanner             TopBanner `bson:"topBanner" json:"topBanner"`
	UpdatedAt             time.Time `bson:"updatedAt" json:"updatedAt"`
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ShippingFee:           9.99,
		FreeShippingThreshold: 100,
		TopBanner: TopBanner{
			BackgroundColor: "#000000",
			TextColor:       "#ffffff",
		},
	}
}

// Touch assigns an id on first save and refreshes the timestamps.
func (h *HeroSlide) Touch(now time.Time) {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
		h.CreatedAt = now
	}
	h.UpdatedAt = now
}

func (g *GalleryImage) Touch(now time.Time) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
		g.CreatedAt = now
	}
	g.UpdatedAt = now
}
