package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name" binding:"required"`
	Description     string             `bson:"description" json:"description"`
	Price           float64            `bson:"price" json:"price" binding:"gte=0"`
	OriginalPrice   float64            `bson:"originalPrice" json:"originalPrice" binding:"gte=0"`
	Image           string             `bson:"image" json:"image"`
	Images          []string           `bson:"images" json:"images"`
	Category        string             `bson:"category" json:"category"`
	Colors          []string           `bson:"colors" json:"colors"`
	Badge           string             `bson:"badge" json:"badge"`
	Stock           int                `bson:"stock" json:"stock" binding:"gte=0"`
	Featured        bool               `bson:"featured" json:"featured"`
	SpecialDiscount bool               `bson:"specialDiscount" json:"specialDiscount"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" binding:"required"`
	Image        string             `bson:"image" json:"image"`
	ProductCount int                `bson:"productCount" json:"productCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
