package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoredCart is the per-user cart document. Totals are never stored.
type StoredCart struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Items  []CartLine         `bson:"items" json:"items"`
}

type CartLine struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
}

type StoredWishlist struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Items  []WishlistEntry    `bson:"items" json:"items"`
}

type WishlistEntry struct {
	ID      string    `bson:"id" json:"id"`
	Name    string    `bson:"name" json:"name"`
	Price   float64   `bson:"price" json:"price"`
	Image   string    `bson:"image,omitempty" json:"image,omitempty"`
	AddedAt time.Time `bson:"addedAt" json:"addedAt"`
}
