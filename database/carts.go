package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/models"
)

// CartStore persists the per-user cart and wishlist item lists.
type CartStore struct {
	carts     *mongo.Collection
	wishlists *mongo.Collection
}

func (s *Store) CartStore() *CartStore {
	return &CartStore{carts: s.Carts, wishlists: s.Wishlists}
}

func (cs *CartStore) LoadCart(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	var doc models.StoredCart
	err := cs.carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return doc.Items, nil
}

func (cs *CartStore) SaveCart(ctx context.Context, userID primitive.ObjectID, items []models.CartLine) error {
	if items == nil {
		items = []models.CartLine{}
	}
	_, err := cs.carts.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (cs *CartStore) LoadWishlist(ctx context.Context, userID primitive.ObjectID) ([]models.WishlistEntry, error) {
	var doc models.StoredWishlist
	err := cs.wishlists.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	return doc.Items, nil
}

func (cs *CartStore) SaveWishlist(ctx context.Context, userID primitive.ObjectID, items []models.WishlistEntry) error {
	if items == nil {
		items = []models.WishlistEntry{}
	}
	_, err := cs.wishlists.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}
