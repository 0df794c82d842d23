package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/models"
)

type CategoryStore struct {
	coll *mongo.Collection
}

func (s *Store) CategoryStore() *CategoryStore {
	return &CategoryStore{coll: s.Categories}
}

func (cs *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	cursor, err := cs.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (cs *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	now := time.Now()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := cs.coll.InsertOne(ctx, c)
	return translate(err)
}

func (cs *CategoryStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Category
	if err := cs.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated); err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (cs *CategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := cs.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustCount moves the denormalised productCount of the named category.
// Unknown names are ignored; the counter is best effort.
func (cs *CategoryStore) AdjustCount(ctx context.Context, name string, delta int) error {
	if name == "" || delta == 0 {
		return nil
	}
	_, err := cs.coll.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"productCount": delta}},
	)
	return err
}

// Recount overwrites every productCount from counts, keyed by category name.
func (cs *CategoryStore) Recount(ctx context.Context, counts map[string]int) (int, error) {
	categories, err := cs.List(ctx)
	if err != nil {
		return 0, err
	}
	fixed := 0
	for _, c := range categories {
		want := counts[c.Name]
		if c.ProductCount == want {
			continue
		}
		if _, err := cs.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{"productCount": want}}); err != nil {
			return fixed, fmt.Errorf("recount category %s: %w", c.Name, err)
		}
		fixed++
	}
	return fixed, nil
}
