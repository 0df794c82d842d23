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

// ContentStore serves the ordered, toggleable storefront blocks (hero slides
// and the review gallery). PT is the pointer type carrying Touch.
type ContentStore[T any, PT interface {
	*T
	Touch(time.Time)
}] struct {
	coll *mongo.Collection
}

func (s *Store) HeroSlideStore() *ContentStore[models.HeroSlide, *models.HeroSlide] {
	return &ContentStore[models.HeroSlide, *models.HeroSlide]{coll: s.HeroSlides}
}

func (s *Store) GalleryStore() *ContentStore[models.GalleryImage, *models.GalleryImage] {
	return &ContentStore[models.GalleryImage, *models.GalleryImage]{coll: s.Gallery}
}

// List returns items by ascending order, only active ones when activeOnly is set.
func (cs *ContentStore[T, PT]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := cs.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", cs.coll.Name(), err)
	}
	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", cs.coll.Name(), err)
	}
	return items, nil
}

func (cs *ContentStore[T, PT]) Create(ctx context.Context, item PT) error {
	item.Touch(time.Now())
	_, err := cs.coll.InsertOne(ctx, item)
	return translate(err)
}

func (cs *ContentStore[T, PT]) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*T, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated T
	if err := cs.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated); err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (cs *ContentStore[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := cs.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", cs.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
