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

type CouponStore struct {
	coll *mongo.Collection
}

func (s *Store) CouponStore() *CouponStore {
	return &CouponStore{coll: s.Coupons}
}

func (cs *CouponStore) List(ctx context.Context) ([]models.Coupon, error) {
	cursor, err := cs.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find coupons: %w", err)
	}
	coupons := []models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("decode coupons: %w", err)
	}
	return coupons, nil
}

func (cs *CouponStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	var c models.Coupon
	if err := cs.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (cs *CouponStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := cs.coll.FindOne(ctx, bson.M{"code": models.NormalizeCouponCode(code)}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (cs *CouponStore) Create(ctx context.Context, c *models.Coupon) error {
	now := time.Now()
	c.ID = primitive.NewObjectID()
	c.Code = models.NormalizeCouponCode(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := cs.coll.InsertOne(ctx, c)
	return translate(err)
}

// Update applies a $set of fields and returns the updated document.
func (cs *CouponStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Coupon, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Coupon
	err := cs.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (cs *CouponStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := cs.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementUsage bumps usedCount only while it is below usageLimit. It
// reports false when the guard did not match (missing or exhausted coupon).
func (cs *CouponStore) IncrementUsage(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := cs.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("increment coupon usage: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// DecrementUsage undoes IncrementUsage when a checkout fails afterwards.
func (cs *CouponStore) DecrementUsage(ctx context.Context, id primitive.ObjectID) error {
	_, err := cs.coll.UpdateOne(ctx,
		bson.M{"_id": id, "usedCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"usedCount": -1}},
	)
	return err
}

func (cs *CouponStore) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := cs.coll.UpdateMany(ctx,
		bson.M{"isActive": true, "expiryDate": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}
	return res.ModifiedCount, nil
}
