package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/models"
	"storefront/pricing"
)

type Stats struct {
	Products         int64                        `json:"products"`
	LowStockProducts int64                        `json:"lowStockProducts"`
	OutOfStock       int64                        `json:"outOfStock"`
	Users            int64                        `json:"users"`
	Orders           int64                        `json:"orders"`
	OrdersByStatus   map[models.OrderStatus]int64 `json:"ordersByStatus"`
	Revenue          float64                      `json:"revenue"`
}

// Stats gathers the admin dashboard counters. Revenue counts delivered orders only.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  = &Stats{OrdersByStatus: map[models.OrderStatus]int64{}}
		err error
	)
	if st.Products, err = s.Products.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if st.OutOfStock, err = s.Products.CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": 0}}); err != nil {
		return nil, fmt.Errorf("count out of stock: %w", err)
	}
	low := bson.M{"stock": bson.M{"$gt": 0, "$lte": pricing.LowStockThreshold}}
	if st.LowStockProducts, err = s.Products.CountDocuments(ctx, low); err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	if st.Users, err = s.Users.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
		}}},
	}
	cursor, err := s.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	var rows []struct {
		Status models.OrderStatus `bson:"_id"`
		Count  int64              `bson:"count"`
		Total  float64            `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode order stats: %w", err)
	}
	for _, r := range rows {
		st.OrdersByStatus[r.Status] = r.Count
		st.Orders += r.Count
		if r.Status == models.OrderStatusDelivered {
			st.Revenue = r.Total
		}
	}
	return st, nil
}
