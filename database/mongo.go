package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
	ErrInvalidID = errors.New("invalid id")
)

// Store owns the Mongo client and one handle per collection.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database

	Users      *mongo.Collection
	Products   *mongo.Collection
	Categories *mongo.Collection
	Coupons    *mongo.Collection
	Orders     *mongo.Collection
	Carts      *mongo.Collection
	Wishlists  *mongo.Collection
	HeroSlides *mongo.Collection
	Gallery    *mongo.Collection
	Settings   *mongo.Collection
	Blacklist  *mongo.Collection
}

func ConnectMongo(ctx context.Context, uri, dbName string) (*Store, error) {
	if uri == "" || dbName == "" {
		return nil, errors.New("mongo uri and database name are required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{Client: client, DB: client.Database(dbName)}
	s.InitCollections()
	slog.Info("connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *Store) InitCollections() {
	s.Users = s.DB.Collection("users")
	s.Products = s.DB.Collection("products")
	s.Categories = s.DB.Collection("categories")
	s.Coupons = s.DB.Collection("coupons")
	s.Orders = s.DB.Collection("orders")
	s.Carts = s.DB.Collection("carts")
	s.Wishlists = s.DB.Collection("wishlists")
	s.HeroSlides = s.DB.Collection("hero_slides")
	s.Gallery = s.DB.Collection("review_gallery")
	s.Settings = s.DB.Collection("settings")
	s.Blacklist = s.DB.Collection("blacklist_tokens")
}

// EnsureIndexes creates the unique and lookup indexes the handlers rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.Users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.Coupons, mongo.IndexModel{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.Carts, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.Wishlists, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.Orders, mongo.IndexModel{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.Orders, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		{s.Products, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
		{s.Blacklist, mongo.IndexModel{Keys: bson.D{{Key: "token", Value: 1}}}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}
