package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type TokenStore struct {
	coll *mongo.Collection
}

func (s *Store) TokenStore() *TokenStore {
	return &TokenStore{coll: s.Blacklist}
}

func (ts *TokenStore) Revoke(ctx context.Context, token string, exp time.Time) error {
	_, err := ts.coll.InsertOne(ctx, bson.M{"token": token, "exp": exp.Unix()})
	if err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (ts *TokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := ts.coll.FindOne(ctx, bson.M{"token": token}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired drops blacklist entries for tokens that can no longer be used.
func (ts *TokenStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := ts.coll.DeleteMany(ctx, bson.M{"exp": bson.M{"$lt": now.Unix()}})
	if err != nil {
		return 0, fmt.Errorf("purge blacklist: %w", err)
	}
	return res.DeletedCount, nil
}
