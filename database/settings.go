package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/models"
)

const siteSettingsID = "site"

type SettingsStore struct {
	coll *mongo.Collection
}

func (s *Store) SettingsStore() *SettingsStore {
	return &SettingsStore{coll: s.Settings}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (ss *SettingsStore) Get(ctx context.Context) (models.SiteSettings, error) {
	settings := models.DefaultSiteSettings()
	err := ss.coll.FindOne(ctx, bson.M{"_id": siteSettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultSiteSettings(), nil
	}
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (ss *SettingsStore) Put(ctx context.Context, settings models.SiteSettings) (models.SiteSettings, error) {
	settings.UpdatedAt = time.Now()
	_, err := ss.coll.ReplaceOne(ctx, bson.M{"_id": siteSettingsID}, settings, options.Replace().SetUpsert(true))
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}
