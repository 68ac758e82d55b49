// Package mongodb implements the repository interfaces on top of MongoDB.
// It is the document-store backend: one collection per entity, items keyed by owner.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartinventory/internal/repository"
)

const (
	usersCollection         = "users"
	itemsCollection         = "items"
	alertSettingsCollection = "alert_settings"
)

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
// It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_1")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_1")},
	}); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	if _, err := db.Collection(itemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name_lower", Value: 1}},
		Options: options.Index().SetName("owner_name"),
	}); err != nil {
		return fmt.Errorf("create items index: %w", err)
	}
	return nil
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "username"):
			return &repository.DuplicateError{Field: "username"}
		case strings.Contains(msg, "email"):
			return &repository.DuplicateError{Field: "email"}
		default:
			return &repository.DuplicateError{Field: "id"}
		}
	}
	return err
}
