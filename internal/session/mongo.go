package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartinventory/internal/model"
)

const sessionsCollection = "sessions"

// MongoStore keeps sessions in a collection with a TTL index on expires_at,
// so the server reaps expired documents on its own.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore uses the sessions collection of db. Call EnsureIndexes once before serving.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(sessionsCollection)}
}

type mongoSession struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// EnsureIndexes creates the expiry TTL index.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

func (m *MongoStore) Save(ctx context.Context, s *model.Session) error {
	doc := mongoSession{Token: s.Token, UserID: s.UserID, ExpiresAt: s.ExpiresAt}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.Token}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, token string) (*model.Session, error) {
	var doc mongoSession
	err := m.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &model.Session{Token: doc.Token, UserID: doc.UserID, ExpiresAt: doc.ExpiresAt.UTC()}, nil
}

func (m *MongoStore) Delete(ctx context.Context, token string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
