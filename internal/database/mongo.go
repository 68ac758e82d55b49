package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"smartinventory/internal/config"
)

// NewMongo connects to MongoDB, verifies the connection, and returns the configured database.
// The caller owns the client and must Disconnect it (db.Client()).
func NewMongo(ctx context.Context, c config.MongoDBConfig) (*mongo.Database, error) {
	if c.URI == "" {
		return nil, fmt.Errorf("invalid mongodb config: uri is required")
	}
	if c.DBName == "" {
		return nil, fmt.Errorf("invalid mongodb config: database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client.Database(c.DBName), nil
}
