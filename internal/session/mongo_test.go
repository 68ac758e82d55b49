package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"smartinventory/internal/model"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, NewMongoStore(mt.DB).EnsureIndexes(ctx))
	})

	mt.Run("save", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := NewMongoStore(mt.DB).Save(ctx, &model.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})

		assert.NoError(mt, err)
	})

	mt.Run("get", func(mt *mtest.T) {
		exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.sessions", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "tok"},
			{Key: "user_id", Value: "u1"},
			{Key: "expires_at", Value: exp},
		}))

		s, err := NewMongoStore(mt.DB).Get(ctx, "tok")

		require.NoError(mt, err)
		assert.Equal(mt, "u1", s.UserID)
		assert.True(mt, exp.Equal(s.ExpiresAt))
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.sessions", mtest.FirstBatch))

		_, err := NewMongoStore(mt.DB).Get(ctx, "nope")

		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, NewMongoStore(mt.DB).Delete(ctx, "tok"))
	})
}
