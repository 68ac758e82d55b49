package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// UserMongo is a MongoDB implementation of repository.UserRepository.
// Username and email uniqueness is enforced by the indexes from EnsureIndexes.
type UserMongo struct {
	coll *mongo.Collection
}

func NewUserMongo(db *mongo.Database) *UserMongo {
	return &UserMongo{coll: db.Collection(usersCollection)}
}

var _ repository.UserRepository = (*UserMongo)(nil)

func (r *UserMongo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	doc := userDocument{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toModel(), nil
}

func (r *UserMongo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserMongo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserMongo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserMongo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toModel(), nil
}
