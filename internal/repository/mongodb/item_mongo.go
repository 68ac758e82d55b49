package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
)

type itemDocument struct {
	ID                string               `bson:"_id"`
	OwnerID           string               `bson:"owner_id"`
	Name              string               `bson:"name"`
	NameLower         string               `bson:"name_lower"`
	Description       string               `bson:"description"`
	Category          string               `bson:"category"`
	Quantity          int                  `bson:"quantity"`
	Price             primitive.Decimal128 `bson:"price"`
	LowStockThreshold int                  `bson:"low_stock_threshold"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

func toItemDocument(it *model.Item) (itemDocument, error) {
	price, err := primitive.ParseDecimal128(it.Price.String())
	if err != nil {
		return itemDocument{}, fmt.Errorf("encode price: %w", err)
	}
	return itemDocument{
		ID:                it.ID,
		OwnerID:           it.OwnerID,
		Name:              it.Name,
		NameLower:         strings.ToLower(it.Name),
		Description:       it.Description,
		Category:          it.Category,
		Quantity:          it.Quantity,
		Price:             price,
		LowStockThreshold: it.LowStockThreshold,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}, nil
}

func (d itemDocument) toModel() (*model.Item, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	return &model.Item{
		ID:                d.ID,
		OwnerID:           d.OwnerID,
		Name:              d.Name,
		Description:       d.Description,
		Category:          d.Category,
		Quantity:          d.Quantity,
		Price:             price,
		LowStockThreshold: d.LowStockThreshold,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

// ItemMongo is a MongoDB implementation of repository.ItemRepository.
type ItemMongo struct {
	coll *mongo.Collection
}

// NewItemMongo creates a new ItemMongo repository on the items collection of db.
func NewItemMongo(db *mongo.Database) *ItemMongo {
	return &ItemMongo{coll: db.Collection(itemsCollection)}
}

var _ repository.ItemRepository = (*ItemMongo)(nil)

func (r *ItemMongo) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	doc, err := toItemDocument(item)
	if err != nil {
		return nil, err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toModel()
}

func (r *ItemMongo) FindByID(ctx context.Context, ownerID, id string) (*model.Item, error) {
	var doc itemDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}).Decode(&doc)
	if err != nil {
		return nil, mapError(err)
	}
	return doc.toModel()
}

func (r *ItemMongo) ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_lower", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "owner_id", Value: ownerID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]model.Item, 0)
	for cur.Next(ctx) {
		var doc itemDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		it, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemMongo) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	doc, err := toItemDocument(item)
	if err != nil {
		return nil, err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: doc.Name},
		{Key: "name_lower", Value: doc.NameLower},
		{Key: "description", Value: doc.Description},
		{Key: "category", Value: doc.Category},
		{Key: "quantity", Value: doc.Quantity},
		{Key: "price", Value: doc.Price},
		{Key: "low_stock_threshold", Value: doc.LowStockThreshold},
		{Key: "updated_at", Value: doc.UpdatedAt},
	}}}

	var stored itemDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: item.ID}, {Key: "owner_id", Value: item.OwnerID}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return nil, mapError(err)
	}
	return stored.toModel()
}

func (r *ItemMongo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
