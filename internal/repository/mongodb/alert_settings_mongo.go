package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
)

type alertSettingsDocument struct {
	UserID      string    `bson:"_id"`
	Enabled     bool      `bson:"enabled"`
	PhoneNumber string    `bson:"phone_number"`
	LowStock    bool      `bson:"low_stock"`
	OutOfStock  bool      `bson:"out_of_stock"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d alertSettingsDocument) toModel() *model.AlertSettings {
	return &model.AlertSettings{
		UserID:      d.UserID,
		Enabled:     d.Enabled,
		PhoneNumber: d.PhoneNumber,
		LowStock:    d.LowStock,
		OutOfStock:  d.OutOfStock,
		UpdatedAt:   d.UpdatedAt,
	}
}

// AlertSettingsMongo is a MongoDB implementation of repository.AlertSettingsRepository.
// Documents are keyed by user id.
type AlertSettingsMongo struct {
	coll *mongo.Collection
}

func NewAlertSettingsMongo(db *mongo.Database) *AlertSettingsMongo {
	return &AlertSettingsMongo{coll: db.Collection(alertSettingsCollection)}
}

var _ repository.AlertSettingsRepository = (*AlertSettingsMongo)(nil)

func (r *AlertSettingsMongo) Get(ctx context.Context, userID string) (*model.AlertSettings, error) {
	var doc alertSettingsDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toModel(), nil
}

func (r *AlertSettingsMongo) Upsert(ctx context.Context, s *model.AlertSettings) (*model.AlertSettings, error) {
	doc := alertSettingsDocument{
		UserID:      s.UserID,
		Enabled:     s.Enabled,
		PhoneNumber: s.PhoneNumber,
		LowStock:    s.LowStock,
		OutOfStock:  s.OutOfStock,
		UpdatedAt:   s.UpdatedAt,
	}
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: s.UserID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, mapError(err)
	}
	return doc.toModel(), nil
}

func (r *AlertSettingsMongo) Delete(ctx context.Context, userID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}})
	return err
}

func (r *AlertSettingsMongo) ListEnabled(ctx context.Context) ([]model.AlertSettings, error) {
	filter := bson.D{
		{Key: "enabled", Value: true},
		{Key: "phone_number", Value: bson.D{{Key: "$ne", Value: ""}}},
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []alertSettingsDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.AlertSettings, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toModel())
	}
	return out, nil
}
