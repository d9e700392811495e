package subscribers

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("subscribers")}
}

func (m *mongoRepository) Insert(ctx context.Context, sub *Subscriber) error {
	if _, err := m.collection.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("subscribers").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create subscriber indexes: %w", err)
	}
	return nil
}
