package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("products")}
}

func (m *mongoRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (m *mongoRepository) List(ctx context.Context, filter Filter) ([]*Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Collection != "" {
		query["collections"] = filter.Collection
	}
	if filter.Gender != "" {
		query["gender"] = filter.Gender
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (m *mongoRepository) Insert(ctx context.Context, product *Product) error {
	now := time.Now()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

func (m *mongoRepository) Update(ctx context.Context, product *Product) error {
	product.UpdatedAt = time.Now()

	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}
