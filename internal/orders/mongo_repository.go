package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("orders")}
}

func (m *mongoRepository) Insert(ctx context.Context, order *Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *mongoRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	var order Order
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoRepository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	return m.list(ctx, bson.M{"user_id": userID})
}

func (m *mongoRepository) ListAll(ctx context.Context) ([]*Order, error) {
	return m.list(ctx, bson.M{})
}

func (m *mongoRepository) list(ctx context.Context, filter bson.M) ([]*Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (m *mongoRepository) Update(ctx context.Context, order *Order) error {
	order.UpdatedAt = time.Now()

	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// EnsureIndexes enforces one order per checkout session.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "checkout_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
