package cart

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
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		client:     db.Client(),
		collection: db.Collection("carts"),
	}
}

func ownerFilter(owner Owner) bson.M {
	if owner.UserID != "" {
		return bson.M{"user_id": owner.UserID}
	}
	return bson.M{"guest_id": owner.GuestID}
}

func (m *mongoRepository) FindByOwner(ctx context.Context, owner Owner) (*Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}

	var cart Cart
	err := m.collection.FindOne(ctx, ownerFilter(owner)).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoRepository) Insert(ctx context.Context, cart *Cart) error {
	if !cart.Owner().Valid() {
		return ErrInvalidOwner
	}

	now := time.Now()
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	cart.Version = 1
	cart.CreatedAt = now
	cart.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, cart)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Another request created this owner's cart first.
			return ErrStateConflict
		}
		return fmt.Errorf("failed to insert cart: %w", err)
	}

	return nil
}

// Update replaces the document only if the stored version still matches the
// one the caller read, so concurrent mutations of the same cart cannot race
// past each other.
func (m *mongoRepository) Update(ctx context.Context, cart *Cart) error {
	next := *cart
	next.Version = cart.Version + 1
	next.UpdatedAt = time.Now()

	filter := bson.M{"_id": cart.ID, "version": cart.Version}
	res, err := m.collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}

	if res.MatchedCount == 0 {
		count, countErr := m.collection.CountDocuments(ctx, bson.M{"_id": cart.ID})
		if countErr != nil {
			return fmt.Errorf("failed to check cart existence: %w", countErr)
		}
		if count == 0 {
			return ErrCartNotFound
		}
		return ErrStateConflict
	}

	cart.Version = next.Version
	cart.UpdatedAt = next.UpdatedAt
	return nil
}

func (m *mongoRepository) Delete(ctx context.Context, owner Owner) error {
	if !owner.Valid() {
		return ErrInvalidOwner
	}

	res, err := m.collection.DeleteOne(ctx, ownerFilter(owner))
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// SaveMerge commits the merged user cart and deletes the guest record inside
// one transaction. No reader can observe the guest cart gone while the user
// cart is not yet updated, and a failed merge leaves both documents untouched.
func (m *mongoRepository) SaveMerge(ctx context.Context, userCart *Cart, guestID string) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	next := *userCart
	next.Version = userCart.Version + 1
	next.UpdatedAt = time.Now()

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": userCart.ID, "version": userCart.Version}
		res, replaceErr := m.collection.ReplaceOne(sc, filter, &next)
		if replaceErr != nil {
			return nil, fmt.Errorf("failed to update user cart: %w", replaceErr)
		}
		if res.MatchedCount == 0 {
			return nil, ErrStateConflict
		}

		del, delErr := m.collection.DeleteOne(sc, bson.M{"guest_id": guestID})
		if delErr != nil {
			return nil, fmt.Errorf("failed to delete guest cart: %w", delErr)
		}
		if del.DeletedCount == 0 {
			// Guest record vanished between read and commit.
			return nil, ErrStateConflict
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	userCart.Version = next.Version
	userCart.UpdatedAt = next.UpdatedAt
	return nil
}

// EnsureIndexes creates the ownership indexes. Both are sparse so a document
// carries only its one owner key; uniqueness enforces one cart per owner.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "guest_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := db.Collection("carts").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	return nil
}
