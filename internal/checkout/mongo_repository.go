package checkout

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
	client   *mongo.Client
	sessions *mongo.Collection
	outbox   *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		client:   db.Client(),
		sessions: db.Collection("checkout_sessions"),
		outbox:   db.Collection("checkout_outbox"),
	}
}

func (m *mongoRepository) Insert(ctx context.Context, session *Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := m.sessions.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert checkout session: %w", err)
	}
	return nil
}

func (m *mongoRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	var session Session
	err := m.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	return &session, nil
}

func (m *mongoRepository) FindLatestOpen(ctx context.Context, userID string) (*Session, error) {
	filter := bson.M{"user_id": userID, "is_finalized": false}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var session Session
	err := m.sessions.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoOpenSession
		}
		return nil, fmt.Errorf("failed to get open checkout session: %w", err)
	}
	return &session, nil
}

func (m *mongoRepository) UpdatePayment(ctx context.Context, session *Session) error {
	now := time.Now()
	// Guarded on the session still being open: a concurrent finalize wins
	// and this write becomes a no-op conflict.
	filter := bson.M{"_id": session.ID, "is_finalized": false}
	update := bson.M{"$set": bson.M{
		"is_paid":         session.IsPaid,
		"payment_status":  session.PaymentStatus,
		"payment_details": session.PaymentDetails,
		"paid_at":         session.PaidAt,
		"updated_at":      now,
	}}

	res, err := m.sessions.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStateConflict
	}

	session.UpdatedAt = now
	return nil
}

func (m *mongoRepository) Finalize(ctx context.Context, sessionID string, finalizedAt time.Time, event *OutboxEvent) error {
	mongoSession, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer mongoSession.EndSession(ctx)

	_, err = mongoSession.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": sessionID, "is_paid": true, "is_finalized": false}
		update := bson.M{"$set": bson.M{
			"is_finalized": true,
			"finalized_at": finalizedAt,
			"updated_at":   finalizedAt,
		}}

		res, updateErr := m.sessions.UpdateOne(sc, filter, update)
		if updateErr != nil {
			return nil, fmt.Errorf("failed to finalize session: %w", updateErr)
		}
		if res.MatchedCount == 0 {
			return nil, ErrStateConflict
		}

		if _, insertErr := m.outbox.InsertOne(sc, event); insertErr != nil {
			return nil, fmt.Errorf("failed to append outbox event: %w", insertErr)
		}

		return nil, nil
	})
	return err
}

func (m *mongoRepository) UnprocessedEvents(ctx context.Context, limit int64) ([]*OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := m.outbox.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*OutboxEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}
	return events, nil
}

func (m *mongoRepository) MarkEventProcessed(ctx context.Context, eventID string) error {
	now := time.Now()
	update := bson.M{"$set": bson.M{"processed": true, "processed_at": now}}

	res, err := m.outbox.UpdateOne(ctx, bson.M{"_id": eventID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox event %s not found", eventID)
	}
	return nil
}

// EnsureIndexes backs the payment-target query (latest open session per user)
// and the outbox poll.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("checkout_sessions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "is_finalized", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create checkout indexes: %w", err)
	}

	_, err = db.Collection("checkout_outbox").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "processed", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}

	return nil
}
