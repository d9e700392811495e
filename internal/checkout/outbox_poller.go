package checkout

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of kafka.Writer the poller uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPoller drains unprocessed outbox events to Kafka. Publishing happens
// at least once: an event is only marked processed after the broker accepted
// it, so a crash between the two replays the event and the consumer
// deduplicates on the checkout id.
type OutboxPoller struct {
	repo      Repository
	writer    MessageWriter
	log       *zap.Logger
	tick      time.Duration
	batchSize int64
}

func NewOutboxPoller(repo Repository, writer MessageWriter, log *zap.Logger) *OutboxPoller {
	return &OutboxPoller{
		repo:      repo,
		writer:    writer,
		log:       log,
		tick:      time.Second,
		batchSize: 100,
	}
}

// NewKafkaWriter builds the writer the poller publishes through.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.drain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) drain(ctx context.Context) {
	events, err := p.repo.UnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.Error("failed to publish outbox event",
				zap.String("event_id", event.ID), zap.Error(err))
			continue
		}

		if err := p.repo.MarkEventProcessed(ctx, event.ID); err != nil {
			p.log.Error("failed to mark outbox event processed",
				zap.String("event_id", event.ID), zap.Error(err))
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // session id, keeps per-checkout ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
