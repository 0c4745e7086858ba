package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pgfinder/internal/infra/broker/kafka"
)

var ErrEventIDMissing = errors.New("inbox: event id missing")

// Store remembers which CloudEvent ids a consumer has already handled.
type Store struct {
	col      *mongo.Collection
	consumer string
	now      func() time.Time
}

func NewStore(ctx context.Context, db *mongo.Database, consumer string) *Store {
	col := db.Collection("event_inbox")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Store{col: col, consumer: consumer, now: time.Now}
}

// Seen records the id and reports whether it had been recorded before.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, ErrEventIDMissing
	}
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": s.now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

// Deduper is the part of Store the Kafka filter needs.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Filter passes each CloudEvent to next at most once. Messages that are not
// CloudEvents go through unfiltered.
func Filter(seen Deduper, next kafka.MessageHandler, logger *slog.Logger) kafka.MessageHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return kafka.HandlerFunc(func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		id := eventID(msg.Value)
		if id == "" {
			return next.Handle(ctx, msg)
		}
		dup, err := seen.Seen(ctx, id)
		if err != nil {
			return err
		}
		if dup {
			logger.Debug("duplicate event skipped", "event_id", id, "topic", msg.Topic)
			return nil
		}
		return next.Handle(ctx, msg)
	})
}

func eventID(value []byte) string {
	var evt struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(value, &evt); err != nil {
		return ""
	}
	return evt.ID
}
