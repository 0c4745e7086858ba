package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pgfinder/internal/infra/storage/kv"
)

const kvCollection = "app_kv"

type kvDocument struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	UpdatedAt time.Time  `bson:"updated_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// KVStore keeps one document per key. With Transactions set, batches run
// inside a session transaction (replica set required); otherwise a single
// ordered bulk write is used.
type KVStore struct {
	col          *mongo.Collection
	Transactions bool
	now          func() time.Time
}

func NewKVStore(ctx context.Context, db *mongo.Database, transactions bool) (*KVStore, error) {
	col := db.Collection(kvCollection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("mongo: kv ttl index: %w", err)
	}
	return &KVStore{col: col, Transactions: transactions, now: time.Now}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: get %s: %w", key, err)
	}
	// the TTL monitor runs once a minute
	if doc.ExpiresAt != nil && !s.now().Before(*doc.ExpiresAt) {
		return nil, kv.ErrNotFound
	}
	return doc.Value, nil
}

func (s *KVStore) Apply(ctx context.Context, ops []kv.Op) error {
	if len(ops) == 0 {
		return nil
	}
	models := s.writeModels(ops)
	if !s.Transactions {
		_, err := s.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return fmt.Errorf("mongo: apply %d ops: %w", len(ops), err)
		}
		return nil
	}
	session, err := s.col.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return s.col.BulkWrite(sc, models, options.BulkWrite().SetOrdered(true))
	})
	if err != nil {
		return fmt.Errorf("mongo: apply %d ops in transaction: %w", len(ops), err)
	}
	return nil
}

func (s *KVStore) writeModels(ops []kv.Op) []mongo.WriteModel {
	now := s.now().UTC()
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		if op.Delete {
			models = append(models, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": op.Key}))
			continue
		}
		doc := kvDocument{Key: op.Key, Value: op.Value, UpdatedAt: now}
		if op.TTL > 0 {
			expires := now.Add(op.TTL)
			doc.ExpiresAt = &expires
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": op.Key}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return models
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

var _ kv.Store = (*KVStore)(nil)
