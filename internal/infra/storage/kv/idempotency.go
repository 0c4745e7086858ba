package kv

import (
	"context"
	"errors"
	"time"

	"pgfinder/internal/app/middleware"
)

const defaultIdempotencyTTL = 7 * 24 * time.Hour

type idempotencyRecord struct {
	Key        string    `json:"key"`
	Command    string    `json:"command"`
	Payload    []byte    `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (r idempotencyRecord) validate() error {
	if r.Key == "" {
		return errors.New("idempotency record without key")
	}
	return nil
}

// IdempotencyStore keeps command results under idempotency_<key>.
type IdempotencyStore struct {
	Store Store
	TTL   time.Duration
}

func (s IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	storeKey := IdempotencyKey(key)
	raw, err := s.Store.Get(ctx, storeKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	var rec idempotencyRecord
	if err := Decode(storeKey, SchemaIdempotency, raw, &rec); err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{
		Key:        rec.Key,
		Command:    rec.Command,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt,
	}, true, nil
}

func (s IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	raw, err := Encode(SchemaIdempotency, idempotencyRecord{
		Key:        rec.Key,
		Command:    rec.Command,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt,
	})
	if err != nil {
		return err
	}
	op := Put(IdempotencyKey(rec.Key), raw)
	op.TTL = s.TTL
	if op.TTL <= 0 {
		op.TTL = defaultIdempotencyTTL
	}
	return s.Store.Apply(ctx, []Op{op})
}

var _ middleware.IdempotencyStore = IdempotencyStore{}
