package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("kv: key not found")
	ErrCorrupt  = errors.New("kv: stored value is corrupt")
	ErrReadOnly = errors.New("kv: unit of work is read-only")
	ErrClosed   = errors.New("kv: unit of work already finished")
)

// Store is an opaque key/value byte store. Apply writes a batch atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, ops []Op) error
	Ping(ctx context.Context) error
}

// Op is a single write in a batch. A nil Value with Delete set removes the key.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
	// TTL expires the key after the given duration when positive.
	TTL time.Duration
}

func Put(key string, value []byte) Op { return Op{Key: key, Value: value} }

func Delete(key string) Op { return Op{Key: key, Delete: true} }

// CorruptError names the key whose value failed to decode or validate.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("kv: corrupt value at %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() []error { return []error{ErrCorrupt, e.Err} }

func corrupt(key string, err error) error {
	return &CorruptError{Key: key, Err: err}
}

const (
	KeyListings          = "listings"
	KeyUsers             = "users"
	KeyBookings          = "bookings"
	reviewsKeyPrefix     = "reviews_"
	sessionKeyPrefix     = "session_"
	idempotencyKeyPrefix = "idempotency_"
)

func ReviewsKey(listingID int64) string {
	return fmt.Sprintf("%s%d", reviewsKeyPrefix, listingID)
}

func SessionKey(token string) string { return sessionKeyPrefix + token }

func IdempotencyKey(key string) string { return idempotencyKeyPrefix + key }
