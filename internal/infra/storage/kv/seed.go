package kv

import (
	"context"
	"errors"
)

// SeedListings writes the given listings document when the listings key is
// absent. It returns false when data already exists. The document may be a
// bare array or an envelope.
func SeedListings(ctx context.Context, store Store, raw []byte) (bool, error) {
	var recs []listingRecord
	if err := Decode("seed", SchemaListings, raw, &recs); err != nil {
		return false, err
	}
	_, err := store.Get(ctx, KeyListings)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	encoded, err := Encode(SchemaListings, recs)
	if err != nil {
		return false, err
	}
	if err := store.Apply(ctx, []Op{Put(KeyListings, encoded)}); err != nil {
		return false, err
	}
	return true, nil
}
