package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfinder/internal/infra/storage/kv"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "pg:"), mr
}

func TestStoreGetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "listings")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStoreApplyWritesBatchUnderPrefix(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Apply(ctx, []kv.Op{
		kv.Put("listings", []byte(`[]`)),
		kv.Put("users", []byte(`[]`)),
	}))

	assert.True(t, mr.Exists("pg:listings"))
	got, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, store.Apply(ctx, []kv.Op{kv.Delete("users")}))
	_, err = store.Get(ctx, "users")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStoreApplyHonoursTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	op := kv.Put("session_abc", []byte(`{}`))
	op.TTL = time.Minute
	require.NoError(t, store.Apply(ctx, []kv.Op{op}))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "session_abc")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStorePing(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
