package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfinder/internal/app/middleware"
	domainauth "pgfinder/internal/domain/auth"
	domainuser "pgfinder/internal/domain/user"
	"pgfinder/internal/infra/storage/kv"
	"pgfinder/internal/infra/storage/memory"
)

type recordingStore struct {
	*memory.Store
	ops []kv.Op
}

func (s *recordingStore) Apply(ctx context.Context, ops []kv.Op) error {
	s.ops = append(s.ops, ops...)
	return s.Store.Apply(ctx, ops)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{Store: memory.NewStore()}
	sessions := kv.SessionStore{Store: store, Now: func() time.Time { return testNow }}

	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  "tok-1",
		Kind:   domainauth.KindStudent,
		Marker: domainauth.Marker{UserID: 7, Name: "Asha", Email: "asha@example.com", Role: domainuser.RoleStudent},
		TTL:    time.Hour,
		Now:    testNow,
	})
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, session))

	require.Len(t, store.ops, 1)
	assert.Equal(t, "session_tok-1", store.ops[0].Key)
	assert.Equal(t, time.Hour, store.ops[0].TTL)

	got, err := sessions.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session.Marker, got.Marker)
	assert.Equal(t, domainauth.KindStudent, got.Kind)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, sessions.Delete(ctx, "tok-1"))
	_, err = sessions.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStoreRejectsEmptyToken(t *testing.T) {
	sessions := kv.SessionStore{Store: memory.NewStore()}
	assert.ErrorIs(t, sessions.Save(context.Background(), &domainauth.Session{}), domainauth.ErrTokenRequired)
}

func TestIdempotencyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{Store: memory.NewStore()}
	idem := kv.IdempotencyStore{Store: store}

	_, ok, err := idem.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := middleware.IdempotencyRecord{Key: "k1", Command: "booking.request", Payload: []byte(`{"id":1}`), OccurredAt: testNow}
	require.NoError(t, idem.Save(ctx, rec))
	require.Len(t, store.ops, 1)
	assert.Equal(t, "idempotency_k1", store.ops[0].Key)
	assert.Equal(t, 7*24*time.Hour, store.ops[0].TTL)

	got, ok, err := idem.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.Command, got.Command)
	assert.JSONEq(t, `{"id":1}`, string(got.Payload))
	assert.True(t, rec.OccurredAt.Equal(got.OccurredAt))
}
