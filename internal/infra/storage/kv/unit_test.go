package kv_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "pgfinder/internal/app/outbox"
	"pgfinder/internal/app/uow"
	domainlistings "pgfinder/internal/domain/listings"
	"pgfinder/internal/infra/storage/kv"
	"pgfinder/internal/infra/storage/memory"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type failingStore struct {
	*memory.Store
	err error
}

func (s failingStore) Apply(context.Context, []kv.Op) error { return s.err }

func newListing(t *testing.T, id domainlistings.ListingID, name string) *domainlistings.Listing {
	t.Helper()
	l, err := domainlistings.NewListing(id, domainlistings.Details{
		Name:           name,
		City:           "Bangalore",
		Area:           "Koramangala",
		Price:          12000,
		Gender:         domainlistings.GenderBoys,
		Amenities:      []string{"wifi"},
		AvailableRooms: 2,
	}, testNow)
	require.NoError(t, err)
	return l
}

func begin(t *testing.T, f *kv.Factory, readOnly bool) uow.UnitOfWork {
	t.Helper()
	unit, err := f.Begin(context.Background(), uow.TxOptions{ReadOnly: readOnly})
	require.NoError(t, err)
	return unit
}

func TestCommitAppliesWritesAndReleasesEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	relay := memory.NewOutbox()
	f := &kv.Factory{Store: store, Relay: relay}

	unit := begin(t, f, false)
	require.NoError(t, unit.Listings().Save(ctx, newListing(t, 1, "Comfort Stay")))
	require.NoError(t, unit.Outbox().Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "listing.created"}))
	assert.Empty(t, relay.Pending())
	require.NoError(t, unit.Commit(ctx))

	raw, err := store.Get(ctx, kv.KeyListings)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"schema":"listings"`)
	assert.Contains(t, string(raw), `"location":"Bangalore"`)
	require.Len(t, relay.Pending(), 1)
	assert.Equal(t, "e1", relay.Pending()[0].ID)

	reader := begin(t, f, true)
	got, err := reader.Listings().ByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Comfort Stay", got.Name)
	assert.Equal(t, domainlistings.Vacant, got.Status)
	require.NoError(t, reader.Commit(ctx))
}

func TestRollbackLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	relay := memory.NewOutbox()
	f := &kv.Factory{Store: store, Relay: relay}

	unit := begin(t, f, false)
	require.NoError(t, unit.Listings().Save(ctx, newListing(t, 1, "Comfort Stay")))
	require.NoError(t, unit.Outbox().Add(ctx, appoutbox.EventRecord{ID: "e1"}))
	require.NoError(t, unit.Rollback(ctx))

	assert.Empty(t, store.Keys())
	assert.Empty(t, relay.Pending())
}

func TestFailedApplyReleasesNoEvents(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	relay := memory.NewOutbox()
	f := &kv.Factory{Store: failingStore{Store: memory.NewStore(), err: boom}, Relay: relay}

	unit := begin(t, f, false)
	require.NoError(t, unit.Listings().Save(ctx, newListing(t, 1, "Comfort Stay")))
	require.NoError(t, unit.Outbox().Add(ctx, appoutbox.EventRecord{ID: "e1"}))

	assert.ErrorIs(t, unit.Commit(ctx), boom)
	assert.Empty(t, relay.Pending())
}

func TestUnitStagesAcrossCollectionsInOneBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	f := &kv.Factory{Store: store}

	unit := begin(t, f, false)
	require.NoError(t, unit.Listings().Save(ctx, newListing(t, 1, "A")))
	require.NoError(t, unit.Listings().Save(ctx, newListing(t, 2, "B")))
	require.NoError(t, unit.Listings().Delete(ctx, 1))

	// staged writes are visible inside the unit only
	list, err := unit.Listings().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, store.Keys())

	require.NoError(t, unit.Commit(ctx))
	assert.Equal(t, []string{kv.KeyListings}, store.Keys())
}

func TestRepositoriesReturnCopies(t *testing.T) {
	ctx := context.Background()
	f := &kv.Factory{Store: memory.NewStore()}

	unit := begin(t, f, false)
	require.NoError(t, unit.Listings().Save(ctx, newListing(t, 1, "A")))
	got, err := unit.Listings().ByID(ctx, 1)
	require.NoError(t, err)
	got.Name = "changed"
	got.Amenities[0] = "pool"

	again, err := unit.Listings().ByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, []string{"wifi"}, again.Amenities)
	require.NoError(t, unit.Rollback(ctx))
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	ctx := context.Background()
	f := &kv.Factory{Store: memory.NewStore()}

	unit := begin(t, f, true)
	assert.ErrorIs(t, unit.Listings().Save(ctx, newListing(t, 1, "A")), kv.ErrReadOnly)
	require.NoError(t, unit.Commit(ctx))
}

func TestFinishedUnitIsClosed(t *testing.T) {
	ctx := context.Background()
	f := &kv.Factory{Store: memory.NewStore()}

	unit := begin(t, f, false)
	require.NoError(t, unit.Commit(ctx))
	assert.ErrorIs(t, unit.Commit(ctx), kv.ErrClosed)
	_, err := unit.Listings().List(ctx)
	assert.ErrorIs(t, err, kv.ErrClosed)
	assert.NoError(t, unit.Rollback(ctx))
}

func TestWriteUnitsAreSerialized(t *testing.T) {
	f := &kv.Factory{Store: memory.NewStore()}

	first := begin(t, f, false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Begin(ctx, uow.TxOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// readers are not blocked by the writer
	reader := begin(t, f, true)
	require.NoError(t, reader.Commit(context.Background()))

	require.NoError(t, first.Rollback(context.Background()))
	second := begin(t, f, false)
	require.NoError(t, second.Rollback(context.Background()))
}

func TestCorruptValueSurfacesKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Apply(ctx, []kv.Op{kv.Put(kv.KeyListings, []byte(`[{"id":1,"name":"x","gender":"Robots"}]`))}))
	f := &kv.Factory{Store: store}

	unit := begin(t, f, true)
	_, err := unit.Listings().List(ctx)
	var ce *kv.CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, kv.KeyListings, ce.Key)
}

func TestFactoryWithoutStoreIsMisconfigured(t *testing.T) {
	var f *kv.Factory
	_, err := f.Begin(context.Background(), uow.TxOptions{})
	assert.ErrorIs(t, err, kv.ErrFactoryMisconfigured)
}

func TestLegacyPasswordsAreHashedAndPersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	legacy := `[{"id":1,"name":"Asha","email":"asha@example.com","password":"secret","phone":"99","userType":"student"}]`
	require.NoError(t, store.Apply(ctx, []kv.Op{kv.Put(kv.KeyUsers, []byte(legacy))}))
	f := &kv.Factory{Store: store, HashLegacyPassword: func(p string) (string, error) { return "hashed:" + p, nil }}

	reader := begin(t, f, true)
	usr, err := reader.Users().ByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:secret", usr.PasswordHash)
	require.NoError(t, reader.Commit(ctx))
	raw, _ := store.Get(ctx, kv.KeyUsers)
	assert.True(t, strings.HasPrefix(string(raw), "["), "read-only unit must not rewrite users")

	writer := begin(t, f, false)
	_, err = writer.Users().ByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	require.NoError(t, writer.Commit(ctx))

	raw, err = store.Get(ctx, kv.KeyUsers)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"passwordHash":"hashed:secret"`)
	assert.NotContains(t, string(raw), `"password":`)
}

func TestLegacyPasswordWithoutHasherIsCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	legacy := `[{"id":1,"name":"Asha","email":"asha@example.com","password":"secret","userType":"student"}]`
	require.NoError(t, store.Apply(ctx, []kv.Op{kv.Put(kv.KeyUsers, []byte(legacy))}))
	f := &kv.Factory{Store: store}

	unit := begin(t, f, true)
	_, err := unit.Users().ByEmail(ctx, "asha@example.com")
	assert.ErrorIs(t, err, kv.ErrCorrupt)
	assert.ErrorIs(t, err, kv.ErrLegacyPassword)
}
