package kv

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/uow"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
	domainuser "pgfinder/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("kv: unit of work factory misconfigured")

// Factory opens units of work over a Store. Write units are serialized: only
// one may be open at a time in this process.
type Factory struct {
	Store Store
	// Relay receives outbox records after a successful commit.
	Relay outbox.Outbox
	// HashLegacyPassword upgrades clear-text passwords found in old user records.
	HashLegacyPassword func(string) (string, error)

	once   sync.Once
	writer chan struct{}
}

func (f *Factory) init() {
	f.once.Do(func() {
		f.writer = make(chan struct{}, 1)
	})
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f == nil || f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	f.init()
	u := &Unit{
		factory:  f,
		readOnly: opts.ReadOnly,
		values:   make(map[string]*collection),
	}
	if !opts.ReadOnly {
		select {
		case f.writer <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		u.release = func() { <-f.writer }
	}
	return u, nil
}

// collection is a decoded value cached for the life of a unit.
type collection struct {
	listings []*domainlistings.Listing
	bookings []*domainbooking.Booking
	reviews  []*domainreviews.Review
	users    []*domainuser.User
	present  bool
	dirty    bool
}

// Unit stages every write in memory and applies the whole batch on Commit.
type Unit struct {
	factory  *Factory
	readOnly bool
	values   map[string]*collection
	staged   outbox.Staged
	release  func()
	done     bool
}

func (u *Unit) Listings() domainlistings.Repository { return listingRepository{unit: u} }
func (u *Unit) Bookings() domainbooking.Ledger      { return bookingLedger{unit: u} }
func (u *Unit) Reviews() domainreviews.Repository   { return reviewRepository{unit: u} }
func (u *Unit) Users() domainuser.Repository        { return userRepository{unit: u} }
func (u *Unit) Outbox() outbox.Outbox               { return &u.staged }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrClosed
	}
	defer u.finish()
	if u.readOnly {
		return nil
	}
	ops, err := u.pendingOps()
	if err != nil {
		return err
	}
	if len(ops) > 0 {
		if err := u.factory.Store.Apply(ctx, ops); err != nil {
			return err
		}
	}
	return u.staged.Release(ctx, u.factory.Relay)
}

func (u *Unit) Rollback(context.Context) error {
	if u.done {
		return nil
	}
	u.finish()
	return nil
}

func (u *Unit) finish() {
	u.done = true
	u.values = nil
	if u.release != nil {
		u.release()
		u.release = nil
	}
}

func (u *Unit) pendingOps() ([]Op, error) {
	keys := make([]string, 0, len(u.values))
	for key, c := range u.values {
		if c.dirty {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	ops := make([]Op, 0, len(keys))
	for _, key := range keys {
		raw, err := u.encode(key, u.values[key])
		if err != nil {
			return nil, err
		}
		ops = append(ops, Put(key, raw))
	}
	return ops, nil
}

func (u *Unit) encode(key string, c *collection) ([]byte, error) {
	switch {
	case key == KeyListings:
		out := make([]listingRecord, 0, len(c.listings))
		for _, l := range c.listings {
			out = append(out, listingToRecord(l))
		}
		return Encode(SchemaListings, out)
	case key == KeyBookings:
		out := make([]bookingRecord, 0, len(c.bookings))
		for _, b := range c.bookings {
			out = append(out, bookingToRecord(b))
		}
		return Encode(SchemaBookings, out)
	case key == KeyUsers:
		out := make([]userRecord, 0, len(c.users))
		for _, usr := range c.users {
			out = append(out, userToRecord(usr))
		}
		return Encode(SchemaUsers, out)
	default:
		out := make([]reviewRecord, 0, len(c.reviews))
		for _, r := range c.reviews {
			out = append(out, reviewToRecord(r))
		}
		return Encode(SchemaReviews, out)
	}
}

func (u *Unit) checkOpen() error {
	if u.done {
		return ErrClosed
	}
	return nil
}

func (u *Unit) checkWritable() error {
	if err := u.checkOpen(); err != nil {
		return err
	}
	if u.readOnly {
		return ErrReadOnly
	}
	return nil
}

// load fetches and decodes key once per unit. A missing key is an empty collection.
func (u *Unit) load(ctx context.Context, key string, decode func(raw []byte, c *collection) error) (*collection, error) {
	if err := u.checkOpen(); err != nil {
		return nil, err
	}
	if c, ok := u.values[key]; ok {
		return c, nil
	}
	c := &collection{}
	raw, err := u.factory.Store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if err := decode(raw, c); err != nil {
			return nil, err
		}
		c.present = true
	}
	u.values[key] = c
	return c, nil
}

func (u *Unit) loadListings(ctx context.Context) (*collection, error) {
	return u.load(ctx, KeyListings, func(raw []byte, c *collection) error {
		var recs []listingRecord
		if err := Decode(KeyListings, SchemaListings, raw, &recs); err != nil {
			return err
		}
		c.listings = make([]*domainlistings.Listing, 0, len(recs))
		for _, r := range recs {
			c.listings = append(c.listings, r.toDomain())
		}
		return nil
	})
}

func (u *Unit) loadBookings(ctx context.Context) (*collection, error) {
	return u.load(ctx, KeyBookings, func(raw []byte, c *collection) error {
		var recs []bookingRecord
		if err := Decode(KeyBookings, SchemaBookings, raw, &recs); err != nil {
			return err
		}
		c.bookings = make([]*domainbooking.Booking, 0, len(recs))
		for _, r := range recs {
			c.bookings = append(c.bookings, r.toDomain())
		}
		return nil
	})
}

func (u *Unit) loadReviews(ctx context.Context, listingID domainlistings.ListingID) (*collection, error) {
	key := ReviewsKey(int64(listingID))
	return u.load(ctx, key, func(raw []byte, c *collection) error {
		var recs []reviewRecord
		if err := Decode(key, SchemaReviews, raw, &recs); err != nil {
			return err
		}
		c.reviews = make([]*domainreviews.Review, 0, len(recs))
		for _, r := range recs {
			c.reviews = append(c.reviews, r.toDomain(listingID))
		}
		return nil
	})
}

func (u *Unit) loadUsers(ctx context.Context) (*collection, error) {
	return u.load(ctx, KeyUsers, func(raw []byte, c *collection) error {
		var recs []userRecord
		if err := Decode(KeyUsers, SchemaUsers, raw, &recs); err != nil {
			return err
		}
		c.users = make([]*domainuser.User, 0, len(recs))
		upgraded := false
		for _, r := range recs {
			usr, err := r.toDomain(u.factory.HashLegacyPassword)
			if err != nil {
				return corrupt(KeyUsers, err)
			}
			upgraded = upgraded || r.PasswordHash == ""
			c.users = append(c.users, usr)
		}
		// persist upgraded hashes with the next write
		c.dirty = upgraded && !u.readOnly
		return nil
	})
}

var _ uow.UoWFactory = (*Factory)(nil)
var _ uow.UnitOfWork = (*Unit)(nil)
