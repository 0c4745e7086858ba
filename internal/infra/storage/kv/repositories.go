package kv

import (
	"context"
	"errors"
	"time"

	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
	domainuser "pgfinder/internal/domain/user"
)

// Repositories hand out clones so callers mutate nothing until Save.

type listingRepository struct {
	unit *Unit
}

func (r listingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	c, err := r.unit.loadListings(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range c.listings {
		if l.ID == id {
			return l.Clone(), nil
		}
	}
	return nil, domainlistings.ErrNotFound
}

func (r listingRepository) List(ctx context.Context) ([]*domainlistings.Listing, error) {
	c, err := r.unit.loadListings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domainlistings.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		out = append(out, l.Clone())
	}
	return out, nil
}

func (r listingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	if listing == nil {
		return errors.New("kv: nil listing")
	}
	if err := r.unit.checkWritable(); err != nil {
		return err
	}
	c, err := r.unit.loadListings(ctx)
	if err != nil {
		return err
	}
	stored := listing.Clone()
	for i, l := range c.listings {
		if l.ID == listing.ID {
			c.listings[i] = stored
			c.dirty = true
			return nil
		}
	}
	c.listings = append(c.listings, stored)
	c.dirty = true
	return nil
}

func (r listingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	if err := r.unit.checkWritable(); err != nil {
		return err
	}
	c, err := r.unit.loadListings(ctx)
	if err != nil {
		return err
	}
	for i, l := range c.listings {
		if l.ID == id {
			c.listings = append(c.listings[:i:i], c.listings[i+1:]...)
			c.dirty = true
			return nil
		}
	}
	return domainlistings.ErrNotFound
}

func (r listingRepository) NextID(ctx context.Context) (domainlistings.ListingID, error) {
	c, err := r.unit.loadListings(ctx)
	if err != nil {
		return 0, err
	}
	return domainlistings.NextID(c.listings), nil
}

type bookingLedger struct {
	unit *Unit
}

func (r bookingLedger) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	c, err := r.unit.loadBookings(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range c.bookings {
		if b.ID == id {
			return b.Clone(), nil
		}
	}
	return nil, domainbooking.ErrNotFound
}

func (r bookingLedger) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	c, err := r.unit.loadBookings(ctx)
	if err != nil {
		return nil, err
	}
	matched := domainbooking.FilterList(c.bookings, filter)
	out := make([]*domainbooking.Booking, 0, len(matched))
	for _, b := range matched {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (r bookingLedger) Save(ctx context.Context, booking *domainbooking.Booking) error {
	if booking == nil {
		return errors.New("kv: nil booking")
	}
	if err := r.unit.checkWritable(); err != nil {
		return err
	}
	c, err := r.unit.loadBookings(ctx)
	if err != nil {
		return err
	}
	stored := booking.Clone()
	for i, b := range c.bookings {
		if b.ID == booking.ID {
			c.bookings[i] = stored
			c.dirty = true
			return nil
		}
	}
	c.bookings = append(c.bookings, stored)
	c.dirty = true
	return nil
}

func (r bookingLedger) NextID(ctx context.Context, now time.Time) (domainbooking.BookingID, error) {
	c, err := r.unit.loadBookings(ctx)
	if err != nil {
		return 0, err
	}
	return domainbooking.NextID(c.bookings, now), nil
}

type reviewRepository struct {
	unit *Unit
}

func (r reviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	c, err := r.unit.loadReviews(ctx, listingID)
	if err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(c.reviews))
	for _, rv := range c.reviews {
		cp := *rv
		cp.ClearEvents()
		out = append(out, &cp)
	}
	return out, nil
}

func (r reviewRepository) Append(ctx context.Context, review *domainreviews.Review) error {
	if review == nil {
		return errors.New("kv: nil review")
	}
	if err := r.unit.checkWritable(); err != nil {
		return err
	}
	c, err := r.unit.loadReviews(ctx, review.ListingID)
	if err != nil {
		return err
	}
	stored := &domainreviews.Review{
		ID:        review.ID,
		ListingID: review.ListingID,
		Name:      review.Name,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Date:      review.Date,
	}
	c.reviews = append(c.reviews, stored)
	c.dirty = true
	return nil
}

type userRepository struct {
	unit *Unit
}

func (r userRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	c, err := r.unit.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range c.users {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return nil, domainuser.ErrNotFound
}

// ByEmail is an exact match; the first account registered with the email wins.
func (r userRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	c, err := r.unit.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range c.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r userRepository) Save(ctx context.Context, user *domainuser.User) error {
	if user == nil {
		return errors.New("kv: nil user")
	}
	if err := r.unit.checkWritable(); err != nil {
		return err
	}
	c, err := r.unit.loadUsers(ctx)
	if err != nil {
		return err
	}
	stored := user.Clone()
	for i, u := range c.users {
		if u.ID == user.ID {
			c.users[i] = stored
			c.dirty = true
			return nil
		}
	}
	c.users = append(c.users, stored)
	c.dirty = true
	return nil
}

func (r userRepository) NextID(ctx context.Context, now time.Time) (domainuser.ID, error) {
	c, err := r.unit.loadUsers(ctx)
	if err != nil {
		return 0, err
	}
	return domainuser.NextID(c.users, now), nil
}
