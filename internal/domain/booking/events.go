package booking

import (
	"time"

	"pgfinder/internal/domain/listings"
)

type BookingRequested struct {
	BookingID BookingID
	ListingID listings.ListingID
	Email     string
	At        time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return e.BookingID.String() }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingApproved struct {
	BookingID BookingID
	ListingID listings.ListingID
	At        time.Time
}

func (e BookingApproved) EventName() string     { return "booking.approved" }
func (e BookingApproved) AggregateID() string   { return e.BookingID.String() }
func (e BookingApproved) OccurredAt() time.Time { return e.At }

type BookingRejected struct {
	BookingID BookingID
	ListingID listings.ListingID
	At        time.Time
}

func (e BookingRejected) EventName() string     { return "booking.rejected" }
func (e BookingRejected) AggregateID() string   { return e.BookingID.String() }
func (e BookingRejected) OccurredAt() time.Time { return e.At }
