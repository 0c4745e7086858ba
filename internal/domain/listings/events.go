package listings

import (
	"time"
)

type ListingCreated struct {
	ListingID ListingID
	Name      string
	City      string
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return e.ListingID.String() }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingUpdated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return e.ListingID.String() }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }

type ListingStatusChanged struct {
	ListingID ListingID
	Status    Occupancy
	At        time.Time
}

func (e ListingStatusChanged) EventName() string     { return "listing.status_changed" }
func (e ListingStatusChanged) AggregateID() string   { return e.ListingID.String() }
func (e ListingStatusChanged) OccurredAt() time.Time { return e.At }

type ListingDeleted struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingDeleted) EventName() string     { return "listing.deleted" }
func (e ListingDeleted) AggregateID() string   { return e.ListingID.String() }
func (e ListingDeleted) OccurredAt() time.Time { return e.At }
