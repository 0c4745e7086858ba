package reviews

import (
	"time"

	"pgfinder/internal/domain/listings"
)

type ReviewAdded struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	Rating    int
	At        time.Time
}

func (e ReviewAdded) EventName() string     { return "review.added" }
func (e ReviewAdded) AggregateID() string   { return e.ListingID.String() }
func (e ReviewAdded) OccurredAt() time.Time { return e.At }
