package reviews

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"pgfinder/internal/domain/listings"
	"pgfinder/internal/domain/shared/events"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrNameRequired    = errors.New("reviews: name is required")
	ErrCommentRequired = errors.New("reviews: comment is required")
)

type ReviewID int64

func (id ReviewID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Review struct {
	ID        ReviewID
	ListingID listings.ListingID
	Name      string
	Rating    int
	Comment   string
	Date      time.Time
	events.EventRecorder
}

// Repository keeps one append-only ledger per listing.
type Repository interface {
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Review, error)
	Append(ctx context.Context, review *Review) error
}

type AddParams struct {
	ID        ReviewID
	ListingID listings.ListingID
	Name      string
	Rating    int
	Comment   string
	Date      time.Time
}

func Add(params AddParams) (*Review, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(params.Comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}
	review := &Review{
		ID:        params.ID,
		ListingID: params.ListingID,
		Name:      name,
		Rating:    params.Rating,
		Comment:   comment,
		Date:      params.Date.UTC(),
	}
	review.Record(ReviewAdded{ReviewID: review.ID, ListingID: review.ListingID, Rating: review.Rating, At: review.Date})
	return review, nil
}

// Average is the arithmetic mean of all ratings, 0 for an empty ledger.
func Average(items []*Review) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0
	for _, r := range items {
		sum += r.Rating
	}
	return float64(sum) / float64(len(items))
}

func NextID(existing []*Review, now time.Time) ReviewID {
	id := ReviewID(now.UnixMilli())
	for _, r := range existing {
		if r != nil && r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}
