package dto

import (
	"time"

	domainreviews "pgfinder/internal/domain/reviews"
)

// Review represents a public review payload.
type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
}

type ReviewCollection struct {
	Items   []Review `json:"items"`
	Total   int      `json:"total"`
	Average float64  `json:"average"`
}

// ReviewReceipt is returned after a review is stored.
type ReviewReceipt struct {
	Review        Review  `json:"review"`
	ListingRating float64 `json:"listing_rating"`
}

// MapReview builds a DTO from a domain review.
func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:        int64(review.ID),
		ListingID: int64(review.ListingID),
		Name:      review.Name,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Date:      review.Date,
	}
}

func MapReviews(items []*domainreviews.Review) ReviewCollection {
	out := ReviewCollection{Items: make([]Review, 0, len(items)), Total: len(items), Average: domainreviews.Average(items)}
	for _, r := range items {
		out.Items = append(out.Items, MapReview(r))
	}
	return out
}
