package reviews

import (
	"context"

	"pgfinder/internal/app/dto"
	handlersupport "pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/queries"
	"pgfinder/internal/app/uow"
	domainlistings "pgfinder/internal/domain/listings"
)

const listReviewsKey = "reviews.list"

type ListReviewsQuery struct {
	ListingID domainlistings.ListingID
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

// ListReviewsHandler returns a listing's reviews in submission order. Reviews of a
// deleted listing are still readable.
type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (dto.ReviewCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Reviews().ListByListing(execCtx, q.ListingID)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	return dto.MapReviews(items), nil
}

var _ queries.Handler[ListReviewsQuery, dto.ReviewCollection] = (*ListReviewsHandler)(nil)
