package reviews

import (
	"context"
	"log/slog"
	"time"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	"pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/uow"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
)

const addReviewKey = "reviews.add"

// AddReviewCommand needs no session.
type AddReviewCommand struct {
	ListingID domainlistings.ListingID `validate:"gt=0"`
	Name      string
	Rating    int
	Comment   string
}

func (c AddReviewCommand) Key() string { return addReviewKey }

type AddReviewHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *AddReviewHandler) Handle(ctx context.Context, cmd AddReviewCommand) (*dto.ReviewReceipt, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	existing, err := unit.Reviews().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	now := support.Now(h.Now)
	review, err := domainreviews.Add(domainreviews.AddParams{
		ID:        domainreviews.NextID(existing, now),
		ListingID: listing.ID,
		Name:      cmd.Name,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		Date:      now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Append(ctx, review); err != nil {
		return nil, err
	}
	if err := recalculateListingRating(ctx, unit, listing, append(existing, review)); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, unit, h.Encoder, review.Drain()); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("review added", "listing_id", listing.ID, "rating", review.Rating, "listing_rating", listing.Rating)
	}
	return &dto.ReviewReceipt{Review: dto.MapReview(review), ListingRating: listing.Rating}, nil
}

var _ commands.Handler[AddReviewCommand, *dto.ReviewReceipt] = (*AddReviewHandler)(nil)
