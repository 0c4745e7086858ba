package reviews

import (
	"context"

	"pgfinder/internal/app/uow"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
)

func recalculateListingRating(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing, all []*domainreviews.Review) error {
	if err := listing.UpdateRating(domainreviews.Average(all)); err != nil {
		return err
	}
	return unit.Listings().Save(ctx, listing)
}
