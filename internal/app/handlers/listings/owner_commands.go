package listings

import (
	"context"
	"log/slog"
	"time"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	"pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/uow"
	domainauth "pgfinder/internal/domain/auth"
	domainlistings "pgfinder/internal/domain/listings"
)

const (
	createListingKey       = "owner.listings.create"
	updateListingKey       = "owner.listings.update"
	deleteListingKey       = "owner.listings.delete"
	setListingOccupancyKey = "owner.listings.occupancy"
)

type CreateListingCommand struct {
	Details domainlistings.Details
}

func (c CreateListingCommand) Key() string                   { return createListingKey }
func (c CreateListingCommand) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

// CreateListingHandler assigns the next id and stores an unrated, unverified listing.
type CreateListingHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	id, err := unit.Listings().NextID(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := domainlistings.NewListing(id, cmd.Details, support.Now(h.Now))
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, unit, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "city", listing.City)
	}
	result := dto.MapListing(listing)
	return &result, nil
}

type UpdateListingCommand struct {
	ListingID domainlistings.ListingID
	Details   domainlistings.Details
}

func (c UpdateListingCommand) Key() string                   { return updateListingKey }
func (c UpdateListingCommand) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

type UpdateListingHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.Listing, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Replace(cmd.Details, support.Now(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, unit, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing updated", "listing_id", listing.ID)
	}
	result := dto.MapListing(listing)
	return &result, nil
}

type DeleteListingCommand struct {
	ListingID domainlistings.ListingID
}

func (c DeleteListingCommand) Key() string                   { return deleteListingKey }
func (c DeleteListingCommand) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

// DeleteListingHandler removes the listing only. Its bookings and reviews stay
// in place and are filtered out by readers.
type DeleteListingHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*dto.Listing, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return nil, err
	}
	listing.MarkDeleted(support.Now(h.Now))
	if err := support.RecordEvents(ctx, unit, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID)
	}
	result := dto.MapListing(listing)
	return &result, nil
}

type SetOccupancyCommand struct {
	ListingID domainlistings.ListingID
	Status    domainlistings.Occupancy
}

func (c SetOccupancyCommand) Key() string                   { return setListingOccupancyKey }
func (c SetOccupancyCommand) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

type SetOccupancyHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *SetOccupancyHandler) Handle(ctx context.Context, cmd SetOccupancyCommand) (*dto.Listing, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.SetOccupancy(cmd.Status, support.Now(h.Now)); err != nil {
		return nil, err
	}
	pending := listing.Drain()
	if len(pending) > 0 {
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return nil, err
		}
		if err := support.RecordEvents(ctx, unit, h.Encoder, pending); err != nil {
			return nil, err
		}
		if h.Logger != nil {
			h.Logger.Info("listing occupancy changed", "listing_id", listing.ID, "status", listing.Status)
		}
	}
	result := dto.MapListing(listing)
	return &result, nil
}

var (
	_ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
	_ commands.Handler[UpdateListingCommand, *dto.Listing] = (*UpdateListingHandler)(nil)
	_ commands.Handler[DeleteListingCommand, *dto.Listing] = (*DeleteListingHandler)(nil)
	_ commands.Handler[SetOccupancyCommand, *dto.Listing]  = (*SetOccupancyHandler)(nil)
)
