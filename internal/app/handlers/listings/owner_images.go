package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	"pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/policies"
	"pgfinder/internal/app/uow"
	domainauth "pgfinder/internal/domain/auth"
	domainlistings "pgfinder/internal/domain/listings"
)

const uploadListingImageKey = "owner.listings.images.upload"

var ErrImageStoreUnavailable = errors.New("listings: image store unavailable")

type UploadListingImageCommand struct {
	ListingID   domainlistings.ListingID
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadListingImageCommand) Key() string                   { return uploadListingImageKey }
func (c UploadListingImageCommand) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

type UploadListingImageHandler struct {
	Logger  *slog.Logger
	Images  policies.ImageStore
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *UploadListingImageHandler) Handle(ctx context.Context, cmd UploadListingImageCommand) (*dto.Listing, error) {
	if h.Images == nil {
		return nil, ErrImageStoreUnavailable
	}
	if cmd.Reader == nil {
		return nil, errors.New("image reader is required")
	}
	if strings.TrimSpace(cmd.ObjectKey) == "" {
		return nil, errors.New("object key is required")
	}

	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	publicURL, err := h.Images.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if err := listing.AddImage(publicURL, support.Now(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, unit, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing image added", "listing_id", listing.ID, "object_key", cmd.ObjectKey)
	}
	result := dto.MapListing(listing)
	return &result, nil
}

var _ commands.Handler[UploadListingImageCommand, *dto.Listing] = (*UploadListingImageHandler)(nil)
