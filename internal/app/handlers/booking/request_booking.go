package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	"pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/middleware"
	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/uow"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	ListingID       domainlistings.ListingID `validate:"gt=0"`
	Name            string
	Email           string
	Phone           string
	Message         string
	MoveInDate      string
	IdempotencyKeyV string
	// Requester identifies the caller; client keys are only unique per requester.
	Requester string
}

func (c RequestBookingCommand) Key() string                   { return requestBookingKey }
func (c RequestBookingCommand) RequiredKind() domainauth.Kind { return domainauth.KindStudent }

// IdempotencyKey scopes the client key to the requester and the listing, so a
// reused key never replays another student's booking.
func (c RequestBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%s", c.Requester, c.ListingID, c.IdempotencyKeyV)
}

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// RequestBookingHandler records a pending request against a listing that still has rooms.
type RequestBookingHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := unit.Listings().ByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.HasRooms() {
		return nil, domainbooking.ErrNoRoomsAvailable
	}

	now := support.Now(h.Now)
	id, err := unit.Bookings().NextID(ctx, now)
	if err != nil {
		return nil, err
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:      id,
		Listing: listing,
		Applicant: domainbooking.Applicant{
			Name:  cmd.Name,
			Email: cmd.Email,
			Phone: cmd.Phone,
		},
		Message:    cmd.Message,
		MoveInDate: cmd.MoveInDate,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, unit, h.Encoder, booking.Drain()); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", booking.ID, "listing_id", booking.ListingID)
	}
	result := dto.MapBooking(booking)
	return &result, nil
}

var _ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
