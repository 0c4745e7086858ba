package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	handlersupport "pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/queries"
	"pgfinder/internal/app/uow"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
)

const (
	listOwnerBookingsKey = "owner.bookings.list"
	decideBookingKey     = "owner.bookings.decide"
	getBookingKey        = "bookings.get"
)

type ListOwnerBookingsQuery struct {
	Status    string
	ListingID domainlistings.ListingID
}

func (q ListOwnerBookingsQuery) Key() string                   { return listOwnerBookingsKey }
func (q ListOwnerBookingsQuery) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

// ListOwnerBookingsHandler returns bookings grouped by status. Bookings whose
// listing no longer exists are left out.
type ListOwnerBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListOwnerBookingsHandler) Handle(ctx context.Context, q ListOwnerBookingsQuery) (dto.OwnerBookingBoard, error) {
	status := domainbooking.Status(q.Status)
	if status != "" && !status.Valid() {
		return dto.OwnerBookingBoard{}, domainbooking.ErrInvalidStatus
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.OwnerBookingBoard{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().List(execCtx, domainbooking.Filter{ListingID: q.ListingID, Status: status})
	if err != nil {
		return dto.OwnerBookingBoard{}, err
	}
	all, err := unit.Listings().List(execCtx)
	if err != nil {
		return dto.OwnerBookingBoard{}, err
	}
	live := make(map[domainlistings.ListingID]struct{}, len(all))
	for _, l := range all {
		live[l.ID] = struct{}{}
	}
	kept := bookings[:0:0]
	for _, b := range bookings {
		if _, ok := live[b.ListingID]; ok {
			kept = append(kept, b)
		}
	}

	if h.Logger != nil {
		h.Logger.Debug("owner bookings listed", "count", len(kept), "orphaned", len(bookings)-len(kept), "status", status)
	}
	return dto.MapOwnerBoard(kept), nil
}

type DecideBookingCommand struct {
	BookingID domainbooking.BookingID `validate:"gt=0"`
	Status    domainbooking.Status    `validate:"oneof=approved rejected"`
}

func (c DecideBookingCommand) Key() string                   { return decideBookingKey }
func (c DecideBookingCommand) RequiredKind() domainauth.Kind { return domainauth.KindOwner }

// DecideBookingHandler approves or rejects a pending booking. An approval takes
// one room from the listing when it still exists and has rooms left; both
// writes commit together. Repeating a decision changes nothing.
type DecideBookingHandler struct {
	Logger  *slog.Logger
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *DecideBookingHandler) Handle(ctx context.Context, cmd DecideBookingCommand) (*dto.BookingDecision, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	booking, err := unit.Bookings().ByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	changed, err := booking.SetStatus(cmd.Status, handlersupport.Now(h.Now))
	if err != nil {
		return nil, err
	}
	result := &dto.BookingDecision{Changed: changed}
	if !changed {
		result.Booking = dto.MapBooking(booking)
		return result, nil
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	if booking.Status == domainbooking.StatusApproved {
		listing, err := unit.Listings().ByID(ctx, booking.ListingID)
		switch {
		case errors.Is(err, domainlistings.ErrNotFound):
			if h.Logger != nil {
				h.Logger.Warn("approved booking for missing listing", "booking_id", booking.ID, "listing_id", booking.ListingID)
			}
		case err != nil:
			return nil, err
		default:
			if listing.TakeRoom() {
				if err := unit.Listings().Save(ctx, listing); err != nil {
					return nil, err
				}
			}
			rooms := listing.AvailableRooms
			result.RoomsRemaining = &rooms
		}
	}

	if err := handlersupport.RecordEvents(ctx, unit, h.Encoder, booking.Drain()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking decided", "booking_id", booking.ID, "listing_id", booking.ListingID, "status", booking.Status)
	}
	result.Booking = dto.MapBooking(booking)
	return result, nil
}

type GetBookingQuery struct {
	BookingID domainbooking.BookingID
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// GetBookingHandler serves the booking confirmation view.
type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	booking, err := unit.Bookings().ByID(execCtx, q.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(booking), nil
}

var (
	_ queries.Handler[ListOwnerBookingsQuery, dto.OwnerBookingBoard] = (*ListOwnerBookingsHandler)(nil)
	_ commands.Handler[DecideBookingCommand, *dto.BookingDecision]   = (*DecideBookingHandler)(nil)
	_ queries.Handler[GetBookingQuery, dto.Booking]                  = (*GetBookingHandler)(nil)
)
