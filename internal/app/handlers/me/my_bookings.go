package me

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pgfinder/internal/app/dto"
	handlersupport "pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/queries"
	"pgfinder/internal/app/uow"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
)

const listMyBookingsKey = "me.bookings.list"

// ListMyBookingsQuery selects the bookings submitted under an applicant email.
type ListMyBookingsQuery struct {
	Email string
}

func (q ListMyBookingsQuery) Key() string                   { return listMyBookingsKey }
func (q ListMyBookingsQuery) RequiredKind() domainauth.Kind { return domainauth.KindStudent }

type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (dto.BookingCollection, error) {
	email := strings.TrimSpace(q.Email)
	if email == "" {
		return dto.BookingCollection{}, errors.New("email is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Bookings().List(execCtx, domainbooking.Filter{Email: email})
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("student bookings listed", "count", len(items))
	}
	return dto.MapBookings(items), nil
}

var _ queries.Handler[ListMyBookingsQuery, dto.BookingCollection] = (*ListMyBookingsHandler)(nil)
