package booking

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
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrInvalidStatus     = errors.New("booking: unknown status")
	ErrNameRequired      = errors.New("booking: applicant name is required")
	ErrEmailRequired     = errors.New("booking: applicant email is required")
	ErrPhoneRequired     = errors.New("booking: applicant phone is required")
	ErrMoveInRequired    = errors.New("booking: move-in date is required")
	ErrNoRoomsAvailable  = errors.New("booking: no rooms available")
	ErrInvalidBookingID  = errors.New("booking: invalid id")
)

type BookingID int64

func (id BookingID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseID(raw string) (BookingID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrInvalidBookingID
	}
	return BookingID(value), nil
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Snapshot is the listing as it looked when the request was submitted.
type Snapshot struct {
	ListingName     string
	ListingLocation string
	Price           int
}

type Applicant struct {
	Name  string
	Email string
	Phone string
}

type Booking struct {
	ID         BookingID
	ListingID  listings.ListingID
	Applicant  Applicant
	Message    string
	MoveInDate string
	Snapshot   Snapshot
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	events.EventRecorder
}

type Filter struct {
	ListingID listings.ListingID
	Status    Status
	Email     string
}

func (f Filter) matches(b *Booking) bool {
	if f.ListingID != 0 && b.ListingID != f.ListingID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Email != "" && b.Applicant.Email != f.Email {
		return false
	}
	return true
}

// Ledger stores bookings in submission order.
type Ledger interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	NextID(ctx context.Context, now time.Time) (BookingID, error)
}

type CreateParams struct {
	ID         BookingID
	Listing    *listings.Listing
	Applicant  Applicant
	Message    string
	MoveInDate string
	CreatedAt  time.Time
}

// NewBooking creates a pending request. Room availability is the caller's concern.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.ID <= 0 {
		return nil, ErrInvalidBookingID
	}
	if params.Listing == nil {
		return nil, listings.ErrNotFound
	}
	applicant := Applicant{
		Name:  strings.TrimSpace(params.Applicant.Name),
		Email: strings.TrimSpace(params.Applicant.Email),
		Phone: strings.TrimSpace(params.Applicant.Phone),
	}
	switch {
	case applicant.Name == "":
		return nil, ErrNameRequired
	case applicant.Email == "":
		return nil, ErrEmailRequired
	case applicant.Phone == "":
		return nil, ErrPhoneRequired
	}
	moveIn := strings.TrimSpace(params.MoveInDate)
	if moveIn == "" {
		return nil, ErrMoveInRequired
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		ListingID:  params.Listing.ID,
		Applicant:  applicant,
		Message:    strings.TrimSpace(params.Message),
		MoveInDate: moveIn,
		Snapshot: Snapshot{
			ListingName:     params.Listing.Name,
			ListingLocation: params.Listing.Location(),
			Price:           params.Listing.Price,
		},
		Status:    StatusPending,
		CreatedAt: now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ListingID: b.ListingID, Email: applicant.Email, At: now})
	return b, nil
}

// SetStatus moves a pending booking to approved or rejected. Repeating the
// current decision is a no-op and reports changed=false.
func (b *Booking) SetStatus(next Status, now time.Time) (changed bool, err error) {
	if next != StatusApproved && next != StatusRejected {
		if next.Valid() {
			return false, ErrInvalidTransition
		}
		return false, ErrInvalidStatus
	}
	if b.Status == next {
		return false, nil
	}
	if b.Status != StatusPending {
		return false, ErrInvalidTransition
	}
	at := now.UTC()
	b.Status = next
	b.UpdatedAt = &at
	if next == StatusApproved {
		b.Record(BookingApproved{BookingID: b.ID, ListingID: b.ListingID, At: at})
	} else {
		b.Record(BookingRejected{BookingID: b.ID, ListingID: b.ListingID, At: at})
	}
	return true, nil
}

func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	out := &Booking{
		ID:         b.ID,
		ListingID:  b.ListingID,
		Applicant:  b.Applicant,
		Message:    b.Message,
		MoveInDate: b.MoveInDate,
		Snapshot:   b.Snapshot,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
	if b.UpdatedAt != nil {
		at := *b.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

// FilterList returns the bookings matching filter, preserving order.
func FilterList(items []*Booking, filter Filter) []*Booking {
	out := make([]*Booking, 0, len(items))
	for _, b := range items {
		if b != nil && filter.matches(b) {
			out = append(out, b)
		}
	}
	return out
}

// NextID derives an id from the clock, bumped past the largest existing id on collision.
func NextID(existing []*Booking, now time.Time) BookingID {
	id := BookingID(now.UnixMilli())
	for _, b := range existing {
		if b != nil && b.ID >= id {
			id = b.ID + 1
		}
	}
	return id
}
