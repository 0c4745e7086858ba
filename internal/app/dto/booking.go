package dto

import (
	"time"

	domainbooking "pgfinder/internal/domain/booking"
)

type BookingSnapshot struct {
	ListingName     string `json:"listing_name"`
	ListingLocation string `json:"listing_location"`
	Price           int    `json:"price"`
}

type Booking struct {
	ID         int64           `json:"id"`
	ListingID  int64           `json:"listing_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Message    string          `json:"message,omitempty"`
	MoveInDate string          `json:"move_in_date"`
	Listing    BookingSnapshot `json:"listing"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

// OwnerBookingBoard groups the owner's bookings by status.
type OwnerBookingBoard struct {
	Pending  []Booking `json:"pending"`
	Approved []Booking `json:"approved"`
	Rejected []Booking `json:"rejected"`
	Total    int       `json:"total"`
}

// BookingDecision reports the outcome of an approve or reject call.
type BookingDecision struct {
	Booking        Booking `json:"booking"`
	Changed        bool    `json:"changed"`
	RoomsRemaining *int    `json:"rooms_remaining,omitempty"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	out := Booking{
		ID:         int64(b.ID),
		ListingID:  int64(b.ListingID),
		Name:       b.Applicant.Name,
		Email:      b.Applicant.Email,
		Phone:      b.Applicant.Phone,
		Message:    b.Message,
		MoveInDate: b.MoveInDate,
		Listing: BookingSnapshot{
			ListingName:     b.Snapshot.ListingName,
			ListingLocation: b.Snapshot.ListingLocation,
			Price:           b.Snapshot.Price,
		},
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
	if b.UpdatedAt != nil {
		at := *b.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]Booking, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}

func MapOwnerBoard(items []*domainbooking.Booking) OwnerBookingBoard {
	board := OwnerBookingBoard{Pending: []Booking{}, Approved: []Booking{}, Rejected: []Booking{}}
	for _, b := range items {
		mapped := MapBooking(b)
		switch b.Status {
		case domainbooking.StatusApproved:
			board.Approved = append(board.Approved, mapped)
		case domainbooking.StatusRejected:
			board.Rejected = append(board.Rejected, mapped)
		default:
			board.Pending = append(board.Pending, mapped)
		}
		board.Total++
	}
	return board
}
