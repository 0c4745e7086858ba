package listings

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"pgfinder/internal/domain/shared/events"
)

var (
	ErrNotFound       = errors.New("listings: not found")
	ErrNameRequired   = errors.New("listings: name is required")
	ErrCityRequired   = errors.New("listings: city is required")
	ErrNegativePrice  = errors.New("listings: price must be non-negative")
	ErrNegativeRooms  = errors.New("listings: available rooms must be non-negative")
	ErrInvalidGender  = errors.New("listings: gender must be one of Boys, Girls, Unisex")
	ErrInvalidStatus  = errors.New("listings: status must be vacant or occupied")
	ErrInvalidRating  = errors.New("listings: rating must be between 0 and 5")
	ErrImageRequired  = errors.New("listings: image url is required")
	ErrInvalidListing = errors.New("listings: invalid id")
)

type ListingID int64

func (id ListingID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a listing id from its decimal form.
func ParseID(raw string) (ListingID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrInvalidListing
	}
	return ListingID(value), nil
}

type Gender string

const (
	GenderBoys   Gender = "Boys"
	GenderGirls  Gender = "Girls"
	GenderUnisex Gender = "Unisex"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderBoys, GenderGirls, GenderUnisex:
		return true
	}
	return false
}

// Occupancy is set by the owner and does not follow the room count.
type Occupancy string

const (
	Vacant   Occupancy = "vacant"
	Occupied Occupancy = "occupied"
)

func (o Occupancy) Valid() bool {
	return o == Vacant || o == Occupied
}

type Listing struct {
	ID             ListingID
	Name           string
	City           string
	Area           string
	Address        string
	Price          int
	Gender         Gender
	Amenities      []string
	Images         []string
	Description    string
	OwnerName      string
	OwnerContact   string
	AvailableRooms int
	Status         Occupancy
	Rating         float64
	Verified       bool
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	List(ctx context.Context) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	NextID(ctx context.Context) (ListingID, error)
}

// Details is the owner-editable part of a listing.
type Details struct {
	Name           string
	City           string
	Area           string
	Address        string
	Price          int
	Gender         Gender
	Amenities      []string
	Images         []string
	Description    string
	OwnerName      string
	OwnerContact   string
	AvailableRooms int
	Status         Occupancy
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(d.City) == "" {
		return ErrCityRequired
	}
	if d.Price < 0 {
		return ErrNegativePrice
	}
	if d.AvailableRooms < 0 {
		return ErrNegativeRooms
	}
	if !d.Gender.Valid() {
		return ErrInvalidGender
	}
	if d.Status != "" && !d.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// NewListing builds an unverified, unrated listing with the assigned id.
func NewListing(id ListingID, details Details, now time.Time) (*Listing, error) {
	if id <= 0 {
		return nil, ErrInvalidListing
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	l := &Listing{ID: id}
	l.apply(details)
	l.Rating = 0
	l.Verified = false
	l.Record(ListingCreated{ListingID: l.ID, Name: l.Name, City: l.City, At: now.UTC()})
	return l, nil
}

// Replace overwrites every owner-editable field. Rating and verification are derived
// elsewhere and survive the edit.
func (l *Listing) Replace(details Details, now time.Time) error {
	if err := details.validate(); err != nil {
		return err
	}
	l.apply(details)
	l.Record(ListingUpdated{ListingID: l.ID, At: now.UTC()})
	return nil
}

func (l *Listing) apply(d Details) {
	l.Name = strings.TrimSpace(d.Name)
	l.City = strings.TrimSpace(d.City)
	l.Area = strings.TrimSpace(d.Area)
	l.Address = strings.TrimSpace(d.Address)
	l.Price = d.Price
	l.Gender = d.Gender
	l.Amenities = normalizeAmenities(d.Amenities)
	l.Images = nonEmpty(d.Images)
	l.Description = strings.TrimSpace(d.Description)
	l.OwnerName = strings.TrimSpace(d.OwnerName)
	l.OwnerContact = strings.TrimSpace(d.OwnerContact)
	l.AvailableRooms = d.AvailableRooms
	l.Status = d.Status
	if l.Status == "" {
		l.Status = Vacant
	}
}

func (l *Listing) SetOccupancy(status Occupancy, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if l.Status == status {
		return nil
	}
	l.Status = status
	l.Record(ListingStatusChanged{ListingID: l.ID, Status: status, At: now.UTC()})
	return nil
}

// TakeRoom decrements the available room count when positive and reports whether it did.
func (l *Listing) TakeRoom() bool {
	if l.AvailableRooms <= 0 {
		return false
	}
	l.AvailableRooms--
	return true
}

func (l *Listing) UpdateRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	l.Rating = rating
	return nil
}

func (l *Listing) AddImage(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrImageRequired
	}
	l.Images = append(l.Images, url)
	l.Record(ListingUpdated{ListingID: l.ID, At: now.UTC()})
	return nil
}

func (l *Listing) MarkDeleted(now time.Time) {
	l.Record(ListingDeleted{ListingID: l.ID, At: now.UTC()})
}

// HasRooms reports whether a booking request may be submitted.
func (l *Listing) HasRooms() bool {
	return l.AvailableRooms > 0
}

// Location is the "<area>, <city>" label captured in booking snapshots.
func (l *Listing) Location() string {
	if l.Area == "" {
		return l.City
	}
	return l.Area + ", " + l.City
}

// HasAmenity is an exact, case-sensitive membership test.
func (l *Listing) HasAmenity(amenity string) bool {
	for _, a := range l.Amenities {
		if a == amenity {
			return true
		}
	}
	return false
}

// Clone returns a deep copy without pending events.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	out := &Listing{
		ID:             l.ID,
		Name:           l.Name,
		City:           l.City,
		Area:           l.Area,
		Address:        l.Address,
		Price:          l.Price,
		Gender:         l.Gender,
		Amenities:      append([]string(nil), l.Amenities...),
		Images:         append([]string(nil), l.Images...),
		Description:    l.Description,
		OwnerName:      l.OwnerName,
		OwnerContact:   l.OwnerContact,
		AvailableRooms: l.AvailableRooms,
		Status:         l.Status,
		Rating:         l.Rating,
		Verified:       l.Verified,
	}
	return out
}

// NextID returns max(existing ids, 0) + 1.
func NextID(existing []*Listing) ListingID {
	var maxID ListingID
	for _, l := range existing {
		if l != nil && l.ID > maxID {
			maxID = l.ID
		}
	}
	return maxID + 1
}

func normalizeAmenities(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
