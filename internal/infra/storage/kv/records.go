package kv

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
	domainuser "pgfinder/internal/domain/user"
)

// Field names follow the layout written by the original browser client so
// that exported data can be read back unchanged.

type listingRecord struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Area           string   `json:"area"`
	Address        string   `json:"address"`
	Price          int      `json:"price"`
	Gender         string   `json:"gender"`
	Amenities      []string `json:"amenities"`
	Images         []string `json:"images"`
	Description    string   `json:"description"`
	Owner          string   `json:"owner"`
	Contact        string   `json:"contact"`
	AvailableRooms int      `json:"availableRooms"`
	Status         string   `json:"status,omitempty"`
	Rating         float64  `json:"rating"`
	Verified       bool     `json:"verified"`
}

func (r listingRecord) validate() error {
	switch {
	case r.ID <= 0:
		return fmt.Errorf("listing id %d", r.ID)
	case r.Price < 0:
		return fmt.Errorf("listing %d: negative price", r.ID)
	case r.AvailableRooms < 0:
		return fmt.Errorf("listing %d: negative rooms", r.ID)
	case !domainlistings.Gender(r.Gender).Valid():
		return fmt.Errorf("listing %d: gender %q", r.ID, r.Gender)
	case r.Status != "" && !domainlistings.Occupancy(r.Status).Valid():
		return fmt.Errorf("listing %d: status %q", r.ID, r.Status)
	case r.Rating < 0 || r.Rating > 5:
		return fmt.Errorf("listing %d: rating %v", r.ID, r.Rating)
	}
	return nil
}

func (r listingRecord) toDomain() *domainlistings.Listing {
	status := domainlistings.Occupancy(r.Status)
	if status == "" {
		status = domainlistings.Vacant
	}
	return &domainlistings.Listing{
		ID:             domainlistings.ListingID(r.ID),
		Name:           r.Name,
		City:           r.Location,
		Area:           r.Area,
		Address:        r.Address,
		Price:          r.Price,
		Gender:         domainlistings.Gender(r.Gender),
		Amenities:      append([]string(nil), r.Amenities...),
		Images:         append([]string(nil), r.Images...),
		Description:    r.Description,
		OwnerName:      r.Owner,
		OwnerContact:   r.Contact,
		AvailableRooms: r.AvailableRooms,
		Status:         status,
		Rating:         r.Rating,
		Verified:       r.Verified,
	}
}

func listingToRecord(l *domainlistings.Listing) listingRecord {
	return listingRecord{
		ID:             int64(l.ID),
		Name:           l.Name,
		Location:       l.City,
		Area:           l.Area,
		Address:        l.Address,
		Price:          l.Price,
		Gender:         string(l.Gender),
		Amenities:      nonNil(l.Amenities),
		Images:         nonNil(l.Images),
		Description:    l.Description,
		Owner:          l.OwnerName,
		Contact:        l.OwnerContact,
		AvailableRooms: l.AvailableRooms,
		Status:         string(l.Status),
		Rating:         l.Rating,
		Verified:       l.Verified,
	}
}

type bookingRecord struct {
	ID         int64      `json:"id"`
	PgID       int64      `json:"pgId"`
	Status     string     `json:"status"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Message    string     `json:"message"`
	MoveInDate string     `json:"moveInDate"`
	PgName     string     `json:"pgName"`
	PgLocation string     `json:"pgLocation"`
	Price      int        `json:"price"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func (r bookingRecord) validate() error {
	switch {
	case r.ID <= 0:
		return fmt.Errorf("booking id %d", r.ID)
	case r.PgID <= 0:
		return fmt.Errorf("booking %d: listing id %d", r.ID, r.PgID)
	case !domainbooking.Status(r.Status).Valid():
		return fmt.Errorf("booking %d: status %q", r.ID, r.Status)
	}
	return nil
}

func (r bookingRecord) toDomain() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:        domainbooking.BookingID(r.ID),
		ListingID: domainlistings.ListingID(r.PgID),
		Applicant: domainbooking.Applicant{
			Name:  r.Name,
			Email: r.Email,
			Phone: r.Phone,
		},
		Message:    r.Message,
		MoveInDate: r.MoveInDate,
		Snapshot: domainbooking.Snapshot{
			ListingName:     r.PgName,
			ListingLocation: r.PgLocation,
			Price:           r.Price,
		},
		Status:    domainbooking.Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
	if r.UpdatedAt != nil {
		at := *r.UpdatedAt
		b.UpdatedAt = &at
	}
	return b
}

func bookingToRecord(b *domainbooking.Booking) bookingRecord {
	rec := bookingRecord{
		ID:         int64(b.ID),
		PgID:       int64(b.ListingID),
		Status:     string(b.Status),
		Name:       b.Applicant.Name,
		Email:      b.Applicant.Email,
		Phone:      b.Applicant.Phone,
		Message:    b.Message,
		MoveInDate: b.MoveInDate,
		PgName:     b.Snapshot.ListingName,
		PgLocation: b.Snapshot.ListingLocation,
		Price:      b.Snapshot.Price,
		CreatedAt:  b.CreatedAt,
	}
	if b.UpdatedAt != nil {
		at := *b.UpdatedAt
		rec.UpdatedAt = &at
	}
	return rec
}

type reviewRecord struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

func (r reviewRecord) validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("review id %d", r.ID)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("review %d: rating %d", r.ID, r.Rating)
	}
	return nil
}

func (r reviewRecord) toDomain(listingID domainlistings.ListingID) *domainreviews.Review {
	return &domainreviews.Review{
		ID:        domainreviews.ReviewID(r.ID),
		ListingID: listingID,
		Name:      r.Name,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Date:      r.Date,
	}
}

func reviewToRecord(r *domainreviews.Review) reviewRecord {
	return reviewRecord{ID: int64(r.ID), Name: r.Name, Rating: r.Rating, Comment: r.Comment, Date: r.Date}
}

// userRecord accepts the legacy clear-text "password" field on read; it is
// upgraded to a hash when the collection is loaded.
type userRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Password     string    `json:"password,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Phone        string    `json:"phone"`
	UserType     string    `json:"userType"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

func (r userRecord) validate() error {
	switch {
	case r.ID <= 0:
		return fmt.Errorf("user id %d", r.ID)
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("user %d: empty email", r.ID)
	case r.PasswordHash == "" && r.Password == "":
		return fmt.Errorf("user %d: no credentials", r.ID)
	}
	if _, err := domainuser.ParseRole(r.UserType); err != nil {
		return fmt.Errorf("user %d: %w", r.ID, err)
	}
	return nil
}

// ErrLegacyPassword is returned when a clear-text password is found and no hasher is configured.
var ErrLegacyPassword = errors.New("kv: legacy clear-text password without hasher")

func (r userRecord) toDomain(hash func(string) (string, error)) (*domainuser.User, error) {
	passwordHash := r.PasswordHash
	if passwordHash == "" {
		if hash == nil {
			return nil, ErrLegacyPassword
		}
		h, err := hash(r.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = h
	}
	role, _ := domainuser.ParseRole(r.UserType)
	return &domainuser.User{
		ID:           domainuser.ID(r.ID),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: passwordHash,
		Phone:        r.Phone,
		Role:         role,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

func userToRecord(u *domainuser.User) userRecord {
	return userRecord{
		ID:           int64(u.ID),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		UserType:     string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type sessionRecord struct {
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	UserID    int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UserType  string    `json:"userType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r sessionRecord) validate() error {
	if r.Token == "" {
		return errors.New("session without token")
	}
	if k := domainauth.Kind(r.Kind); k != domainauth.KindStudent && k != domainauth.KindOwner {
		return fmt.Errorf("session kind %q", r.Kind)
	}
	return nil
}

func (r sessionRecord) toDomain() *domainauth.Session {
	return &domainauth.Session{
		Token: domainauth.Token(r.Token),
		Kind:  domainauth.Kind(r.Kind),
		Marker: domainauth.Marker{
			UserID: domainuser.ID(r.UserID),
			Name:   r.Name,
			Email:  r.Email,
			Role:   domainuser.Role(r.UserType),
		},
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

func sessionToRecord(s *domainauth.Session) sessionRecord {
	return sessionRecord{
		Token:     string(s.Token),
		Kind:      string(s.Kind),
		UserID:    int64(s.Marker.UserID),
		Name:      s.Marker.Name,
		Email:     s.Marker.Email,
		UserType:  string(s.Marker.Role),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}
