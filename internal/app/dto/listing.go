package dto

import (
	domainlistings "pgfinder/internal/domain/listings"
)

// Listing is the public listing payload.
type Listing struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Area           string   `json:"area"`
	Address        string   `json:"address"`
	Price          int      `json:"price"`
	Gender         string   `json:"gender"`
	Amenities      []string `json:"amenities"`
	Images         []string `json:"images"`
	Description    string   `json:"description"`
	OwnerName      string   `json:"owner_name"`
	OwnerContact   string   `json:"owner_contact"`
	AvailableRooms int      `json:"available_rooms"`
	Status         string   `json:"status"`
	Rating         float64  `json:"rating"`
	Verified       bool     `json:"verified"`
}

type ListingCatalog struct {
	Items []Listing `json:"items"`
	Total int       `json:"total"`
	Sort  string    `json:"sort,omitempty"`
}

// ListingInput carries the owner-editable fields of a listing.
type ListingInput struct {
	Name           string   `json:"name" binding:"required"`
	City           string   `json:"city" binding:"required"`
	Area           string   `json:"area"`
	Address        string   `json:"address"`
	Price          int      `json:"price" binding:"gte=0"`
	Gender         string   `json:"gender" binding:"required,oneof=Boys Girls Unisex"`
	Amenities      []string `json:"amenities"`
	Images         []string `json:"images"`
	Description    string   `json:"description"`
	OwnerName      string   `json:"owner_name"`
	OwnerContact   string   `json:"owner_contact"`
	AvailableRooms int      `json:"available_rooms" binding:"gte=0"`
	Status         string   `json:"status" binding:"omitempty,oneof=vacant occupied"`
}

func (in ListingInput) Details() domainlistings.Details {
	return domainlistings.Details{
		Name:           in.Name,
		City:           in.City,
		Area:           in.Area,
		Address:        in.Address,
		Price:          in.Price,
		Gender:         domainlistings.Gender(in.Gender),
		Amenities:      append([]string(nil), in.Amenities...),
		Images:         append([]string(nil), in.Images...),
		Description:    in.Description,
		OwnerName:      in.OwnerName,
		OwnerContact:   in.OwnerContact,
		AvailableRooms: in.AvailableRooms,
		Status:         domainlistings.Occupancy(in.Status),
	}
}

func MapListing(l *domainlistings.Listing) Listing {
	if l == nil {
		return Listing{}
	}
	return Listing{
		ID:             int64(l.ID),
		Name:           l.Name,
		City:           l.City,
		Area:           l.Area,
		Address:        l.Address,
		Price:          l.Price,
		Gender:         string(l.Gender),
		Amenities:      nonNil(l.Amenities),
		Images:         nonNil(l.Images),
		Description:    l.Description,
		OwnerName:      l.OwnerName,
		OwnerContact:   l.OwnerContact,
		AvailableRooms: l.AvailableRooms,
		Status:         string(l.Status),
		Rating:         l.Rating,
		Verified:       l.Verified,
	}
}

func MapCatalog(items []*domainlistings.Listing, sort domainlistings.CatalogSort) ListingCatalog {
	out := ListingCatalog{Items: make([]Listing, 0, len(items)), Total: len(items), Sort: string(sort)}
	for _, l := range items {
		out.Items = append(out.Items, MapListing(l))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}
