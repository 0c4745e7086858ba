package listings

import (
	"sort"
	"strconv"
	"strings"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc   CatalogSort = "price-asc"
	SortByPriceDesc  CatalogSort = "price-desc"
	SortByRatingDesc CatalogSort = "rating-desc"
	SortByRatingAsc  CatalogSort = "rating-asc"
)

// ParseSort maps a raw key to a CatalogSort. Unknown keys yield "" which keeps the filtered order.
func ParseSort(raw string) CatalogSort {
	switch s := CatalogSort(strings.TrimSpace(raw)); s {
	case SortByPriceAsc, SortByPriceDesc, SortByRatingDesc, SortByRatingAsc:
		return s
	}
	return ""
}

// Filters are the facet constraints of a catalog search. Prices stay strings
// because they arrive from form fields; anything that is not an integer is unset.
type Filters struct {
	MinPrice  string
	MaxPrice  string
	City      string
	Gender    Gender
	Amenities []string
}

type SearchParams struct {
	Query   string
	Filters Filters
	Sort    CatalogSort
}

type bound struct {
	value int
	set   bool
}

func parseBound(raw string) bound {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return bound{}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return bound{}
	}
	return bound{value: v, set: true}
}

// Apply filters and orders listings. The input slice is left untouched and the
// relative order of equal elements is preserved.
func Apply(items []*Listing, params SearchParams) []*Listing {
	query := strings.ToLower(strings.TrimSpace(params.Query))
	minPrice := parseBound(params.Filters.MinPrice)
	maxPrice := parseBound(params.Filters.MaxPrice)
	city := params.Filters.City
	gender := params.Filters.Gender
	amenities := params.Filters.Amenities

	out := make([]*Listing, 0, len(items))
	for _, l := range items {
		if l == nil {
			continue
		}
		if query != "" && !matchQuery(l, query) {
			continue
		}
		if minPrice.set && l.Price < minPrice.value {
			continue
		}
		if maxPrice.set && l.Price > maxPrice.value {
			continue
		}
		if city != "" && l.City != city {
			continue
		}
		if gender != "" && l.Gender != gender {
			continue
		}
		if !hasAll(l, amenities) {
			continue
		}
		out = append(out, l)
	}

	if less := lessFor(params.Sort); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func matchQuery(l *Listing, query string) bool {
	return strings.Contains(strings.ToLower(l.Name), query) ||
		strings.Contains(strings.ToLower(l.City), query) ||
		strings.Contains(strings.ToLower(l.Area), query)
}

func hasAll(l *Listing, required []string) bool {
	for _, amenity := range required {
		if amenity == "" {
			continue
		}
		if !l.HasAmenity(amenity) {
			return false
		}
	}
	return true
}

func lessFor(key CatalogSort) func(a, b *Listing) bool {
	switch key {
	case SortByPriceAsc:
		return func(a, b *Listing) bool { return a.Price < b.Price }
	case SortByPriceDesc:
		return func(a, b *Listing) bool { return a.Price > b.Price }
	case SortByRatingDesc:
		return func(a, b *Listing) bool { return a.Rating > b.Rating }
	case SortByRatingAsc:
		return func(a, b *Listing) bool { return a.Rating < b.Rating }
	default:
		return nil
	}
}
