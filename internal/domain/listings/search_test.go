package listings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []*Listing {
	return []*Listing{
		{ID: 1, Name: "Comfort Stay PG", City: "Bangalore", Area: "Koramangala", Price: 12000, Gender: GenderBoys, Amenities: []string{"wifi", "food"}, Rating: 4.5},
		{ID: 2, Name: "Elite Residency", City: "Mumbai", Area: "Andheri", Price: 15000, Gender: GenderGirls, Amenities: []string{"wifi", "ac", "food"}, Rating: 4.8},
		{ID: 3, Name: "Student Hub", City: "Delhi", Area: "Dwarka", Price: 8000, Gender: GenderUnisex, Amenities: []string{"wifi", "laundry"}, Rating: 4.2},
		{ID: 4, Name: "Green Valley", City: "Pune", Area: "Hinjewadi", Price: 10000, Gender: GenderUnisex, Amenities: []string{"ac", "parking"}, Rating: 4.6},
	}
}

func ids(items []*Listing) []ListingID {
	out := make([]ListingID, 0, len(items))
	for _, l := range items {
		out = append(out, l.ID)
	}
	return out
}

func TestApplyIncludesListingMatchingAllFacets(t *testing.T) {
	items := []*Listing{{ID: 1, Name: "Comfort", City: "Bangalore", Price: 12000, Gender: GenderBoys, Amenities: []string{"wifi", "food"}}}

	got := Apply(items, SearchParams{Filters: Filters{
		MinPrice:  "10000",
		MaxPrice:  "15000",
		City:      "Bangalore",
		Amenities: []string{"wifi"},
	}})

	assert.Equal(t, []ListingID{1}, ids(got))
}

func TestApplyExcludesListingWithoutRequestedAmenity(t *testing.T) {
	items := []*Listing{{ID: 1, Name: "Comfort", City: "Bangalore", Price: 12000, Amenities: []string{"wifi", "food"}}}

	got := Apply(items, SearchParams{Filters: Filters{Amenities: []string{"ac"}}})

	assert.Empty(t, got)
}

func TestApplyAmenitiesUseAndSemantics(t *testing.T) {
	got := Apply(catalogFixture(), SearchParams{Filters: Filters{Amenities: []string{"wifi", "ac"}}})
	assert.Equal(t, []ListingID{2}, ids(got))
}

func TestApplyQueryMatchesNameCityOrAreaCaseInsensitive(t *testing.T) {
	cases := map[string][]ListingID{
		"ELITE":     {2},
		"delhi":     {3},
		"hinjewadi": {4},
		"pg":        {1},
		"nowhere":   {},
	}
	for query, want := range cases {
		t.Run(query, func(t *testing.T) {
			got := Apply(catalogFixture(), SearchParams{Query: query})
			assert.Equal(t, want, ids(got))
		})
	}
}

func TestApplyIgnoresUnparsablePriceBounds(t *testing.T) {
	got := Apply(catalogFixture(), SearchParams{Filters: Filters{MinPrice: "cheap", MaxPrice: " "}})
	assert.Len(t, got, 4)

	got = Apply(catalogFixture(), SearchParams{Filters: Filters{MaxPrice: "10000"}})
	assert.Equal(t, []ListingID{3, 4}, ids(got))
}

func TestApplyCityAndGenderAreExact(t *testing.T) {
	assert.Empty(t, Apply(catalogFixture(), SearchParams{Filters: Filters{City: "bangalore"}}))
	assert.Equal(t, []ListingID{3, 4}, ids(Apply(catalogFixture(), SearchParams{Filters: Filters{Gender: GenderUnisex}})))
}

func TestApplySortOrders(t *testing.T) {
	assert.Equal(t, []ListingID{3, 4, 1, 2}, ids(Apply(catalogFixture(), SearchParams{Sort: SortByPriceAsc})))
	assert.Equal(t, []ListingID{2, 1, 4, 3}, ids(Apply(catalogFixture(), SearchParams{Sort: SortByPriceDesc})))
	assert.Equal(t, []ListingID{2, 4, 1, 3}, ids(Apply(catalogFixture(), SearchParams{Sort: SortByRatingDesc})))
	assert.Equal(t, []ListingID{3, 1, 4, 2}, ids(Apply(catalogFixture(), SearchParams{Sort: SortByRatingAsc})))
}

func TestApplyPriceAscIsReverseOfPriceDescWithoutTies(t *testing.T) {
	asc := ids(Apply(catalogFixture(), SearchParams{Sort: SortByPriceAsc}))
	desc := ids(Apply(catalogFixture(), SearchParams{Sort: SortByPriceDesc}))
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestApplySortIsStable(t *testing.T) {
	items := []*Listing{
		{ID: 1, Price: 5000, Rating: 4},
		{ID: 2, Price: 5000, Rating: 3},
		{ID: 3, Price: 4000, Rating: 4},
		{ID: 4, Price: 5000, Rating: 4},
	}
	assert.Equal(t, []ListingID{3, 1, 2, 4}, ids(Apply(items, SearchParams{Sort: SortByPriceAsc})))
	assert.Equal(t, []ListingID{1, 3, 4, 2}, ids(Apply(items, SearchParams{Sort: SortByRatingDesc})))
}

func TestApplyIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	items := catalogFixture()
	params := SearchParams{Query: "a", Filters: Filters{Amenities: []string{"wifi"}}, Sort: SortByRatingDesc}

	first := Apply(items, params)
	second := Apply(first, params)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, []ListingID{1, 2, 3, 4}, ids(items))
}

func TestApplyUnknownSortKeepsOrder(t *testing.T) {
	got := Apply(catalogFixture(), SearchParams{Sort: ParseSort("newest")})
	assert.Equal(t, []ListingID{1, 2, 3, 4}, ids(got))
}
