package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{Name: "Comfort Stay", City: "Bangalore", Area: "BTM", Price: 9000, Gender: GenderUnisex, Amenities: []string{"wifi", " wifi", "food"}, AvailableRooms: 1}
}

func TestNewListingStartsUnratedAndUnverified(t *testing.T) {
	l, err := NewListing(3, validDetails(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, ListingID(3), l.ID)
	assert.Zero(t, l.Rating)
	assert.False(t, l.Verified)
	assert.Equal(t, Vacant, l.Status)
	assert.Equal(t, []string{"wifi", "food"}, l.Amenities)
	assert.Equal(t, "BTM, Bangalore", l.Location())
}

func TestNewListingValidates(t *testing.T) {
	d := validDetails()
	d.Price = -1
	_, err := NewListing(1, d, time.Now())
	assert.ErrorIs(t, err, ErrNegativePrice)

	d = validDetails()
	d.Gender = "Any"
	_, err = NewListing(1, d, time.Now())
	assert.ErrorIs(t, err, ErrInvalidGender)
}

func TestReplaceKeepsDerivedFields(t *testing.T) {
	l, err := NewListing(1, validDetails(), time.Now())
	require.NoError(t, err)
	l.Rating = 4.5
	l.Verified = true

	d := validDetails()
	d.Name = "Renamed"
	require.NoError(t, l.Replace(d, time.Now()))

	assert.Equal(t, "Renamed", l.Name)
	assert.Equal(t, 4.5, l.Rating)
	assert.True(t, l.Verified)
}

func TestTakeRoomStopsAtZero(t *testing.T) {
	l := &Listing{AvailableRooms: 1}
	assert.True(t, l.TakeRoom())
	assert.False(t, l.TakeRoom())
	assert.Zero(t, l.AvailableRooms)
}

func TestSetOccupancyIgnoresRoomCount(t *testing.T) {
	l := &Listing{ID: 1, AvailableRooms: 4, Status: Vacant}
	require.NoError(t, l.SetOccupancy(Occupied, time.Now()))
	assert.Equal(t, Occupied, l.Status)
	assert.Equal(t, 4, l.AvailableRooms)
	assert.Len(t, l.PendingEvents(), 1)

	require.NoError(t, l.SetOccupancy(Occupied, time.Now()))
	assert.Len(t, l.PendingEvents(), 1)
	assert.ErrorIs(t, l.SetOccupancy("full", time.Now()), ErrInvalidStatus)
}

func TestNextIDIsMaxPlusOne(t *testing.T) {
	assert.Equal(t, ListingID(1), NextID(nil))
	assert.Equal(t, ListingID(10), NextID([]*Listing{{ID: 3}, {ID: 9}, {ID: 1}}))
}
