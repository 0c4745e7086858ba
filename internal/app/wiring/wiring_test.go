package wiring

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	bookingapp "pgfinder/internal/app/handlers/booking"
	listingapp "pgfinder/internal/app/handlers/listings"
	meapp "pgfinder/internal/app/handlers/me"
	reviewsapp "pgfinder/internal/app/handlers/reviews"
	"pgfinder/internal/app/middleware"
	"pgfinder/internal/app/queries"
	authsvc "pgfinder/internal/app/services/auth"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
	"pgfinder/internal/infra/storage/kv"
	"pgfinder/internal/infra/storage/memory"
)

type publishedEvent struct {
	topic string
	key   string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, _ []byte, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type fixture struct {
	buses     Buses
	published *recordingPublisher
	owner     context.Context
	student   context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	published := &recordingPublisher{}
	relay := &memory.Outbox{Publisher: published}
	factory := &kv.Factory{Store: store, Relay: relay}
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	buses := Build(Deps{
		UoW:         factory,
		Relay:       relay,
		Idempotency: kv.IdempotencyStore{Store: store},
		Now:         func() time.Time { return clock },
	})

	owner := authsvc.ContextWithSession(context.Background(), &domainauth.Session{Token: "o", Kind: domainauth.KindOwner})
	student := authsvc.ContextWithSession(context.Background(), &domainauth.Session{
		Token:  "s",
		Kind:   domainauth.KindStudent,
		Marker: domainauth.Marker{Name: "Asha", Email: "asha@example.com"},
	})
	return fixture{buses: buses, published: published, owner: owner, student: student}
}

func details(name string, rooms int) domainlistings.Details {
	return domainlistings.Details{
		Name:           name,
		City:           "Bangalore",
		Area:           "Koramangala",
		Price:          12000,
		Gender:         domainlistings.GenderUnisex,
		Amenities:      []string{"wifi", "food"},
		AvailableRooms: rooms,
	}
}

func (f fixture) createListing(t *testing.T, name string, rooms int) *dto.Listing {
	t.Helper()
	out, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](f.owner, f.buses.Commands, listingapp.CreateListingCommand{Details: details(name, rooms)})
	require.NoError(t, err)
	return out
}

func (f fixture) requestBooking(ctx context.Context, listingID int64, key string) (*dto.Booking, error) {
	return commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](ctx, f.buses.Commands, bookingapp.RequestBookingCommand{
		ListingID:       domainlistings.ListingID(listingID),
		Name:            "Asha",
		Email:           "asha@example.com",
		Phone:           "9876543210",
		MoveInDate:      "2024-06-01",
		IdempotencyKeyV: key,
	})
}

func (f fixture) decide(bookingID int64, status domainbooking.Status) (*dto.BookingDecision, error) {
	return commands.Dispatch[bookingapp.DecideBookingCommand, *dto.BookingDecision](f.owner, f.buses.Commands, bookingapp.DecideBookingCommand{
		BookingID: domainbooking.BookingID(bookingID),
		Status:    status,
	})
}

func (f fixture) listing(t *testing.T, id int64) dto.Listing {
	t.Helper()
	out, err := queries.Ask[listingapp.GetListingQuery, dto.Listing](context.Background(), f.buses.Queries, listingapp.GetListingQuery{ListingID: domainlistings.ListingID(id)})
	require.NoError(t, err)
	return out
}

func TestListingIDsAreMaxPlusOne(t *testing.T) {
	f := newFixture(t)

	first := f.createListing(t, "Comfort Stay", 2)
	second := f.createListing(t, "Elite Residency", 2)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Zero(t, second.Rating)
	assert.False(t, second.Verified)

	_, err := commands.Dispatch[listingapp.DeleteListingCommand, *dto.Listing](f.owner, f.buses.Commands, listingapp.DeleteListingCommand{ListingID: 2})
	require.NoError(t, err)

	third := f.createListing(t, "Student Hub", 1)
	assert.Equal(t, int64(2), third.ID)
}

func TestOwnerCommandsNeedOwnerSession(t *testing.T) {
	f := newFixture(t)
	cmd := listingapp.CreateListingCommand{Details: details("A", 1)}

	_, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](context.Background(), f.buses.Commands, cmd)
	assert.ErrorIs(t, err, authsvc.ErrUnauthenticated)

	_, err = commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](f.student, f.buses.Commands, cmd)
	assert.ErrorIs(t, err, authsvc.ErrForbidden)
}

func TestApprovalTakesOneRoomOnce(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, "Comfort Stay", 1)

	booking, err := f.requestBooking(f.student, listing.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, "Koramangala, Bangalore", booking.Listing.ListingLocation)
	assert.Equal(t, 12000, booking.Listing.Price)

	decision, err := f.decide(booking.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	assert.True(t, decision.Changed)
	require.NotNil(t, decision.RoomsRemaining)
	assert.Equal(t, 0, *decision.RoomsRemaining)

	again, err := f.decide(booking.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, 0, f.listing(t, listing.ID).AvailableRooms)

	_, err = f.decide(booking.ID, domainbooking.StatusRejected)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)

	_, err = f.requestBooking(f.student, listing.ID, "")
	assert.ErrorIs(t, err, domainbooking.ErrNoRoomsAvailable)
}

func TestRejectionKeepsRooms(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, "Comfort Stay", 2)
	booking, err := f.requestBooking(f.student, listing.ID, "")
	require.NoError(t, err)

	decision, err := f.decide(booking.ID, domainbooking.StatusRejected)
	require.NoError(t, err)
	assert.True(t, decision.Changed)
	assert.Nil(t, decision.RoomsRemaining)
	assert.Equal(t, 2, f.listing(t, listing.ID).AvailableRooms)
}

func TestDecisionStatusIsValidated(t *testing.T) {
	f := newFixture(t)
	_, err := f.decide(1, domainbooking.StatusPending)
	assert.ErrorIs(t, err, middleware.ErrInvalidInput)
}

func TestBookingRequestReplaysIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, "Comfort Stay", 3)

	first, err := f.requestBooking(f.student, listing.ID, "req-1")
	require.NoError(t, err)
	second, err := f.requestBooking(f.student, listing.ID, "req-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	board, err := queries.Ask[bookingapp.ListOwnerBookingsQuery, dto.OwnerBookingBoard](f.owner, f.buses.Queries, bookingapp.ListOwnerBookingsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, board.Total)
}

func TestDeletedListingLeavesOrphansOutOfOwnerBoard(t *testing.T) {
	f := newFixture(t)
	kept := f.createListing(t, "Comfort Stay", 2)
	gone := f.createListing(t, "Elite Residency", 2)
	_, err := f.requestBooking(f.student, kept.ID, "")
	require.NoError(t, err)
	orphan, err := f.requestBooking(f.student, gone.ID, "")
	require.NoError(t, err)

	_, err = commands.Dispatch[listingapp.DeleteListingCommand, *dto.Listing](f.owner, f.buses.Commands, listingapp.DeleteListingCommand{ListingID: domainlistings.ListingID(gone.ID)})
	require.NoError(t, err)

	board, err := queries.Ask[bookingapp.ListOwnerBookingsQuery, dto.OwnerBookingBoard](f.owner, f.buses.Queries, bookingapp.ListOwnerBookingsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, board.Total)
	require.Len(t, board.Pending, 1)
	assert.Equal(t, kept.ID, board.Pending[0].ListingID)

	// the booking itself is not removed
	got, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](context.Background(), f.buses.Queries, bookingapp.GetBookingQuery{BookingID: domainbooking.BookingID(orphan.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Elite Residency", got.Listing.ListingName)

	mine, err := queries.Ask[meapp.ListMyBookingsQuery, dto.BookingCollection](f.student, f.buses.Queries, meapp.ListMyBookingsQuery{Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
}

func TestReviewsRecomputeListingRating(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, "Comfort Stay", 2)
	add := func(rating int) (*dto.ReviewReceipt, error) {
		return commands.Dispatch[reviewsapp.AddReviewCommand, *dto.ReviewReceipt](context.Background(), f.buses.Commands, reviewsapp.AddReviewCommand{
			ListingID: domainlistings.ListingID(listing.ID),
			Name:      "Ravi",
			Rating:    rating,
			Comment:   "clean rooms",
		})
	}

	_, err := add(5)
	require.NoError(t, err)
	receipt, err := add(4)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, receipt.ListingRating, 1e-9)
	assert.NotEqual(t, receipt.Review.ID, int64(0))

	_, err = add(6)
	assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)
	assert.InDelta(t, 4.5, f.listing(t, listing.ID).Rating, 1e-9)

	reviews, err := queries.Ask[reviewsapp.ListReviewsQuery, dto.ReviewCollection](context.Background(), f.buses.Queries, reviewsapp.ListReviewsQuery{ListingID: domainlistings.ListingID(listing.ID)})
	require.NoError(t, err)
	assert.Equal(t, 2, reviews.Total)
	assert.InDelta(t, 4.5, reviews.Average, 1e-9)
	assert.Less(t, reviews.Items[0].ID, reviews.Items[1].ID)
}

func TestCatalogSearchThroughBus(t *testing.T) {
	f := newFixture(t)
	cheap := details("Student Hub", 1)
	cheap.Price = 8000
	cheap.City = "Delhi"
	_, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](f.owner, f.buses.Commands, listingapp.CreateListingCommand{Details: cheap})
	require.NoError(t, err)
	f.createListing(t, "Comfort Stay", 1)

	catalog, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](context.Background(), f.buses.Queries, listingapp.SearchCatalogQuery{
		Amenities: []string{"wifi"},
		Sort:      "price-desc",
	})
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Total)
	assert.Equal(t, "Comfort Stay", catalog.Items[0].Name)

	catalog, err = queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](context.Background(), f.buses.Queries, listingapp.SearchCatalogQuery{City: "Delhi"})
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Total)
	assert.Equal(t, "Student Hub", catalog.Items[0].Name)

	_, err = queries.Ask[listingapp.GetListingQuery, dto.Listing](context.Background(), f.buses.Queries, listingapp.GetListingQuery{ListingID: 99})
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestCommittedEventsArePublished(t *testing.T) {
	f := newFixture(t)
	listing := f.createListing(t, "Comfort Stay", 1)
	booking, err := f.requestBooking(f.student, listing.ID, "")
	require.NoError(t, err)
	_, err = f.decide(booking.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"listing.events.v1",
		"booking.events.v1",
		"booking.events.v1",
	}, f.published.topics())
}
