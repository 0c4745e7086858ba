package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddValidates(t *testing.T) {
	_, err := Add(AddParams{Name: "", Rating: 4, Comment: "ok"})
	assert.ErrorIs(t, err, ErrNameRequired)

	for _, rating := range []int{0, 6, -1} {
		_, err = Add(AddParams{Name: "a", Rating: rating, Comment: "ok"})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	_, err = Add(AddParams{Name: "a", Rating: 3, Comment: "  "})
	assert.ErrorIs(t, err, ErrCommentRequired)
}

func TestAddRecordsEvent(t *testing.T) {
	r, err := Add(AddParams{ID: 5, ListingID: 2, Name: "Ravi", Rating: 5, Comment: "clean rooms", Date: time.Now()})
	require.NoError(t, err)

	events := r.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "review.added", events[0].EventName())
	assert.Equal(t, "2", events[0].AggregateID())
}

func TestAverage(t *testing.T) {
	assert.Zero(t, Average(nil))
	assert.Equal(t, 4.0, Average([]*Review{{Rating: 4}}))
	assert.Equal(t, 3.0, Average([]*Review{{Rating: 4}, {Rating: 2}}))
	assert.InDelta(t, 4.333, Average([]*Review{{Rating: 4}, {Rating: 4}, {Rating: 5}}), 0.001)
}
