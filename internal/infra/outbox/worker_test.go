package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "pgfinder/internal/app/outbox"
)

func TestTopicUsesAggregatePrefix(t *testing.T) {
	assert.Equal(t, "booking.events.v1", Topic("", "booking.approved"))
	assert.Equal(t, "dev.listing.events.v1", Topic("dev.", "listing.status_changed"))
	assert.Equal(t, []string{"p.listing.events.v1", "p.booking.events.v1", "p.review.events.v1"}, Topics("p."))
}

func TestCloudEventWrapsPayload(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "review.added",
		Payload:    []byte(`{"ListingID":3,"Rating":5}`),
		OccurredAt: at,
		Aggregate:  "3",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}

	payload, headers, err := CloudEvent(rec, DefaultSource)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(payload, &doc))
	assert.Equal(t, "1.0", doc["specversion"])
	assert.Equal(t, "evt-1", doc["id"])
	assert.Equal(t, "review.added.v1", doc["type"])
	assert.Equal(t, "app://pgfinder", doc["source"])
	assert.Equal(t, "3", doc["subject"])
	assert.Equal(t, "00-abc-def-01", doc["traceparent"])
	assert.Equal(t, map[string]any{"ListingID": float64(3), "Rating": float64(5)}, doc["data"])
	assert.Equal(t, "application/cloudevents+json", headers["content-type"])
}

func TestCloudEventRejectsNonObjectPayload(t *testing.T) {
	_, _, err := CloudEvent(appoutbox.EventRecord{Name: "x.y", Payload: []byte(`nope`)}, DefaultSource)
	assert.Error(t, err)
}

func TestNextRetryUsesBackoffSchedule(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}
	before := time.Now()

	assert.WithinDuration(t, before.Add(time.Second), w.nextRetry(0), time.Second)
	assert.WithinDuration(t, before.Add(time.Minute), w.nextRetry(5), time.Second)
	assert.WithinDuration(t, before.Add(5*time.Second), (&Worker{}).nextRetry(0), time.Second)
}
