package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "pgfinder/internal/app/outbox"
)

type published struct {
	topic string
	key   string
}

type recordingPublisher struct {
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, _ []byte, _ map[string]string) error {
	p.sent = append(p.sent, published{topic: topic, key: key})
	return p.err
}

func TestOutboxFlushPublishesAndClears(t *testing.T) {
	pub := &recordingPublisher{}
	box := &Outbox{Publisher: pub, TopicPrefix: "test."}
	ctx := context.Background()

	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "booking.approved", Aggregate: "42", Payload: []byte(`{}`)}))
	require.Len(t, box.Pending(), 1)

	require.NoError(t, box.Flush(ctx))
	assert.Empty(t, box.Pending())
	assert.Equal(t, []published{{topic: "test.booking.events.v1", key: "42"}}, pub.sent)
}

func TestOutboxFlushSwallowsPublishErrors(t *testing.T) {
	box := &Outbox{Publisher: &recordingPublisher{err: errors.New("broker down")}}
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{Name: "listing.created", Payload: []byte(`{}`)}))

	assert.NoError(t, box.Flush(ctx))
	assert.Empty(t, box.Pending())
}
