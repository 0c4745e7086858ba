package inbox

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfinder/internal/infra/broker/kafka"
)

type memorySeen struct {
	ids map[string]bool
	err error
}

func (m *memorySeen) Seen(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.ids == nil {
		m.ids = map[string]bool{}
	}
	dup := m.ids[id]
	m.ids[id] = true
	return dup, nil
}

func TestFilterPrintsEachEventOnce(t *testing.T) {
	var out bytes.Buffer
	h := Filter(&memorySeen{}, kafka.PrintHandler(&out), nil)
	msg := &sarama.ConsumerMessage{Topic: "booking.events.v1", Key: []byte("7"), Value: []byte(`{"id":"evt-1","type":"booking.requested.v1"}`)}

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))

	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestFilterPassesNonCloudEvents(t *testing.T) {
	var out bytes.Buffer
	h := Filter(&memorySeen{}, kafka.PrintHandler(&out), nil)
	msg := &sarama.ConsumerMessage{Topic: "raw", Value: []byte("plain text")}

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))

	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestFilterReturnsStoreErrors(t *testing.T) {
	boom := errors.New("down")
	var out bytes.Buffer
	h := Filter(&memorySeen{err: boom}, kafka.PrintHandler(&out), nil)

	err := h.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{"id":"x"}`)})

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, out.Len())
}
