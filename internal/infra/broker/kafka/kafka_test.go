package kafka

import (
	"bytes"
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}

func TestProducerPublishSendsHeadersAndKey(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		assert.JSONEq(t, `{"ok":true}`, string(val))
		return nil
	})
	p := &Producer{sync: mock}

	err := p.Publish(context.Background(), "booking.events.v1", "7", []byte(`{"ok":true}`), map[string]string{"content-type": "application/json"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestMessageCarriesHeaders(t *testing.T) {
	msg := message("t", "k", []byte("v"), map[string]string{"a": "b"})
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "a", string(msg.Headers[0].Key))
	key, err := msg.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "k", string(key))
}

func TestPrintHandler(t *testing.T) {
	var buf bytes.Buffer
	err := PrintHandler(&buf).Handle(context.Background(), &sarama.ConsumerMessage{Topic: "review.events.v1", Key: []byte("3"), Value: []byte("{}")})
	require.NoError(t, err)
	assert.Equal(t, "review.events.v1\t3\t{}\n", buf.String())
}
