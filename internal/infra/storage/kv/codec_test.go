package kv_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgfinder/internal/infra/storage/kv"
)

type plainRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestEncodeWritesVersionedEnvelope(t *testing.T) {
	raw, err := kv.Encode(kv.SchemaListings, []plainRecord{{ID: 1, Name: "a"}})
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.JSONEq(t, `"listings"`, string(env["schema"]))
	assert.JSONEq(t, `1`, string(env["version"]))
	assert.JSONEq(t, `[{"id":1,"name":"a"}]`, string(env["data"]))
}

func TestDecodeAcceptsEnvelopeAndLegacyArray(t *testing.T) {
	var fromEnvelope []plainRecord
	require.NoError(t, kv.Decode("k", "things", []byte(`{"schema":"things","version":1,"data":[{"id":2,"name":"b"}]}`), &fromEnvelope))
	assert.Equal(t, []plainRecord{{ID: 2, Name: "b"}}, fromEnvelope)

	var fromArray []plainRecord
	require.NoError(t, kv.Decode("k", "things", []byte(` [{"id":3,"name":"c"}]`), &fromArray))
	assert.Equal(t, []plainRecord{{ID: 3, Name: "c"}}, fromArray)
}

func TestDecodeReportsCorruptionWithKey(t *testing.T) {
	cases := map[string]string{
		"empty":        ``,
		"scalar":       `42`,
		"bad json":     `[{"id":`,
		"wrong schema": `{"schema":"users","version":1,"data":[]}`,
		"future":       `{"schema":"things","version":7,"data":[]}`,
		"no data":      `{"schema":"things","version":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var out []plainRecord
			err := kv.Decode("reviews_9", "things", []byte(raw), &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, kv.ErrCorrupt)
			var ce *kv.CorruptError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, "reviews_9", ce.Key)
		})
	}
}
