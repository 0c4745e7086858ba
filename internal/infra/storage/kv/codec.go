package kv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentVersion is written by Encode. Version 0 is the bare-array layout kept
// by older clients and is accepted on read only.
const CurrentVersion = 1

const (
	SchemaListings    = "listings"
	SchemaUsers       = "users"
	SchemaBookings    = "bookings"
	SchemaReviews     = "reviews"
	SchemaSession     = "session"
	SchemaIdempotency = "idempotency"
)

type envelope struct {
	Schema  string          `json:"schema"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type validator interface {
	validate() error
}

func Encode(schema string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("kv: encode %s: %w", schema, err)
	}
	return json.Marshal(envelope{Schema: schema, Version: CurrentVersion, Data: raw})
}

// Decode unpacks raw into out and validates every decoded record. Any failure
// is reported as a *CorruptError for key.
func Decode(key, schema string, raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return corrupt(key, errors.New("empty value"))
	}
	var payload []byte
	switch trimmed[0] {
	case '[':
		payload = trimmed
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return corrupt(key, err)
		}
		if env.Schema != schema {
			return corrupt(key, fmt.Errorf("schema %q, want %q", env.Schema, schema))
		}
		if env.Version != CurrentVersion {
			return corrupt(key, fmt.Errorf("unsupported version %d", env.Version))
		}
		if len(env.Data) == 0 {
			return corrupt(key, errors.New("missing data"))
		}
		payload = env.Data
	default:
		return corrupt(key, errors.New("not a json array or envelope"))
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(out); err != nil {
		return corrupt(key, err)
	}
	if err := validateDecoded(out); err != nil {
		return corrupt(key, err)
	}
	return nil
}

func validateDecoded(out any) error {
	switch v := out.(type) {
	case *[]listingRecord:
		return validateAll(*v)
	case *[]bookingRecord:
		return validateAll(*v)
	case *[]reviewRecord:
		return validateAll(*v)
	case *[]userRecord:
		return validateAll(*v)
	case validator:
		return v.validate()
	}
	return nil
}

func validateAll[T validator](items []T) error {
	for i, item := range items {
		if err := item.validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
