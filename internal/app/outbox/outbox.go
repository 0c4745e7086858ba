package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pgfinder/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Staged buffers records for a single unit of work.
type Staged struct {
	records []EventRecord
}

func (s *Staged) Add(_ context.Context, record EventRecord) error {
	s.records = append(s.records, record)
	return nil
}

// Flush is a no-op; the owning unit releases records through Release.
func (s *Staged) Flush(context.Context) error { return nil }

// Release hands the buffered records to box and empties the buffer.
func (s *Staged) Release(ctx context.Context, box Outbox) error {
	records := s.records
	s.records = nil
	if box == nil {
		return nil
	}
	for _, rec := range records {
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Staged) Len() int { return len(s.records) }
