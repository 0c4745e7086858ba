package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "pgfinder/internal/app/outbox"
	infraoutbox "pgfinder/internal/infra/outbox"
)

// Publisher matches the Kafka producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Outbox keeps committed records until Flush. With a Publisher configured the
// records are published on Flush; failures are logged and dropped.
type Outbox struct {
	Publisher   Publisher
	TopicPrefix string
	Logger      *slog.Logger

	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	records := o.records
	o.records = nil
	o.mu.Unlock()

	for _, rec := range records {
		o.logger().Debug("event committed", "event", rec.Name, "aggregate", rec.Aggregate, "event_id", rec.ID)
		if o.Publisher == nil {
			continue
		}
		topic := infraoutbox.Topic(o.TopicPrefix, rec.Name)
		payload, headers, err := infraoutbox.CloudEvent(rec, infraoutbox.DefaultSource)
		if err != nil {
			o.logger().Warn("event encode failed", "event", rec.Name, "error", err)
			continue
		}
		if err := o.Publisher.Publish(ctx, topic, rec.Aggregate, payload, headers); err != nil {
			o.logger().Warn("event publish failed", "event", rec.Name, "topic", topic, "error", err)
		}
	}
	return nil
}

// Pending returns a copy of the records not yet flushed.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

func (o *Outbox) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
