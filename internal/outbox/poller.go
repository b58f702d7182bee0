// Package outbox publishes confirmed orders to the event stream. Events
// are written to the local database at confirmation time and drained
// here, so an order survives a broker outage and is retried on the next
// tick.
package outbox

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/store"
)

const DefaultTopic = "order-confirmed"

// MessageWriter is the slice of kafka.Writer the poller needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	tick      time.Duration
	batchSize int
	events    store.EventLog
	writer    MessageWriter
}

func NewPoller(events store.EventLog, writer MessageWriter) *Poller {
	return &Poller{
		tick:      time.Second,
		batchSize: 100,
		events:    events,
		writer:    writer,
	}
}

// NewKafkaWriter builds the writer the poller publishes through.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.events.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		log.Printf("failed to fetch order events: %v", err)
		return
	}

	for _, event := range events {
		errPublish := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.CreatedAt.UTC().Format(time.RFC3339Nano)),
			Value: event.Payload,
		})
		if errPublish != nil {
			log.Printf("failed to publish order event id = %v with error %v", event.ID, errPublish)
			continue
		}

		errMark := p.events.MarkEventAsProcessed(ctx, event.ID)
		if errMark != nil {
			log.Printf("failed to mark order event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}
