package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-contract-review-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one event. A returned error triggers redelivery.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber consumes contract lifecycle events through a durable JetStream
// consumer, so restarts pick up where the last acknowledged event left off.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a handler for a subject pattern on the contract events
// stream. Envelopes that cannot be decoded are acknowledged and dropped;
// redelivering them would fail the same way.
func (s *Subscriber) Subscribe(subject string, durableName string, handler EventHandler) error {
	ctx := context.Background()

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		event, err := decode(msg.Subject(), msg.Data())
		if err != nil {
			log.Printf("Dropping undecodable event on %s: %v", msg.Subject(), err)
			msg.Ack()
			return
		}

		if err := handler(context.Background(), event); err != nil {
			log.Printf("Handler failed for event %s: %v", event.EventType(), err)
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// decode restores the event from its wire envelope. The envelope carries the
// event type and occurrence time, so neither is inferred from the subject or
// stamped at reception.
func decode(subject string, data []byte) (events.Event, error) {
	var envelope events.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("envelope on %s has no event type", subject)
	}

	return events.BaseEvent{
		Type:       envelope.Type,
		Data:       envelope.Data,
		OccurredAt: envelope.OccurredAt,
	}, nil
}

func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
