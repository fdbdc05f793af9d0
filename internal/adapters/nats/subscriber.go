package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects with its own connection. durable names the
// consumer, so restarted workers resume where they stopped.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

func (s *Subscriber) SubscribeLayoutEvents(ctx context.Context, handler func(ctx context.Context, ev *domain.LayoutEvent) error) error {
	sub, err := s.js.Subscribe(SubjectLayouts, func(msg *nats.Msg) {
		if err := handleLayoutEvent(ctx, msg.Data, handler); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func handleLayoutEvent(ctx context.Context, data []byte, handler func(ctx context.Context, ev *domain.LayoutEvent) error) error {
	var ev domain.LayoutEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode layout event: %w", err)
	}
	return handler(ctx, &ev)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
