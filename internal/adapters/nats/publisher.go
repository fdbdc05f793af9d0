package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// Subjects of layout events. The layout ID is the last token.
const (
	StreamLayouts    = "RAILMAP_LAYOUTS"
	SubjectLayouts   = "railmap.layout.>"
	subjectComputed  = "railmap.layout.computed."
	subjectDeleted   = "railmap.layout.deleted."
	defaultRetention = 24 * time.Hour
)

// Subject returns the subject an event is published on.
func Subject(ev *domain.LayoutEvent) string {
	if ev.Type == "deleted" {
		return subjectDeleted + ev.LayoutID
	}
	return subjectComputed + ev.LayoutID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamLayouts,
		Subjects:  []string{SubjectLayouts},
		Retention: nats.InterestPolicy,
		MaxAge:    defaultRetention,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishLayoutComputed(ctx context.Context, ev *domain.LayoutEvent) error {
	return p.publish(ctx, ev)
}

func (p *Publisher) PublishLayoutDeleted(ctx context.Context, ev *domain.LayoutEvent) error {
	return p.publish(ctx, ev)
}

func (p *Publisher) publish(ctx context.Context, ev *domain.LayoutEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(Subject(ev), data, nats.Context(ctx))
	return err
}

// Conn exposes the connection for health checks and relays.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
