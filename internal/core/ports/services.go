package ports

import (
	"context"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLayoutComputed(ctx context.Context, event *domain.LayoutEvent) error
	PublishLayoutDeleted(ctx context.Context, event *domain.LayoutEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeLayoutEvents(ctx context.Context, handler func(ctx context.Context, event *domain.LayoutEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// FeatureSource yields the route and station features of an exported rail
// network.
type FeatureSource interface {
	// Fragments returns the track pieces whose first relation has the ref.
	Fragments(ref string) []domain.TrackFragment
	// Stations returns the stops of ref; an empty towards matches any direction.
	Stations(ref, towards string) []domain.StationFeature
	// Lines returns every line geometry regardless of properties.
	Lines() []domain.TrackFragment
}
