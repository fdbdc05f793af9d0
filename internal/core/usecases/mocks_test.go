package usecases_test

import (
	"context"
	"errors"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// --- Mock LayoutRepository ---

type mockLayoutRepo struct {
	saveFn    func(ctx context.Context, l *domain.Layout) error
	getByIDFn func(ctx context.Context, id string) (*domain.Layout, error)
	listFn    func(ctx context.Context, offset, limit int) ([]domain.LayoutSummary, int, error)
	deleteFn  func(ctx context.Context, id string) error

	saved []*domain.Layout
}

func (m *mockLayoutRepo) Save(ctx context.Context, l *domain.Layout) error {
	m.saved = append(m.saved, l)
	if m.saveFn != nil {
		return m.saveFn(ctx, l)
	}
	return nil
}

func (m *mockLayoutRepo) GetByID(ctx context.Context, id string) (*domain.Layout, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrLayoutNotFound
}

func (m *mockLayoutRepo) List(ctx context.Context, offset, limit int) ([]domain.LayoutSummary, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockLayoutRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	data    map[string][]byte
	ttls    map[string]int
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	computed []*domain.LayoutEvent
	deleted  []*domain.LayoutEvent
	err      error
}

func (m *mockPublisher) PublishLayoutComputed(ctx context.Context, ev *domain.LayoutEvent) error {
	m.computed = append(m.computed, ev)
	return m.err
}

func (m *mockPublisher) PublishLayoutDeleted(ctx context.Context, ev *domain.LayoutEvent) error {
	m.deleted = append(m.deleted, ev)
	return m.err
}

// --- Mock EventSubscriber ---

type mockSubscriber struct {
	handler func(ctx context.Context, ev *domain.LayoutEvent) error
}

func (m *mockSubscriber) SubscribeLayoutEvents(ctx context.Context, handler func(ctx context.Context, ev *domain.LayoutEvent) error) error {
	m.handler = handler
	return nil
}

// --- Fake FeatureSource ---

type fakeSource struct {
	fragments map[string][]domain.TrackFragment
	stations  []domain.StationFeature
	lines     []domain.TrackFragment
}

func (f *fakeSource) Fragments(ref string) []domain.TrackFragment { return f.fragments[ref] }

func (f *fakeSource) Stations(ref, towards string) []domain.StationFeature {
	var out []domain.StationFeature
	for _, s := range f.stations {
		if s.RouteRef == ref && (towards == "" || s.Towards == towards) {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSource) Lines() []domain.TrackFragment { return f.lines }

func frag(ref string, lonlat ...float64) domain.TrackFragment {
	f := domain.TrackFragment{RouteRef: ref}
	for i := 0; i+1 < len(lonlat); i += 2 {
		f.Coordinates = append(f.Coordinates, domain.GeoPoint{Lon: lonlat[i], Lat: lonlat[i+1]})
	}
	return f
}

func stop(ref, name string, lon, lat float64) domain.StationFeature {
	return domain.StationFeature{Name: name, RouteRef: ref, Towards: "Circular Quay", Location: domain.GeoPoint{Lon: lon, Lat: lat}}
}

// lightRail is two small routes about 100 m apart: L2 runs east then turns
// south, L3 runs straight east.
func lightRail() *fakeSource {
	return &fakeSource{
		fragments: map[string][]domain.TrackFragment{
			"L2": {
				frag("L2", 151.200, -33.900, 151.201, -33.900),
				frag("L2", 151.201, -33.901, 151.201, -33.900),
			},
			"L3": {
				frag("L3", 151.200, -33.899, 151.203, -33.899),
			},
		},
		stations: []domain.StationFeature{
			stop("L2", "Central", 151.2005, -33.9001),
			stop("L2", "Moore Park", 151.2011, -33.9005),
			stop("L3", "Central", 151.2005, -33.8991),
			stop("L3", "Kensington", 151.2025, -33.8991),
		},
	}
}
