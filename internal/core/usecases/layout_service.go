package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/geometry"
	"github.com/samirrijal/railmap/internal/core/ports"
	"github.com/samirrijal/railmap/internal/pkg/board"
	"github.com/samirrijal/railmap/internal/pkg/geospatial"
	"github.com/samirrijal/railmap/internal/pkg/metrics"
	"github.com/samirrijal/railmap/internal/pkg/telemetry"
)

// ErrInvalidRequest marks problems with the request itself, found before
// any geometry runs.
var ErrInvalidRequest = errors.New("invalid request")

// LayoutOptions are the configured defaults a request can override.
type LayoutOptions struct {
	Tolerances      geometry.Tolerances
	MarkerSpacing   float64
	MarkerRefPrefix string
	MarkerRefStart  int
	CacheTTL        int // seconds
	Board           board.Transform
}

// LayoutService computes, stores and serves layouts.
type LayoutService struct {
	layouts ports.LayoutRepository
	cache   ports.CacheService
	events  ports.EventPublisher
	opts    LayoutOptions

	now   func() time.Time
	newID func() string
}

// NewLayoutService creates a new LayoutService. cache and events may be nil.
func NewLayoutService(layouts ports.LayoutRepository, cache ports.CacheService, events ports.EventPublisher, opts LayoutOptions) *LayoutService {
	return &LayoutService{
		layouts: layouts,
		cache:   cache,
		events:  events,
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock replaces the time and ID sources, for tests.
func (s *LayoutService) WithClock(now func() time.Time, newID func() string) *LayoutService {
	s.now, s.newID = now, newID
	return s
}

// Compute builds a layout from src, persists it and announces it.
func (s *LayoutService) Compute(ctx context.Context, src ports.FeatureSource, req domain.LayoutRequest) (*domain.Layout, error) {
	start := time.Now()
	layout, err := s.Build(ctx, src, req)
	if err != nil {
		metrics.LayoutsComputed.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	if err := s.Store(ctx, layout); err != nil {
		metrics.LayoutsComputed.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LayoutsComputed.WithLabelValues("ok").Inc()
	metrics.LayoutComputeDuration.Observe(time.Since(start).Seconds())
	return layout, nil
}

// Build runs the geometry pipeline without persisting anything.
func (s *LayoutService) Build(ctx context.Context, src ports.FeatureSource, req domain.LayoutRequest) (*domain.Layout, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLayoutCompute)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrLayoutName, req.Name))

	layout, err := s.build(ctx, src, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String(telemetry.AttrLayoutID, layout.ID),
		attribute.Int(telemetry.AttrMarkers, len(layout.Markers)),
		attribute.Int(telemetry.AttrStations, len(layout.Stations)),
	)
	return layout, nil
}

// route is one request route on its way through the pipeline.
type route struct {
	spec     domain.RouteSpec
	geo      orb.LineString // lon/lat
	path     *geometry.Polyline
	segments geometry.Segmentation
	stations []domain.StationFeature
}

func (s *LayoutService) build(ctx context.Context, src ports.FeatureSource, req domain.LayoutRequest) (*domain.Layout, error) {
	if len(req.Routes) == 0 {
		return nil, fmt.Errorf("%w: at least one route is required", ErrInvalidRequest)
	}
	tol := s.opts.Tolerances
	spacing := req.MarkerSpacing
	if spacing == 0 {
		spacing = s.opts.MarkerSpacing
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: marker spacing must be positive, got %g", ErrInvalidRequest, spacing)
	}

	routes := make([]*route, 0, len(req.Routes))
	for _, spec := range req.Routes {
		r, err := s.selectRoute(ctx, src, spec)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}

	lines := make([]orb.LineString, len(routes))
	for i, r := range routes {
		lines[i] = r.geo
	}
	origin := geospatial.OriginOf(lines...)
	proj := geospatial.NewProjector(origin)

	layout := &domain.Layout{
		ID:        s.newID(),
		Name:      req.Name,
		Origin:    origin,
		CreatedAt: s.now().UTC(),
	}

	for _, r := range routes {
		pl, err := geometry.NewPolyline(proj.LineToPlanar(r.geo))
		if err != nil {
			return nil, s.geometryErr(r.spec.Ref, "flatten", err)
		}
		r.path = pl

		seen := make(map[string]bool)
		var stations []geometry.Station
		for _, st := range src.Stations(r.spec.Ref, r.spec.Towards) {
			if strings.TrimSpace(st.Name) == "" {
				slog.WarnContext(ctx, "skipping station without a name",
					"route", r.spec.Ref, "lon", st.Location.Lon, "lat", st.Location.Lat)
				continue
			}
			if seen[st.Name] {
				continue
			}
			seen[st.Name] = true
			r.stations = append(r.stations, st)
			stations = append(stations, geometry.Station{Label: st.Name, Point: proj.ToPlanar(st.Location)})
		}
		r.segments, err = geometry.SegmentStations(pl, stations, tol)
		if err != nil {
			return nil, s.geometryErr(r.spec.Ref, "segment", err)
		}

		layout.Routes = append(layout.Routes, domain.RoutePath{
			Ref:    r.spec.Ref,
			Length: pl.Length(),
			Points: toPairs(pl.Points()),
		})
		slog.DebugContext(ctx, "route flattened",
			"route", r.spec.Ref,
			"vertices", pl.NumPoints(),
			"planar_length", pl.Length(),
			"geodesic_length", geospatial.PathLength(toPairs(r.geo)),
			"stations", len(stations),
			"segments", len(r.segments.Segments),
		)
	}

	prefix := req.MarkerRefPrefix
	if prefix == "" {
		prefix = s.opts.MarkerRefPrefix
	}
	next := s.opts.MarkerRefStart
	if req.MarkerRefStart != nil {
		next = *req.MarkerRefStart
	}
	for _, r := range routes {
		markers, err := geometry.Markers(r.segments.Segments, spacing, tol)
		if err != nil {
			return nil, s.geometryErr(r.spec.Ref, "markers", err)
		}
		for _, m := range markers {
			layout.Markers = append(layout.Markers, domain.MarkerPlacement{
				Ref:         prefix + strconv.Itoa(next),
				X:           m.Point[0],
				Y:           m.Point[1],
				Orientation: m.Orientation,
				RouteRef:    r.spec.Ref,
				Segment:     segmentName(r.segments.Segments, m.S),
				Label:       m.Label,
			})
			next++
		}
		metrics.MarkersPlaced.WithLabelValues(r.spec.Ref).Add(float64(len(markers)))
	}

	stations, err := s.placeStations(routes)
	if err != nil {
		return nil, err
	}
	layout.Stations = stations

	tr := s.opts.Board
	if req.Board != nil {
		tr = board.FromSpec(*req.Board)
	}
	if tr.Scale > 0 {
		for _, m := range layout.Markers {
			layout.Footprints = append(layout.Footprints, tr.Footprint(m.Ref, m.X, m.Y, m.Orientation))
		}
		for _, st := range layout.Stations {
			layout.Footprints = append(layout.Footprints, tr.Footprint(st.Name, st.X, st.Y, st.Orientation))
		}
	}

	return layout, nil
}

// selectRoute merges a route's fragments in lon/lat and keeps one component.
func (s *LayoutService) selectRoute(ctx context.Context, src ports.FeatureSource, spec domain.RouteSpec) (*route, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanLayoutRoute)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrRouteRef, spec.Ref))

	frags := src.Fragments(spec.Ref)
	if len(frags) == 0 {
		return nil, fmt.Errorf("%w: route %s has no track fragments", ErrInvalidRequest, spec.Ref)
	}
	lines := make([]orb.LineString, len(frags))
	for i, f := range frags {
		lines[i] = toLineString(f.Coordinates)
	}

	paths, err := geometry.Merge(lines, s.opts.Tolerances)
	if err != nil {
		return nil, s.geometryErr(spec.Ref, "merge", err)
	}
	span.SetAttributes(
		attribute.Int(telemetry.AttrFragments, len(frags)),
		attribute.Int(telemetry.AttrComponents, len(paths)),
	)

	path := paths[0]
	if len(paths) > 1 {
		switch {
		case spec.Via != nil:
			radius := spec.ViaRadius
			if radius <= 0 {
				radius = DefaultViaRadius
			}
			var ok bool
			if path, ok = paths.Select(passesVia(*spec.Via, radius)); !ok {
				return nil, fmt.Errorf("%w: no path of route %s passes within %g m of %+v",
					ErrInvalidRequest, spec.Ref, radius, *spec.Via)
			}
		case spec.Anchor != nil:
			path, _ = paths.Nearest(orb.Point{spec.Anchor.Lon, spec.Anchor.Lat})
		default:
			return nil, fmt.Errorf("%w: route %s merges into %d separate paths, an anchor is needed to pick one",
				ErrInvalidRequest, spec.Ref, len(paths))
		}
	}
	return &route{spec: spec, geo: path.Points()}, nil
}

// DefaultViaRadius is the ViaRadius used when a route leaves it unset.
const DefaultViaRadius = 25.0

// passesVia measures in metres by flattening each lon/lat path about via.
func passesVia(via domain.GeoPoint, radius float64) geometry.PathPredicate {
	proj := geospatial.NewProjector(via)
	near := geometry.PassesWithin(orb.Point{0, 0}, radius)
	return func(p *geometry.Polyline) bool {
		flat, err := geometry.NewPolyline(proj.LineToPlanar(p.Points()))
		return err == nil && near(flat)
	}
}

// placeStations assigns every distinct station to the route its projected
// point lies closest to. Ties go to the earlier route.
func (s *LayoutService) placeStations(routes []*route) ([]domain.StationPlacement, error) {
	var out []domain.StationPlacement
	placed := make(map[string]bool)
	for _, r := range routes {
		for i, st := range r.stations {
			if placed[st.Name] {
				continue
			}
			placed[st.Name] = true

			own, ok := r.segments.Station(i)
			if !ok {
				continue
			}
			var best *route
			bestDist := math.Inf(1)
			for _, other := range routes {
				if d := other.path.DistanceTo(own.Point); d < bestDist {
					best, bestDist = other, d
				}
			}

			rad, _, err := geometry.TangentAt(best.path, own.Point, s.opts.Tolerances)
			if err != nil {
				return nil, s.geometryErr(best.spec.Ref, "station "+st.Name, err)
			}
			out = append(out, domain.StationPlacement{
				Name:        st.Name,
				RouteRef:    best.spec.Ref,
				X:           own.Point[0],
				Y:           own.Point[1],
				Orientation: geometry.Degrees(rad),
				Distance:    own.Distance,
			})
		}
	}
	return out, nil
}

// Store saves the layout, warms the cache and publishes the event. A
// failed publish is logged, not returned.
func (s *LayoutService) Store(ctx context.Context, layout *domain.Layout) error {
	if err := s.Persist(ctx, layout); err != nil {
		return err
	}
	if err := s.Announce(ctx, layout); err != nil {
		slog.WarnContext(ctx, "publish layout computed", "layout_id", layout.ID, "error", err)
	}
	slog.InfoContext(ctx, "layout stored",
		"layout_id", layout.ID,
		"name", layout.Name,
		"markers", len(layout.Markers),
		"stations", len(layout.Stations),
	)
	return nil
}

// Persist saves the layout and warms the cache.
func (s *LayoutService) Persist(ctx context.Context, layout *domain.Layout) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLayoutPersist)
	defer span.End()

	if err := s.layouts.Save(ctx, layout); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save layout: %w", err)
	}
	s.cacheLayout(ctx, layout)
	return nil
}

// Announce publishes layout.computed. It is a no-op without a publisher.
func (s *LayoutService) Announce(ctx context.Context, layout *domain.Layout) error {
	if s.events == nil {
		return nil
	}
	ev := &domain.LayoutEvent{
		Type:     "computed",
		LayoutID: layout.ID,
		Name:     layout.Name,
		Markers:  len(layout.Markers),
		Stations: len(layout.Stations),
		Time:     s.now().UTC(),
	}
	if err := s.events.PublishLayoutComputed(ctx, ev); err != nil {
		return fmt.Errorf("publish layout %s: %w", layout.ID, err)
	}
	return nil
}

// GetByID returns a layout, from cache when possible.
func (s *LayoutService) GetByID(ctx context.Context, id string) (*domain.Layout, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, layoutKey(id)); err == nil {
			var l domain.Layout
			if err := json.Unmarshal(data, &l); err == nil {
				metrics.CacheHits.WithLabelValues("layout").Inc()
				return &l, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("layout").Inc()
	}

	l, err := s.layouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheLayout(ctx, l)
	return l, nil
}

// List returns layout summaries, newest first, and the total count.
func (s *LayoutService) List(ctx context.Context, offset, limit int) ([]domain.LayoutSummary, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.layouts.List(ctx, offset, limit)
}

// Delete removes a layout and announces it.
func (s *LayoutService) Delete(ctx context.Context, id string) error {
	if err := s.layouts.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, layoutKey(id))
	}
	if s.events != nil {
		ev := &domain.LayoutEvent{Type: "deleted", LayoutID: id, Time: s.now().UTC()}
		if err := s.events.PublishLayoutDeleted(ctx, ev); err != nil {
			slog.WarnContext(ctx, "publish layout deleted", "layout_id", id, "error", err)
		}
	}
	return nil
}

// Evict drops a cached layout; used when another instance deleted it.
func (s *LayoutService) Evict(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, layoutKey(id))
	}
}

// EvictOnDelete subscribes to layout events and drops layouts deleted by any
// instance from the cache.
func (s *LayoutService) EvictOnDelete(ctx context.Context, sub ports.EventSubscriber) error {
	return sub.SubscribeLayoutEvents(ctx, func(ctx context.Context, ev *domain.LayoutEvent) error {
		if ev.Type == "deleted" {
			s.Evict(ctx, ev.LayoutID)
			slog.DebugContext(ctx, "layout evicted", "layout_id", ev.LayoutID)
		}
		return nil
	})
}

func (s *LayoutService) cacheLayout(ctx context.Context, l *domain.Layout) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	if data, err := json.Marshal(l); err == nil {
		_ = s.cache.Set(ctx, layoutKey(l.ID), data, s.opts.CacheTTL)
	}
}

func (s *LayoutService) geometryErr(ref, stage string, err error) error {
	metrics.GeometryErrors.WithLabelValues(geometryKind(err)).Inc()
	return fmt.Errorf("route %s: %s: %w", ref, stage, err)
}

func layoutKey(id string) string { return "layouts:id:" + id }

// segmentName names the segment containing arc length sv as "from-to".
func segmentName(segs []geometry.Segment, sv float64) string {
	for i, seg := range segs {
		if sv < seg.EndS || i == len(segs)-1 {
			return seg.From + "-" + seg.To
		}
	}
	return ""
}

func geometryKind(err error) string {
	switch {
	case errors.Is(err, geometry.ErrStructural):
		return "structural"
	case errors.Is(err, geometry.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, geometry.ErrDegenerate):
		return "degenerate"
	}
	return "other"
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case geometry.IsGeometryError(err):
		return "geometry_error"
	}
	return "error"
}

func toLineString(pts []domain.GeoPoint) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return ls
}

func toPairs(ls orb.LineString) [][2]float64 {
	out := make([][2]float64, len(ls))
	for i, p := range ls {
		out[i] = p
	}
	return out
}
