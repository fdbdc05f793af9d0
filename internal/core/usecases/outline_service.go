package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/geometry"
	"github.com/samirrijal/railmap/internal/core/ports"
	"github.com/samirrijal/railmap/internal/pkg/geospatial"
	"github.com/samirrijal/railmap/internal/pkg/metrics"
	"github.com/samirrijal/railmap/internal/pkg/telemetry"
)

// OutlineService merges background line work (a coastline) into paths.
type OutlineService struct {
	tol geometry.Tolerances
}

// NewOutlineService creates a new OutlineService.
func NewOutlineService(tol geometry.Tolerances) *OutlineService {
	return &OutlineService{tol: tol}
}

// Compute merges every line of src and flattens the result about origin,
// or about the centre of the merged paths when origin is nil. Unlike a
// route, an outline keeps every component and may contain closed rings.
func (s *OutlineService) Compute(ctx context.Context, src ports.FeatureSource, origin *domain.GeoPoint) (*domain.Outline, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanOutline)
	defer span.End()

	frags := src.Lines()
	if len(frags) == 0 {
		return nil, fmt.Errorf("%w: no line features", ErrInvalidRequest)
	}
	lines := make([]orb.LineString, len(frags))
	for i, f := range frags {
		lines[i] = toLineString(f.Coordinates)
	}

	paths, err := geometry.MergeWith(lines, s.tol, geometry.MergeOptions{AllowRings: true})
	if err != nil {
		metrics.GeometryErrors.WithLabelValues(geometryKind(err)).Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("outline: merge: %w", err)
	}

	merged := make([]orb.LineString, len(paths))
	for i, p := range paths {
		merged[i] = p.Points()
	}
	o := geospatial.OriginOf(merged...)
	if origin != nil {
		o = *origin
	}
	proj := geospatial.NewProjector(o)

	out := &domain.Outline{Origin: o, Paths: make([][][2]float64, len(merged))}
	for i, ls := range merged {
		out.Paths[i] = toPairs(proj.LineToPlanar(ls))
	}

	span.SetAttributes(
		attribute.Int(telemetry.AttrFragments, len(frags)),
		attribute.Int(telemetry.AttrComponents, len(paths)),
	)
	slog.InfoContext(ctx, "outline merged", "fragments", len(frags), "paths", len(paths))
	return out, nil
}
