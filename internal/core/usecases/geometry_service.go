package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/geometry"
)

// GeometryService exposes the segmentation pipeline on planar input, with
// nothing stored.
type GeometryService struct {
	tol geometry.Tolerances
}

// NewGeometryService creates a new GeometryService.
func NewGeometryService(tol geometry.Tolerances) *GeometryService {
	return &GeometryService{tol: tol}
}

// Segment splits req.Path at its stations and, when a spacing is given,
// resamples markers along the chain.
func (s *GeometryService) Segment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentResult, error) {
	ls := make(orb.LineString, len(req.Path))
	for i, p := range req.Path {
		ls[i] = p
	}
	pl, err := geometry.NewPolyline(ls)
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}

	stations := make([]geometry.Station, len(req.Stations))
	for i, st := range req.Stations {
		stations[i] = geometry.Station{Label: st.Name, Point: orb.Point{st.X, st.Y}}
	}
	sg, err := geometry.SegmentStations(pl, stations, s.tol)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}

	res := &domain.SegmentResult{Length: pl.Length()}
	for _, seg := range sg.Segments {
		res.Segments = append(res.Segments, domain.SegmentInfo{
			From:   seg.From,
			To:     seg.To,
			StartS: seg.StartS,
			EndS:   seg.EndS,
			Points: toPairs(seg.Path.Points()),
		})
	}
	for _, p := range sg.Projections {
		res.Projections = append(res.Projections, domain.ProjectionInfo{
			Label:    p.Label,
			S:        p.S,
			X:        p.Point[0],
			Y:        p.Point[1],
			Distance: p.Distance,
			Sentinel: p.Sentinel,
		})
	}

	if req.MarkerSpacing > 0 {
		markers, err := geometry.Markers(sg.Segments, req.MarkerSpacing, s.tol)
		if err != nil {
			return nil, fmt.Errorf("markers: %w", err)
		}
		for i, m := range markers {
			res.Markers = append(res.Markers, domain.MarkerPlacement{
				Ref:         strconv.Itoa(i),
				X:           m.Point[0],
				Y:           m.Point[1],
				Orientation: m.Orientation,
				Segment:     segmentName(sg.Segments, m.S),
				Label:       m.Label,
			})
		}
	}
	return res, nil
}
