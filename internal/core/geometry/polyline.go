// Package geometry implements the planar polyline toolkit behind route
// layouts: merging unordered fragments into paths, arc-length projection,
// cutting, uniform resampling, tangent estimation and station segmentation.
//
// All functions are pure. A Polyline is immutable once built and may be
// shared between goroutines.
package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polyline is a path of at least two points with no two consecutive points
// equal, together with its cumulative arc-length table. A ring is a Polyline
// whose last point equals its first.
type Polyline struct {
	points orb.LineString
	cum    []float64
}

// NewPolyline copies pts, collapses consecutive duplicates and builds the
// arc-length table. Fewer than two distinct points is ErrDegenerate.
func NewPolyline(pts orb.LineString) (*Polyline, error) {
	clean := make(orb.LineString, 0, len(pts))
	for _, p := range pts {
		if len(clean) > 0 && clean[len(clean)-1].Equal(p) {
			continue
		}
		clean = append(clean, p)
	}
	if len(clean) < 2 {
		return nil, newError("polyline.new", ErrDegenerate, "need at least two distinct points, got %d", len(clean))
	}
	return newPolyline(clean), nil
}

// newPolyline trusts pts to already satisfy the invariants and takes ownership.
func newPolyline(pts orb.LineString) *Polyline {
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + planar.Distance(pts[i-1], pts[i])
	}
	return &Polyline{points: pts, cum: cum}
}

// Length is the total arc length.
func (p *Polyline) Length() float64 { return p.cum[len(p.cum)-1] }

// NumPoints returns the vertex count.
func (p *Polyline) NumPoints() int { return len(p.points) }

// Points returns a copy of the vertices.
func (p *Polyline) Points() orb.LineString { return p.points.Clone() }

// Point returns vertex i.
func (p *Polyline) Point(i int) orb.Point { return p.points[i] }

// Cumulative returns a copy of the arc-length table, one entry per vertex.
func (p *Polyline) Cumulative() []float64 {
	out := make([]float64, len(p.cum))
	copy(out, p.cum)
	return out
}

func (p *Polyline) Start() orb.Point { return p.points[0] }
func (p *Polyline) End() orb.Point   { return p.points[len(p.points)-1] }

// PointAt interpolates the point at arc length s. Callers must keep s
// within [0, Length()]; anything else is ErrInvalidRange.
func (p *Polyline) PointAt(s float64) (orb.Point, error) {
	if !(s >= 0 && s <= p.Length()) {
		return orb.Point{}, newError("polyline.point_at", ErrInvalidRange, "arc length %g outside [0, %g]", s, p.Length())
	}
	return p.interpolate(s), nil
}

// interpolate assumes 0 <= s <= Length().
func (p *Polyline) interpolate(s float64) orb.Point {
	i := p.segmentIndex(s)
	a, b := p.points[i], p.points[i+1]
	seg := p.cum[i+1] - p.cum[i]
	t := (s - p.cum[i]) / seg
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

// segmentIndex returns i such that cum[i] <= s <= cum[i+1], preferring the
// earlier segment when s sits exactly on a vertex.
func (p *Polyline) segmentIndex(s float64) int {
	i := sort.SearchFloat64s(p.cum, s) - 1
	if i < 0 {
		i = 0
	}
	if i > len(p.cum)-2 {
		i = len(p.cum) - 2
	}
	return i
}
