package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Projection is the nearest point of a path to some query point.
type Projection struct {
	// S is the arc length of Point along the path, in [0, Length()].
	S float64
	// Point lies on the path.
	Point orb.Point
	// Distance is the perpendicular (or end-clamped) distance from the
	// query point to Point.
	Distance float64
}

// Project finds the point of p closest to pt. Each segment is tried in
// order with the projection clamped to the segment; a later segment only
// wins with a strictly smaller distance, so ties (a query point equidistant
// from two segments, or exactly on a shared vertex) go to the earlier one.
func (p *Polyline) Project(pt orb.Point) Projection {
	best := Projection{Distance: math.Inf(1)}
	for i := 0; i < len(p.points)-1; i++ {
		a, b := p.points[i], p.points[i+1]
		t := clampedParameter(a, b, pt)
		q := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
		d := planar.Distance(pt, q)
		if d < best.Distance {
			best = Projection{
				S:        p.cum[i] + t*(p.cum[i+1]-p.cum[i]),
				Point:    q,
				Distance: d,
			}
		}
	}
	if best.S > p.Length() {
		best.S = p.Length()
	}
	return best
}

// DistanceTo is the distance from pt to the nearest point of p.
func (p *Polyline) DistanceTo(pt orb.Point) float64 {
	return p.Project(pt).Distance
}

// clampedParameter returns t in [0, 1] locating the foot of the
// perpendicular from pt onto segment a-b.
func clampedParameter(a, b, pt orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	den := dx*dx + dy*dy
	if den == 0 {
		return 0
	}
	t := ((pt[0]-a[0])*dx + (pt[1]-a[1])*dy) / den
	return math.Max(0, math.Min(1, t))
}
