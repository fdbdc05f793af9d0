package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Cut splits p at arc length s. A cut at or before the start yields
// (nil, p) and one at or past the end yields (p, nil). A cut within
// tol.Vertex of an interior vertex splits there; otherwise the cut point is
// interpolated and becomes the last point of before and the first of after.
func Cut(p *Polyline, s float64, tol Tolerances) (before, after *Polyline) {
	l := p.Length()
	if !(s > tol.Vertex) {
		return nil, p
	}
	if s >= l-tol.Vertex {
		return p, nil
	}

	i := p.segmentIndex(s)
	switch {
	case i > 0 && math.Abs(s-p.cum[i]) <= tol.Vertex:
		return p.slice(0, i+1), p.slice(i, len(p.points))
	case math.Abs(p.cum[i+1]-s) <= tol.Vertex:
		return p.slice(0, i+2), p.slice(i+1, len(p.points))
	}

	q := p.interpolate(s)
	head := make(orb.LineString, 0, i+2)
	head = append(head, p.points[:i+1]...)
	head = append(head, q)
	tail := make(orb.LineString, 0, len(p.points)-i)
	tail = append(tail, q)
	tail = append(tail, p.points[i+1:]...)
	return newPolyline(head), newPolyline(tail)
}

// CutBetween returns the part of p between arc lengths s0 and s1.
func CutBetween(p *Polyline, s0, s1 float64, tol Tolerances) (*Polyline, error) {
	const op = "geometry.cut_between"
	if !(s0 < s1) {
		return nil, newError(op, ErrInvalidRange, "start %g is not before end %g", s0, s1)
	}
	_, tail := Cut(p, s0, tol)
	if tail == nil {
		return nil, newErrorAt(op, ErrDegenerate, p.End(), "range [%g, %g] starts past the end of a path of length %g", s0, s1, p.Length())
	}
	// Relative to the tail, s0 sits at zero. A cut before the start hands
	// back the whole path, so the offset is measured from the real start.
	offset := s1 - math.Max(s0, 0)
	if tail != p {
		offset = s1 - s0
	}
	head, _ := Cut(tail, offset, tol)
	if head == nil {
		return nil, newErrorAt(op, ErrDegenerate, tail.Start(), "range [%g, %g] collapses to a point", s0, s1)
	}
	return head, nil
}

// slice copies points[from:to] into a new polyline. The range always spans
// at least two distinct vertices.
func (p *Polyline) slice(from, to int) *Polyline {
	return newPolyline(p.points[from:to].Clone())
}
