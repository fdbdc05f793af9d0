package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// MaxEvenlySpaced bounds the points a single EvenlySpaced call allocates.
const MaxEvenlySpaced = 1 << 22

// EvenlySpaced returns n points at equal arc-length intervals along p,
// including both ends. The last target is pinned to Length() so the final
// point is exactly p.End().
func EvenlySpaced(p *Polyline, n int) ([]orb.Point, error) {
	const op = "geometry.evenly_spaced"
	if n < 2 {
		return nil, newError(op, ErrDegenerate, "need at least two points, got %d", n)
	}
	if n > MaxEvenlySpaced {
		return nil, newError(op, ErrInvalidRange, "%d points exceeds the limit of %d", n, MaxEvenlySpaced)
	}
	l := p.Length()
	out := make([]orb.Point, n)
	for i := 0; i < n-1; i++ {
		out[i] = p.interpolate(l * float64(i) / float64(n-1))
	}
	out[n-1] = p.End()
	return out, nil
}

// MarkerCount is how many markers a path of the given length gets at the
// given nominal spacing: one per whole spacing plus the start, never fewer
// than two. A ratio too large for an int, or an infinite one, saturates at
// math.MaxInt.
func MarkerCount(length, spacing float64) int {
	if !(spacing > 0) || !(length > 0) {
		return 2
	}
	ratio := length / spacing
	if math.IsInf(ratio, 0) || ratio >= 1<<62 {
		return math.MaxInt
	}
	n := int(math.Floor(ratio)) + 1
	if n < 2 {
		return 2
	}
	return n
}

// Markers resamples a chain of consecutive segments at roughly spacing
// apart. Each segment keeps every resampled point except its last, which is
// the first point of the next segment; the final segment keeps its end too.
// Every segment boundary therefore appears exactly once. Markers landing on
// a boundary bounded by a real station carry that station's label. A chain
// needing more than tol.MaxMarkers markers is ErrInvalidRange, checked
// before anything is allocated.
func Markers(segments []Segment, spacing float64, tol Tolerances) ([]Marker, error) {
	const op = "geometry.markers"
	if !(spacing > 0) || math.IsInf(spacing, 1) {
		return nil, newError(op, ErrInvalidRange, "marker spacing must be positive and finite, got %g", spacing)
	}
	limit := tol.maxMarkers()
	total := 0
	for k, seg := range segments {
		keep := MarkerCount(seg.Path.Length(), spacing)
		if k < len(segments)-1 {
			keep--
		}
		if keep > limit-total {
			return nil, newError(op, ErrInvalidRange,
				"marker spacing %g needs more than %d markers", spacing, limit)
		}
		total += keep
	}

	var out []Marker
	for k, seg := range segments {
		l := seg.Path.Length()
		n := MarkerCount(l, spacing)
		pts, err := EvenlySpaced(seg.Path, n)
		if err != nil {
			return nil, err
		}
		last := k == len(segments)-1
		keep := n - 1
		if last {
			keep = n
		}
		for i := 0; i < keep; i++ {
			local := l * float64(i) / float64(n-1)
			if i == n-1 {
				local = l
			}
			rad, err := Tangent(seg.Path, local, tol)
			if err != nil {
				return nil, err
			}
			m := Marker{
				Point:       pts[i],
				S:           seg.StartS + local,
				Orientation: Degrees(rad),
			}
			switch {
			case i == 0 && !IsSentinel(seg.From):
				m.Label = seg.From
			case i == n-1 && !IsSentinel(seg.To):
				m.Label = seg.To
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// Marker is a resampled placement along a path.
type Marker struct {
	Point orb.Point
	// S is the arc length along the whole path, not the segment.
	S float64
	// Orientation is the tangent direction in degrees, counter-clockwise
	// from the +x axis.
	Orientation float64
	Label       string
}
