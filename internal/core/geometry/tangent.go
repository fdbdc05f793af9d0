package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Tangent estimates the direction of p at arc length s, in radians, by a
// symmetric finite difference clamped to the ends of the path.
func Tangent(p *Polyline, s float64, tol Tolerances) (float64, error) {
	const op = "geometry.tangent"
	l := p.Length()
	if !(s >= 0 && s <= l) {
		return 0, newError(op, ErrInvalidRange, "arc length %g outside [0, %g]", s, l)
	}
	eps := tol.tangentHalfWidth(l)
	a := p.interpolate(math.Max(0, s-eps))
	b := p.interpolate(math.Min(l, s+eps))
	if a.Equal(b) {
		return 0, newErrorAt(op, ErrDegenerate, a, "tangent undefined, samples coincide")
	}
	return math.Atan2(b[1]-a[1], b[0]-a[0]), nil
}

// TangentAt projects pt onto p and returns the tangent there along with the
// projection.
func TangentAt(p *Polyline, pt orb.Point, tol Tolerances) (float64, Projection, error) {
	proj := p.Project(pt)
	rad, err := Tangent(p, proj.S, tol)
	if err != nil {
		return 0, proj, err
	}
	return rad, proj, nil
}

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
