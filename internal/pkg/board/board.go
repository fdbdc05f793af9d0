// Package board maps planar layout coordinates (metres, y north) onto PCB
// coordinates (millimetres, y down).
package board

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// Transform scales metres to millimetres about a board origin. With FlipY the
// planar y axis is mirrored to match the board's downward y.
type Transform struct {
	Scale          float64 // metres per board millimetre
	OriginX        float64
	OriginY        float64
	FlipY          bool
	RotationOffset float64 // degrees added to every orientation
}

// A3 is the default: an A3 sheet centred on the layout origin at 25 m/mm,
// footprints rotated half a turn.
func A3() Transform {
	return Transform{Scale: 25, OriginX: 148.5, OriginY: 210, FlipY: true, RotationOffset: 180}
}

func FromSpec(s domain.BoardSpec) Transform {
	return Transform{
		Scale:          s.Scale,
		OriginX:        s.OriginX,
		OriginY:        s.OriginY,
		FlipY:          s.FlipY,
		RotationOffset: s.RotationOffset,
	}
}

// Point maps a planar point to board millimetres.
func (t Transform) Point(p orb.Point) orb.Point {
	y := p[1] / t.Scale
	if t.FlipY {
		y = -y
	}
	return orb.Point{p[0]/t.Scale + t.OriginX, y + t.OriginY}
}

// Rotation applies the offset and normalises to (-180, 180].
func (t Transform) Rotation(orientation float64) float64 {
	return Normalize(orientation + t.RotationOffset)
}

// Footprint places a marker or station on the board.
func (t Transform) Footprint(ref string, x, y, orientation float64) domain.FootprintPlacement {
	p := t.Point(orb.Point{x, y})
	return domain.FootprintPlacement{Ref: ref, X: p[0], Y: p[1], Rotation: t.Rotation(orientation)}
}

// Path maps a whole planar path.
func (t Transform) Path(pts [][2]float64) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = t.Point(orb.Point(p))
	}
	return out
}

// Outline renders every path of o onto the board.
func (t Transform) Outline(o *domain.Outline) {
	o.Board = make([][][2]float64, len(o.Paths))
	for i, p := range o.Paths {
		o.Board[i] = t.Path(p)
	}
}

// Normalize wraps degrees into (-180, 180].
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}
