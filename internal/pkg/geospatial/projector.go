package geospatial

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// WGS 84 equatorial radius (m) and first eccentricity.
const (
	semiMajorAxis = 6378137.0
	eccentricity  = 0.081819191
)

// Projector flattens lon/lat degrees into local planar metres about an
// origin, using the meridional and prime-vertical degree lengths at the
// origin latitude. Accuracy falls off with distance from the origin; for a
// city-sized network the error is well under the marker spacing.
type Projector struct {
	origin     domain.GeoPoint
	mPerDegLat float64
	mPerDegLon float64
}

func NewProjector(origin domain.GeoPoint) Projector {
	sin := math.Sin(toRad(origin.Lat))
	e2 := eccentricity * eccentricity
	w := 1 - e2*sin*sin
	return Projector{
		origin:     origin,
		mPerDegLat: math.Pi * semiMajorAxis * (1 - e2) / (180 * math.Pow(w, 1.5)),
		mPerDegLon: math.Pi * semiMajorAxis * math.Cos(toRad(origin.Lat)) / (180 * math.Sqrt(w)),
	}
}

func (p Projector) Origin() domain.GeoPoint { return p.origin }

// ToPlanar maps a geographic point to (x east, y north) metres.
func (p Projector) ToPlanar(g domain.GeoPoint) orb.Point {
	return orb.Point{
		p.mPerDegLon * (g.Lon - p.origin.Lon),
		p.mPerDegLat * (g.Lat - p.origin.Lat),
	}
}

// ToGeo inverts ToPlanar.
func (p Projector) ToGeo(pt orb.Point) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: p.origin.Lat + pt[1]/p.mPerDegLat,
		Lon: p.origin.Lon + pt[0]/p.mPerDegLon,
	}
}

// LineToPlanar flattens a lon/lat line string.
func (p Projector) LineToPlanar(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[i] = p.ToPlanar(domain.GeoPoint{Lon: pt[0], Lat: pt[1]})
	}
	return out
}

// OriginOf returns the centre of the bounding box of lon/lat points.
func OriginOf(lines ...orb.LineString) domain.GeoPoint {
	var b orb.Bound
	first := true
	for _, ls := range lines {
		if len(ls) == 0 {
			continue
		}
		if first {
			b = ls.Bound()
			first = false
			continue
		}
		b = b.Union(ls.Bound())
	}
	c := b.Center()
	return domain.GeoPoint{Lon: c[0], Lat: c[1]}
}
