package geojson

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/pkg/geospatial"
)

// LayoutFeatureCollection renders a layout back into lon/lat: one
// LineString per route, one Point per marker and per station. The "kind"
// property tells them apart.
func LayoutFeatureCollection(l *domain.Layout) *geojson.FeatureCollection {
	proj := geospatial.NewProjector(l.Origin)
	fc := geojson.NewFeatureCollection()

	for _, r := range l.Routes {
		ls := make(orb.LineString, len(r.Points))
		for i, p := range r.Points {
			ls[i] = lonLat(proj, p[0], p[1])
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "route"
		f.Properties["ref"] = r.Ref
		f.Properties["length"] = r.Length
		fc.Append(f)
	}

	for _, m := range l.Markers {
		f := geojson.NewFeature(lonLat(proj, m.X, m.Y))
		f.Properties["kind"] = "marker"
		f.Properties["ref"] = m.Ref
		f.Properties["orientation"] = m.Orientation
		f.Properties["route_ref"] = m.RouteRef
		f.Properties["segment"] = m.Segment
		if m.Label != "" {
			f.Properties["label"] = m.Label
		}
		fc.Append(f)
	}

	for _, s := range l.Stations {
		f := geojson.NewFeature(lonLat(proj, s.X, s.Y))
		f.Properties["kind"] = "station"
		f.Properties["name"] = s.Name
		f.Properties["orientation"] = s.Orientation
		f.Properties["route_ref"] = s.RouteRef
		fc.Append(f)
	}

	return fc
}

// OutlineFeatureCollection renders outline paths as LineStrings.
func OutlineFeatureCollection(o *domain.Outline) *geojson.FeatureCollection {
	proj := geospatial.NewProjector(o.Origin)
	fc := geojson.NewFeatureCollection()
	for i, path := range o.Paths {
		ls := make(orb.LineString, len(path))
		for j, p := range path {
			ls[j] = lonLat(proj, p[0], p[1])
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "outline"
		f.Properties["index"] = i
		fc.Append(f)
	}
	return fc
}

func lonLat(proj geospatial.Projector, x, y float64) orb.Point {
	g := proj.ToGeo(orb.Point{x, y})
	return orb.Point{g.Lon, g.Lat}
}
