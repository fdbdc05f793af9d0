// Package geojson reads exported rail networks and writes computed layouts
// as GeoJSON feature collections.
package geojson

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// Reader implements ports.FeatureSource over an OSM-style export where route
// membership is carried in properties["@relations"][0]["reltags"].
type Reader struct {
	fc *geojson.FeatureCollection
}

func NewReader(fc *geojson.FeatureCollection) *Reader {
	return &Reader{fc: fc}
}

// Parse decodes a feature collection.
func Parse(data []byte) (*Reader, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return NewReader(fc), nil
}

// ReadFile decodes the feature collection at path.
func ReadFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Len is the number of features.
func (r *Reader) Len() int { return len(r.fc.Features) }

func (r *Reader) Fragments(ref string) []domain.TrackFragment {
	var out []domain.TrackFragment
	for _, f := range r.fc.Features {
		tags, ok := relationTags(f.Properties)
		if !ok || tags.MustString("ref", "") != ref {
			continue
		}
		for _, ls := range lineStrings(f.Geometry) {
			out = append(out, domain.TrackFragment{RouteRef: ref, Coordinates: toGeo(ls)})
		}
	}
	return out
}

func (r *Reader) Stations(ref, towards string) []domain.StationFeature {
	var out []domain.StationFeature
	for _, f := range r.fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok || f.Properties.MustString("railway", "") != "stop" {
			continue
		}
		tags, ok := relationTags(f.Properties)
		if !ok || tags.MustString("ref", "") != ref {
			continue
		}
		to := tags.MustString("to", "")
		if towards != "" && to != towards {
			continue
		}
		out = append(out, domain.StationFeature{
			Name:     f.Properties.MustString("name", ""),
			RouteRef: ref,
			Towards:  to,
			Location: domain.GeoPoint{Lon: pt[0], Lat: pt[1]},
		})
	}
	return out
}

func (r *Reader) Lines() []domain.TrackFragment {
	var out []domain.TrackFragment
	for _, f := range r.fc.Features {
		var ref string
		if tags, ok := relationTags(f.Properties); ok {
			ref = tags.MustString("ref", "")
		}
		for _, ls := range lineStrings(f.Geometry) {
			out = append(out, domain.TrackFragment{RouteRef: ref, Coordinates: toGeo(ls)})
		}
	}
	return out
}

// relationTags digs out the first relation's reltags.
func relationTags(props geojson.Properties) (geojson.Properties, bool) {
	rels, ok := props["@relations"].([]any)
	if !ok || len(rels) == 0 {
		return nil, false
	}
	first, ok := rels[0].(map[string]any)
	if !ok {
		return nil, false
	}
	tags, ok := first["reltags"].(map[string]any)
	if !ok {
		return nil, false
	}
	return geojson.Properties(tags), true
}

func lineStrings(g orb.Geometry) []orb.LineString {
	switch g := g.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	}
	return nil
}

func toGeo(ls orb.LineString) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(ls))
	for i, p := range ls {
		out[i] = domain.GeoPoint{Lon: p[0], Lat: p[1]}
	}
	return out
}
