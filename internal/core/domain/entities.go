package domain

import (
	"errors"
	"time"
)

// ErrLayoutNotFound is returned by repositories when no layout has the ID.
var ErrLayoutNotFound = errors.New("layout not found")

// TrackFragment is one piece of a route's track as exported, in lon/lat.
// Fragments are unordered and may run in either direction.
type TrackFragment struct {
	RouteRef    string     `json:"route_ref"`
	Coordinates []GeoPoint `json:"coordinates"`
}

// StationFeature is a stop of a route as exported.
type StationFeature struct {
	Name     string   `json:"name"`
	RouteRef string   `json:"route_ref"`
	Towards  string   `json:"towards,omitempty"`
	Location GeoPoint `json:"location"`
}

// RouteSpec picks the fragments and stations of one route, and the merged
// component to keep when the fragments merge into more than one path.
type RouteSpec struct {
	Ref     string `json:"ref"`
	Towards string `json:"towards,omitempty"`
	// Anchor selects the component whose endpoint is nearest to it.
	Anchor *GeoPoint `json:"anchor,omitempty"`
	// Via selects the first component passing within ViaRadius metres of
	// it, and wins over Anchor.
	Via       *GeoPoint `json:"via,omitempty"`
	ViaRadius float64   `json:"via_radius,omitempty"`
}

// BoardSpec maps planar metres onto board millimetres.
type BoardSpec struct {
	Scale          float64 `json:"scale"`
	OriginX        float64 `json:"origin_x"`
	OriginY        float64 `json:"origin_y"`
	FlipY          bool    `json:"flip_y"`
	RotationOffset float64 `json:"rotation_offset"`
}

// LayoutRequest describes a layout to compute. Zero values fall back to the
// configured defaults.
type LayoutRequest struct {
	Name            string      `json:"name"`
	Routes          []RouteSpec `json:"routes"`
	MarkerSpacing   float64     `json:"marker_spacing,omitempty"`
	MarkerRefPrefix string      `json:"marker_ref_prefix,omitempty"`
	MarkerRefStart  *int        `json:"marker_ref_start,omitempty"`
	Board           *BoardSpec  `json:"board,omitempty"`
}

// MarkerPlacement is one LED along a route, in planar metres.
type MarkerPlacement struct {
	Ref         string  `json:"ref"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"` // degrees
	RouteRef    string  `json:"route_ref"`
	Segment     string  `json:"segment"`
	Label       string  `json:"label,omitempty"`
}

// StationPlacement is a station snapped onto the route it sits closest to.
type StationPlacement struct {
	Name        string  `json:"name"`
	RouteRef    string  `json:"route_ref"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"` // degrees
	Distance    float64 `json:"distance"`    // metres from the raw stop to the track
}

// FootprintPlacement is a board position in millimetres.
type FootprintPlacement struct {
	Ref      string  `json:"ref"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"` // degrees
}

// RoutePath is a merged, flattened route.
type RoutePath struct {
	Ref    string       `json:"ref"`
	Length float64      `json:"length"` // metres
	Points [][2]float64 `json:"points"`
}

// Layout is a computed set of placements for one board.
type Layout struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Origin     GeoPoint             `json:"origin"`
	Routes     []RoutePath          `json:"routes"`
	Markers    []MarkerPlacement    `json:"markers"`
	Stations   []StationPlacement   `json:"stations"`
	Footprints []FootprintPlacement `json:"footprints,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// LayoutSummary is a Layout without its placements, for listings.
type LayoutSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Origin      GeoPoint  `json:"origin"`
	RouteRefs   []string  `json:"route_refs"`
	MarkerCount int       `json:"marker_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary drops the placements.
func (l *Layout) Summary() LayoutSummary {
	refs := make([]string, len(l.Routes))
	for i, r := range l.Routes {
		refs[i] = r.Ref
	}
	return LayoutSummary{
		ID:          l.ID,
		Name:        l.Name,
		Origin:      l.Origin,
		RouteRefs:   refs,
		MarkerCount: len(l.Markers),
		CreatedAt:   l.CreatedAt,
	}
}

// Outline is a set of merged, flattened background paths (a coastline).
type Outline struct {
	Origin GeoPoint       `json:"origin"`
	Paths  [][][2]float64 `json:"paths"`
	// Board holds Paths in board millimetres when a board was requested.
	Board [][][2]float64 `json:"board,omitempty"`
}

// LayoutEvent is published when a layout is computed or deleted.
type LayoutEvent struct {
	Type     string    `json:"type"` // "computed" or "deleted"
	LayoutID string    `json:"layout_id"`
	Name     string    `json:"name,omitempty"`
	Markers  int       `json:"markers"`
	Stations int       `json:"stations"`
	Time     time.Time `json:"time"`
}

// PlanarStation is a named point already in planar metres.
type PlanarStation struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// SegmentRequest asks for a stateless segmentation of a planar path.
type SegmentRequest struct {
	Path          [][2]float64    `json:"path"`
	Stations      []PlanarStation `json:"stations"`
	MarkerSpacing float64         `json:"marker_spacing,omitempty"`
}

// SegmentInfo is one labelled piece of a segmented path.
type SegmentInfo struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	StartS float64      `json:"start_s"`
	EndS   float64      `json:"end_s"`
	Points [][2]float64 `json:"points"`
}

// ProjectionInfo is a station (or path end) located on the path.
type ProjectionInfo struct {
	Label    string  `json:"label"`
	S        float64 `json:"s"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
	Sentinel bool    `json:"sentinel,omitempty"`
}

// SegmentResult is the answer to a SegmentRequest.
type SegmentResult struct {
	Length      float64           `json:"length"`
	Segments    []SegmentInfo     `json:"segments"`
	Projections []ProjectionInfo  `json:"projections"`
	Markers     []MarkerPlacement `json:"markers,omitempty"`
}
