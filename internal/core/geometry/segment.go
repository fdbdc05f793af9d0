package geometry

import (
	"sort"

	"github.com/paulmach/orb"
)

// Reserved labels of the synthetic projections bounding a path.
const (
	StartLabel = "__START__"
	EndLabel   = "__END__"
)

// IsSentinel reports whether label is one of the reserved path-end labels.
func IsSentinel(label string) bool { return label == StartLabel || label == EndLabel }

// Station is a named point that need not lie on the path.
type Station struct {
	Label string
	Point orb.Point
}

// StationProjection is a station's projection onto the path. Index is the
// position in the input slice, or -1 for the start and end sentinels.
type StationProjection struct {
	Projection
	Label    string
	Index    int
	Sentinel bool
}

// Segment is the part of a path between two consecutive projections.
// StartS < EndS always holds.
type Segment struct {
	From, To     string
	StartS, EndS float64
	Path         *Polyline
}

// Length is the arc length covered by the segment.
func (s Segment) Length() float64 { return s.EndS - s.StartS }

type Segmentation struct {
	Segments []Segment
	// Projections are sorted by arc length, sentinels included.
	Projections []StationProjection
}

// Station returns the projection of input station i.
func (sg Segmentation) Station(i int) (StationProjection, bool) {
	for _, p := range sg.Projections {
		if !p.Sentinel && p.Index == i {
			return p, true
		}
	}
	return StationProjection{}, false
}

// SegmentStations splits p at the projections of stations. Projections are
// ordered by arc length with a stable sort, so stations at the same arc
// length keep their input order and sort ahead of a sentinel at that
// position. Consecutive projections no more than tol.Vertex apart produce
// no segment, and the last of them names the next segment, except that a
// station at the path start names it in place of StartLabel. The lengths of
// the returned segments sum to p.Length().
func SegmentStations(p *Polyline, stations []Station, tol Tolerances) (Segmentation, error) {
	projs := make([]StationProjection, 0, len(stations)+2)
	for i, st := range stations {
		projs = append(projs, StationProjection{
			Projection: p.Project(st.Point),
			Label:      st.Label,
			Index:      i,
		})
	}
	projs = append(projs,
		StationProjection{Projection: Projection{S: 0, Point: p.Start()}, Label: StartLabel, Index: -1, Sentinel: true},
		StationProjection{Projection: Projection{S: p.Length(), Point: p.End()}, Label: EndLabel, Index: -1, Sentinel: true},
	)
	sort.SliceStable(projs, func(i, j int) bool { return projs[i].S < projs[j].S })

	var segs []Segment
	from := projs[0].Label
	for k := 0; k+1 < len(projs); k++ {
		a, b := projs[k], projs[k+1]
		if b.S-a.S <= tol.Vertex {
			// A station on the path start keeps its name over the sentinel.
			if !b.Sentinel || a.Sentinel {
				from = b.Label
			}
			continue
		}
		path, err := CutBetween(p, a.S, b.S, tol)
		if err != nil {
			return Segmentation{}, err
		}
		segs = append(segs, Segment{From: from, To: b.Label, StartS: a.S, EndS: b.S, Path: path})
		from = b.Label
	}
	return Segmentation{Segments: segs, Projections: projs}, nil
}
