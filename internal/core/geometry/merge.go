package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Paths is the output of Merge, one Polyline per connected component of
// the fragment graph, ordered by the lowest input index of the fragments
// making up each component.
type Paths []*Polyline

// PathPredicate selects a path out of a merge result.
type PathPredicate func(*Polyline) bool

// Select returns the first path matching pred.
func (ps Paths) Select(pred PathPredicate) (*Polyline, bool) {
	for _, p := range ps {
		if pred(p) {
			return p, true
		}
	}
	return nil, false
}

// Nearest returns the path with an endpoint closest to pt. Ties go to the
// earlier path.
func (ps Paths) Nearest(pt orb.Point) (*Polyline, bool) {
	var best *Polyline
	bestDist := math.Inf(1)
	for _, p := range ps {
		d := endpointDistance(p, pt)
		if d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, best != nil
}

// PassesWithin matches paths whose nearest point to pt is within maxDist.
func PassesWithin(pt orb.Point, maxDist float64) PathPredicate {
	return func(p *Polyline) bool {
		return p.DistanceTo(pt) <= maxDist
	}
}

func endpointDistance(p *Polyline, pt orb.Point) float64 {
	return math.Min(planar.Distance(p.Start(), pt), planar.Distance(p.End(), pt))
}

type fragmentEdge struct {
	index int
	line  orb.LineString
	a, b  int // node ids of first and last point
}

// MergeOptions relaxes Merge for line work that is not a route.
type MergeOptions struct {
	// AllowRings accepts components with no free end, such as an island
	// coastline. A ring is walked from the first point of its lowest-index
	// fragment, in that fragment's direction, and closes exactly on its
	// starting point.
	AllowRings bool
}

// Merge assembles unordered, possibly reversed fragments into continuous
// paths. Endpoints closer than tol.Snap become one graph node. Every
// component must be a simple two-ended path: a node of degree three or more
// or a closed ring is ErrStructural, reported at the offending node.
func Merge(fragments []orb.LineString, tol Tolerances) (Paths, error) {
	return MergeWith(fragments, tol, MergeOptions{})
}

// MergeWith is Merge with options. Branch nodes stay ErrStructural whatever
// the options.
func MergeWith(fragments []orb.LineString, tol Tolerances, opts MergeOptions) (Paths, error) {
	const op = "geometry.merge"
	if len(fragments) == 0 {
		return nil, newError(op, ErrDegenerate, "no fragments")
	}

	var nodes []orb.Point
	nodeOf := func(pt orb.Point) int {
		for i, n := range nodes {
			if planar.Distance(n, pt) <= tol.Snap {
				return i
			}
		}
		nodes = append(nodes, pt)
		return len(nodes) - 1
	}

	edges := make([]fragmentEdge, 0, len(fragments))
	for i, f := range fragments {
		pl, err := NewPolyline(f)
		if err != nil {
			if len(f) > 0 {
				return nil, newErrorAt(op, ErrDegenerate, f[0], "fragment %d has fewer than two distinct points", i)
			}
			return nil, newError(op, ErrDegenerate, "fragment %d is empty", i)
		}
		line := pl.points
		edges = append(edges, fragmentEdge{index: i, line: line, a: nodeOf(line[0]), b: nodeOf(line[len(line)-1])})
	}

	incident := make([][]int, len(nodes))
	for ei, e := range edges {
		incident[e.a] = append(incident[e.a], ei)
		incident[e.b] = append(incident[e.b], ei)
	}
	for n, inc := range incident {
		if len(inc) >= 3 {
			return nil, newErrorAt(op, ErrStructural, nodes[n], "branch node of degree %d", len(inc))
		}
	}

	used := make([]bool, len(edges))
	var out Paths
	// Edges are visited in input order, so components come out ordered by
	// their lowest fragment index.
	for ei := range edges {
		if used[ei] {
			continue
		}
		comp := component(ei, edges, incident)
		start, ok := pathStart(comp, edges, incident)
		ring := !ok
		if ring {
			if !opts.AllowRings {
				return nil, newErrorAt(op, ErrStructural, nodes[edges[ei].a], "fragments form a closed ring")
			}
			// incident lists edges by id, so the walk leaves along comp[0].
			start = edges[comp[0]].a
		}
		line := walk(start, edges, incident, used)
		if ring {
			line[len(line)-1] = line[0]
		}
		pl, err := NewPolyline(line)
		if err != nil {
			return nil, newErrorAt(op, ErrDegenerate, nodes[start], "merged path collapses to a point")
		}
		out = append(out, pl)
	}
	return out, nil
}

// component returns the edge ids reachable from edge ei, sorted by id.
func component(ei int, edges []fragmentEdge, incident [][]int) []int {
	seen := map[int]bool{ei: true}
	stack := []int{ei}
	var comp []int
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp = append(comp, cur)
		for _, n := range []int{edges[cur].a, edges[cur].b} {
			for _, next := range incident[n] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
	}
	sort.Ints(comp)
	return comp
}

// pathStart picks the degree-1 node touched by the lowest-index fragment of
// the component; for a single-fragment component that is its first point.
// A component with no degree-1 node is a ring.
func pathStart(comp []int, edges []fragmentEdge, incident [][]int) (int, bool) {
	for _, ei := range comp {
		e := edges[ei]
		if len(incident[e.a]) == 1 {
			return e.a, true
		}
		if len(incident[e.b]) == 1 {
			return e.b, true
		}
	}
	return 0, false
}

func walk(start int, edges []fragmentEdge, incident [][]int, used []bool) orb.LineString {
	var line orb.LineString
	node := start
	for {
		next := -1
		for _, ei := range incident[node] {
			if !used[ei] {
				next = ei
				break
			}
		}
		if next < 0 {
			return line
		}
		used[next] = true
		e := edges[next]
		pts := e.line
		far := e.b
		if e.a != node {
			pts = pts.Clone()
			pts.Reverse()
			far = e.a
		}
		if len(line) > 0 {
			pts = pts[1:]
		}
		line = append(line, pts...)
		node = far
	}
}
