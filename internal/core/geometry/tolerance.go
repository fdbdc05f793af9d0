package geometry

// Tolerances are the floating-point thresholds used across the package.
// They are in the units of the coordinates being processed.
type Tolerances struct {
	// Snap is the distance within which fragment endpoints are treated as
	// the same graph node during Merge.
	Snap float64
	// Vertex is the arc-length distance within which a cut lands "on" an
	// existing vertex, and below which two projections count as equal.
	Vertex float64
	// TangentStep is the absolute upper bound of the finite-difference
	// half-width used by Tangent.
	TangentStep float64
	// TangentRelative scales the half-width by the path length, so short
	// paths get proportionally small steps.
	TangentRelative float64
	// MaxMarkers caps how many markers one Markers call may place. Zero
	// means DefaultMaxMarkers.
	MaxMarkers int
}

// DefaultMaxMarkers is the marker cap when Tolerances leaves it unset.
const DefaultMaxMarkers = 100_000

// DefaultTolerances suits coordinates in metres.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Snap:            1e-6,
		Vertex:          1e-9,
		TangentStep:     1e-6,
		TangentRelative: 1e-6,
		MaxMarkers:      DefaultMaxMarkers,
	}
}

func (t Tolerances) tangentHalfWidth(length float64) float64 {
	return min(t.TangentStep, length*t.TangentRelative)
}

func (t Tolerances) maxMarkers() int {
	if t.MaxMarkers <= 0 {
		return DefaultMaxMarkers
	}
	return t.MaxMarkers
}
