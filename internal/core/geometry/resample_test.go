package geometry_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/railmap/internal/core/geometry"
)

func TestEvenlySpaced_LandsOnVertices(t *testing.T) {
	pts, err := geometry.EvenlySpaced(lShape(t), 3)
	require.NoError(t, err)
	assert.Equal(t, []orb.Point{{0, 0}, {100, 0}, {100, 100}}, pts)
}

func TestEvenlySpaced_Interior(t *testing.T) {
	pts, err := geometry.EvenlySpaced(lShape(t), 5)
	require.NoError(t, err)
	assert.Equal(t, []orb.Point{{0, 0}, {50, 0}, {100, 0}, {100, 50}, {100, 100}}, pts)
}

func TestEvenlySpaced_Deterministic(t *testing.T) {
	pl := mustPolyline(t, orb.Point{0.1, 0.3}, orb.Point{7.7, 2.9}, orb.Point{13.13, -4.2})
	a, err := geometry.EvenlySpaced(pl, 17)
	require.NoError(t, err)
	b, err := geometry.EvenlySpaced(pl, 17)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, pl.End(), a[len(a)-1])
}

func TestEvenlySpaced_TooFew(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := geometry.EvenlySpaced(lShape(t), n)
		assert.ErrorIs(t, err, geometry.ErrDegenerate, "n=%d", n)
	}
}

func TestMarkerCount(t *testing.T) {
	tests := []struct {
		length, spacing float64
		want            int
	}{
		{200, 75, 3},
		{150, 75, 3},
		{149.9, 75, 2},
		{10, 75, 2},
		{0, 75, 2},
		{100, 0, 2},
		{1000, 75, 14},
		// Ratios beyond an int saturate rather than wrap.
		{200, 1e-300, math.MaxInt},
		{math.Inf(1), 75, math.MaxInt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, geometry.MarkerCount(tt.length, tt.spacing), "length=%v spacing=%v", tt.length, tt.spacing)
	}
}

func TestMarkers_ChainCoversEveryBoundaryOnce(t *testing.T) {
	pl := lShape(t)
	tol := geometry.DefaultTolerances()
	sg, err := geometry.SegmentStations(pl, []geometry.Station{{Label: "S", Point: orb.Point{100, 50}}}, tol)
	require.NoError(t, err)
	require.Len(t, sg.Segments, 2)

	markers, err := geometry.Markers(sg.Segments, 50, tol)
	require.NoError(t, err)
	require.Len(t, markers, 5)

	var s []float64
	for _, m := range markers {
		s = append(s, m.S)
	}
	assert.Equal(t, []float64{0, 50, 100, 150, 200}, s)

	assert.Equal(t, orb.Point{0, 0}, markers[0].Point)
	assert.Equal(t, orb.Point{100, 50}, markers[3].Point)
	assert.Equal(t, pl.End(), markers[4].Point)

	assert.Equal(t, "S", markers[3].Label)
	for _, i := range []int{0, 1, 2, 4} {
		assert.Empty(t, markers[i].Label, "marker %d", i)
	}

	assert.InDelta(t, 0, markers[0].Orientation, 1e-4)
	assert.InDelta(t, 0, markers[1].Orientation, 1e-4)
	assert.InDelta(t, 45, markers[2].Orientation, 1e-4)
	assert.InDelta(t, 90, markers[3].Orientation, 1e-4)
	assert.InDelta(t, 90, markers[4].Orientation, 1e-4)
}

func TestMarkers_InvalidSpacing(t *testing.T) {
	sg, err := geometry.SegmentStations(lShape(t), nil, geometry.DefaultTolerances())
	require.NoError(t, err)
	_, err = geometry.Markers(sg.Segments, 0, geometry.DefaultTolerances())
	assert.ErrorIs(t, err, geometry.ErrInvalidRange)
}

func TestMarkers_Empty(t *testing.T) {
	markers, err := geometry.Markers(nil, 75, geometry.DefaultTolerances())
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestMarkers_TooManyMarkers(t *testing.T) {
	tol := geometry.DefaultTolerances()
	sg, err := geometry.SegmentStations(lShape(t), nil, tol)
	require.NoError(t, err)

	for _, spacing := range []float64{1e-9, 1e-300, math.Inf(1)} {
		_, err := geometry.Markers(sg.Segments, spacing, tol)
		assert.ErrorIs(t, err, geometry.ErrInvalidRange, "spacing=%g", spacing)
	}
}

func TestMarkers_LimitCountsTheWholeChain(t *testing.T) {
	tol := geometry.DefaultTolerances()
	sg, err := geometry.SegmentStations(lShape(t), []geometry.Station{{Label: "S", Point: orb.Point{100, 50}}}, tol)
	require.NoError(t, err)

	tol.MaxMarkers = 5
	markers, err := geometry.Markers(sg.Segments, 50, tol)
	require.NoError(t, err)
	assert.Len(t, markers, 5)

	tol.MaxMarkers = 4
	_, err = geometry.Markers(sg.Segments, 50, tol)
	assert.ErrorIs(t, err, geometry.ErrInvalidRange)
}

func TestEvenlySpaced_TooMany(t *testing.T) {
	_, err := geometry.EvenlySpaced(lShape(t), geometry.MaxEvenlySpaced+1)
	assert.ErrorIs(t, err, geometry.ErrInvalidRange)
}
