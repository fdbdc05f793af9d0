package geometry_test

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/railmap/internal/core/geometry"
)

func TestCut_Ends(t *testing.T) {
	pl := lShape(t)
	tol := geometry.DefaultTolerances()

	before, after := geometry.Cut(pl, 0, tol)
	assert.Nil(t, before)
	assert.Same(t, pl, after)

	before, after = geometry.Cut(pl, -3, tol)
	assert.Nil(t, before)
	assert.Same(t, pl, after)

	before, after = geometry.Cut(pl, pl.Length(), tol)
	assert.Same(t, pl, before)
	assert.Nil(t, after)

	before, after = geometry.Cut(pl, 500, tol)
	assert.Same(t, pl, before)
	assert.Nil(t, after)
}

func TestCut_OnVertexInsertsNothing(t *testing.T) {
	pl := lShape(t)
	before, after := geometry.Cut(pl, 100, geometry.DefaultTolerances())
	require.NotNil(t, before)
	require.NotNil(t, after)
	assert.Equal(t, orb.LineString{{0, 0}, {100, 0}}, before.Points())
	assert.Equal(t, orb.LineString{{100, 0}, {100, 100}}, after.Points())
}

func TestCut_RoundTrip(t *testing.T) {
	pl := lShape(t)
	orig := pl.Points()

	for _, s := range []float64{0.5, 37.5, 99, 101, 150, 199.75} {
		t.Run(fmt.Sprint(s), func(t *testing.T) {
			before, after := geometry.Cut(pl, s, geometry.DefaultTolerances())
			require.NotNil(t, before)
			require.NotNil(t, after)

			cutPt, err := pl.PointAt(s)
			require.NoError(t, err)
			assert.Equal(t, cutPt, before.End())
			assert.Equal(t, cutPt, after.Start())

			joined := append(before.Points(), after.Points()[1:]...)
			require.Len(t, joined, len(orig)+1)

			// Removing the single inserted vertex gives the original back.
			idx := before.NumPoints() - 1
			rest := append(orb.LineString{}, joined[:idx]...)
			rest = append(rest, joined[idx+1:]...)
			assert.Equal(t, orig, rest)

			assert.InDelta(t, s, before.Length(), 1e-9)
			assert.InDelta(t, pl.Length(), before.Length()+after.Length(), 1e-9)
		})
	}
}

func TestCutBetween(t *testing.T) {
	pl := lShape(t)
	tol := geometry.DefaultTolerances()

	mid, err := geometry.CutBetween(pl, 50, 150, tol)
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{50, 0}, {100, 0}, {100, 50}}, mid.Points())
	assert.InDelta(t, 100, mid.Length(), 1e-12)

	all, err := geometry.CutBetween(pl, 0, pl.Length(), tol)
	require.NoError(t, err)
	assert.Equal(t, pl.Points(), all.Points())

	head, err := geometry.CutBetween(pl, -10, 50, tol)
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{0, 0}, {50, 0}}, head.Points())
}

func TestCutBetween_InvalidRange(t *testing.T) {
	pl := lShape(t)
	for _, r := range [][2]float64{{50, 50}, {60, 10}, {0, 0}, {200, 0}, {200, 200}} {
		_, err := geometry.CutBetween(pl, r[0], r[1], geometry.DefaultTolerances())
		assert.ErrorIs(t, err, geometry.ErrInvalidRange, "range %v", r)
	}
}

func TestCutBetween_CollapsedRange(t *testing.T) {
	pl := lShape(t)
	_, err := geometry.CutBetween(pl, 250, 300, geometry.DefaultTolerances())
	assert.ErrorIs(t, err, geometry.ErrDegenerate)

	_, err = geometry.CutBetween(pl, -20, -10, geometry.DefaultTolerances())
	assert.ErrorIs(t, err, geometry.ErrDegenerate)
}
