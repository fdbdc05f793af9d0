package geojson_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rgeojson "github.com/samirrijal/railmap/internal/adapters/geojson"
	"github.com/samirrijal/railmap/internal/core/domain"
)

func readNetwork(t *testing.T) *rgeojson.Reader {
	t.Helper()
	r, err := rgeojson.ReadFile(filepath.Join("testdata", "network.geojson"))
	require.NoError(t, err)
	return r
}

func TestReader_Fragments(t *testing.T) {
	r := readNetwork(t)
	assert.Equal(t, 10, r.Len())

	l2 := r.Fragments("L2")
	require.Len(t, l2, 2)
	assert.Equal(t, "L2", l2[0].RouteRef)
	assert.Equal(t, domain.GeoPoint{Lon: 151.2000, Lat: -33.9000}, l2[0].Coordinates[0])

	// MultiLineString members count as separate fragments.
	assert.Len(t, r.Fragments("L3"), 3)
	assert.Empty(t, r.Fragments("L9"))
}

func TestReader_Stations(t *testing.T) {
	r := readNetwork(t)

	cq := r.Stations("L2", "Circular Quay")
	require.Len(t, cq, 2)
	assert.Equal(t, "Central", cq[0].Name)
	assert.Equal(t, "Moore Park", cq[1].Name)
	assert.Equal(t, "Circular Quay", cq[0].Towards)
	assert.Equal(t, domain.GeoPoint{Lon: 151.2005, Lat: -33.9001}, cq[0].Location)

	assert.Len(t, r.Stations("L2", ""), 3)
	assert.Len(t, r.Stations("L3", "Circular Quay"), 1)
}

func TestReader_Lines(t *testing.T) {
	lines := readNetwork(t).Lines()
	require.Len(t, lines, 6)
	assert.Equal(t, "", lines[5].RouteRef)
}

func TestParse_Invalid(t *testing.T) {
	_, err := rgeojson.Parse([]byte(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)

	_, err = rgeojson.ReadFile(filepath.Join("testdata", "missing.geojson"))
	assert.Error(t, err)
}

func TestLayoutFeatureCollection(t *testing.T) {
	origin := domain.GeoPoint{Lat: -33.9, Lon: 151.2}
	l := &domain.Layout{
		Origin: origin,
		Routes: []domain.RoutePath{{Ref: "L2", Length: 100, Points: [][2]float64{{0, 0}, {100, 0}}}},
		Markers: []domain.MarkerPlacement{
			{Ref: "D100", X: 0, Y: 0, Orientation: 0, RouteRef: "L2", Segment: "__START__-Central"},
			{Ref: "D101", X: 100, Y: 0, Orientation: 0, RouteRef: "L2", Segment: "Central-__END__", Label: "Central"},
		},
		Stations: []domain.StationPlacement{{Name: "Central", RouteRef: "L2", X: 50, Y: 0, Orientation: 0}},
	}

	fc := rgeojson.LayoutFeatureCollection(l)
	require.Len(t, fc.Features, 4)

	route := fc.Features[0]
	assert.Equal(t, "route", route.Properties["kind"])
	ls, ok := route.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.InDelta(t, origin.Lon, ls[0][0], 1e-12)
	assert.InDelta(t, origin.Lat, ls[0][1], 1e-12)
	assert.Greater(t, ls[1][0], ls[0][0])

	assert.Equal(t, "D100", fc.Features[1].Properties["ref"])
	assert.NotContains(t, fc.Features[1].Properties, "label")
	assert.Equal(t, "Central", fc.Features[2].Properties["label"])
	assert.Equal(t, "station", fc.Features[3].Properties["kind"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	back, err := rgeojson.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 4, back.Len())
}

func TestOutlineFeatureCollection(t *testing.T) {
	fc := rgeojson.OutlineFeatureCollection(&domain.Outline{
		Origin: domain.GeoPoint{Lat: -33.9, Lon: 151.2},
		Paths:  [][][2]float64{{{0, 0}, {10, 0}}, {{0, 10}, {0, 20}, {5, 25}}},
	})
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 1, fc.Features[1].Properties["index"])
	assert.Len(t, fc.Features[1].Geometry.(orb.LineString), 3)
}
