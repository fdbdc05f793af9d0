package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/railmap/internal/core/domain"
)

var network = filepath.Join("..", "adapters", "geojson", "testdata", "network.geojson")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseRoute(t *testing.T) {
	cases := []struct {
		input string
		want  domain.RouteSpec
	}{
		{"L2", domain.RouteSpec{Ref: "L2"}},
		{"L2@Circular Quay", domain.RouteSpec{Ref: "L2", Towards: "Circular Quay"}},
		{" L3 @ Juniors Kingsford ", domain.RouteSpec{Ref: "L3", Towards: "Juniors Kingsford"}},
	}
	for _, c := range cases {
		got, err := parseRoute(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got)
	}

	_, err := parseRoute("@Randwick")
	assert.Error(t, err)
}

func TestParseLatLon(t *testing.T) {
	p, err := parseLatLon("-33.9, 151.2")
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPoint{Lat: -33.9, Lon: 151.2}, p)

	for _, bad := range []string{"", "-33.9", "x,151.2", "-33.9,y", "91,0", "0,181"} {
		_, err := parseLatLon(bad)
		assert.Error(t, err, bad)
	}
}

func TestLayoutCommand(t *testing.T) {
	out, err := run(t, "layout", network, "--route", "L2@Circular Quay", "--name", "sydney")
	require.NoError(t, err)

	var layout domain.Layout
	require.NoError(t, json.Unmarshal([]byte(out), &layout))
	assert.Equal(t, "sydney", layout.Name)
	require.Len(t, layout.Routes, 1)
	assert.Equal(t, "L2", layout.Routes[0].Ref)
	require.NotEmpty(t, layout.Markers)
	assert.Equal(t, "D100", layout.Markers[0].Ref)
	assert.NotEmpty(t, layout.Footprints)
}

func TestLayoutCommand_FlagsOverrideRequestFile(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(reqPath, []byte(`{"name":"from-file","routes":[{"ref":"L2","towards":"Circular Quay"}],"marker_ref_prefix":"X"}`), 0o600))
	outPath := filepath.Join(dir, "layout.json")

	_, err := run(t, "layout", network, "-r", reqPath, "--ref-prefix", "LED", "--ref-start", "1", "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var layout domain.Layout
	require.NoError(t, json.Unmarshal(data, &layout))
	assert.Equal(t, "from-file", layout.Name)
	require.NotEmpty(t, layout.Markers)
	assert.Equal(t, "LED1", layout.Markers[0].Ref)
}

func TestLayoutCommand_GeoJSON(t *testing.T) {
	out, err := run(t, "layout", network, "--route", "L2@Circular Quay", "--format", "geojson")
	require.NoError(t, err)
	assert.Contains(t, out, `"FeatureCollection"`)
}

func TestLayoutCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no routes", []string{"layout", network}, "no routes"},
		{"bad format", []string{"layout", network, "--route", "L2", "--format", "svg"}, "unknown format"},
		{"missing file", []string{"layout", "missing.geojson", "--route", "L2"}, "missing.geojson"},
		{"unknown route", []string{"layout", network, "--route", "L9"}, "L9"},
		{"no args", []string{"layout"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFootprintsCommand(t *testing.T) {
	out, err := run(t, "footprints", network, "--route", "L2@Circular Quay")
	require.NoError(t, err)

	var fps []domain.FootprintPlacement
	require.NoError(t, json.Unmarshal([]byte(out), &fps))
	require.NotEmpty(t, fps)
	assert.Equal(t, "D100", fps[0].Ref)
	for _, fp := range fps {
		assert.Greater(t, fp.Rotation, -180.0)
		assert.LessOrEqual(t, fp.Rotation, 180.0)
	}
}

func TestOutlineCommand(t *testing.T) {
	out, err := run(t, "outline", network)
	require.NoError(t, err)
	var o domain.Outline
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	assert.Len(t, o.Paths, 3)
	assert.Empty(t, o.Board)

	out, err = run(t, "outline", network, "--board")
	require.NoError(t, err)
	var onBoard domain.Outline
	require.NoError(t, json.Unmarshal([]byte(out), &onBoard))
	require.Len(t, onBoard.Board, len(onBoard.Paths))
	assert.Len(t, onBoard.Board[0], len(onBoard.Paths[0]))

	out, err = run(t, "outline", network, "--origin", "-33.9,151.2", "--format", "geojson")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"LineString"`))

	_, err = run(t, "outline", network, "--origin", "north")
	assert.Error(t, err)
}
