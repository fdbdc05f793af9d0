package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/railmap/internal/core/geometry"
	"github.com/samirrijal/railmap/internal/pkg/board"
	"github.com/samirrijal/railmap/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("railmap-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "railmap-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, "layout-queue", cfg.Temporal.TaskQueue)
	assert.Equal(t, geometry.DefaultTolerances(), cfg.Geometry.Tolerances())
	assert.Equal(t, 75.0, cfg.Layout.MarkerSpacing)
	assert.Equal(t, "D", cfg.Layout.MarkerRefPrefix)
	assert.Equal(t, 100, cfg.Layout.MarkerRefStart)
	assert.Equal(t, 25.0, cfg.Board.Scale)
	assert.Equal(t, 148.5, cfg.Board.OriginX)
	assert.Equal(t, 210.0, cfg.Board.OriginY)
	assert.True(t, cfg.Board.FlipY)
	assert.Equal(t, board.A3(), cfg.Board.Transform())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RAILMAP_LAYOUT_MARKER_SPACING", "50")
	t.Setenv("RAILMAP_GEOMETRY_SNAP_TOLERANCE", "0.001")
	t.Setenv("RAILMAP_DATABASE_HOST", "db.internal")
	t.Setenv("RAILMAP_GEOMETRY_MAX_MARKERS", "500")

	cfg, err := config.Load("railmap-test")
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.Layout.MarkerSpacing)
	assert.Equal(t, 0.001, cfg.Geometry.SnapTolerance)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 500, cfg.Geometry.Tolerances().MaxMarkers)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "railmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  marker_spacing: 30\nboard:\n  flip_y: false\n"), 0o600))

	cfg, err := config.LoadFile("railmap-cli", path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Layout.MarkerSpacing)
	assert.False(t, cfg.Board.FlipY)

	_, err = config.LoadFile("railmap-cli", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("railmap-test")
	require.NoError(t, err)

	cfg.Server.Port = 0
	cfg.Geometry.TangentStep = 0
	cfg.Layout.MarkerSpacing = -1
	cfg.Log.Format = "xml"
	cfg.Geometry.MaxMarkers = 0

	err = cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "config validation failed")
	assert.Contains(t, msg, "server.port")
	assert.Contains(t, msg, "geometry.tangent_step")
	assert.Contains(t, msg, "layout.marker_spacing")
	assert.Contains(t, msg, "log.format")
	assert.Contains(t, msg, "geometry.max_markers")
}
