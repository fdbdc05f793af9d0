package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/railmap/internal/core/geometry"
	"github.com/samirrijal/railmap/internal/pkg/board"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Geometry  GeometryConfig  `mapstructure:"geometry"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	Board     BoardConfig     `mapstructure:"board"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// BodyLimit is in bytes; feature collections can be large.
	BodyLimit int `mapstructure:"body_limit"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// GeometryConfig holds the floating-point tolerances of the geometry core.
// Snap applies to the coordinates fragments are merged in (degrees); the
// others apply after flattening (metres).
type GeometryConfig struct {
	SnapTolerance   float64 `mapstructure:"snap_tolerance"`
	VertexTolerance float64 `mapstructure:"vertex_tolerance"`
	TangentStep     float64 `mapstructure:"tangent_step"`
	TangentRelative float64 `mapstructure:"tangent_relative"`
	MaxMarkers      int     `mapstructure:"max_markers"`
}

func (g GeometryConfig) Tolerances() geometry.Tolerances {
	return geometry.Tolerances{
		Snap:            g.SnapTolerance,
		Vertex:          g.VertexTolerance,
		TangentStep:     g.TangentStep,
		TangentRelative: g.TangentRelative,
		MaxMarkers:      g.MaxMarkers,
	}
}

type LayoutConfig struct {
	MarkerSpacing   float64 `mapstructure:"marker_spacing"`
	MarkerRefPrefix string  `mapstructure:"marker_ref_prefix"`
	MarkerRefStart  int     `mapstructure:"marker_ref_start"`
	CacheTTL        int     `mapstructure:"cache_ttl"`
}

// BoardConfig maps planar metres onto board millimetres.
type BoardConfig struct {
	Scale          float64 `mapstructure:"scale"`
	OriginX        float64 `mapstructure:"origin_x"`
	OriginY        float64 `mapstructure:"origin_y"`
	FlipY          bool    `mapstructure:"flip_y"`
	RotationOffset float64 `mapstructure:"rotation_offset"`
}

func (b BoardConfig) Transform() board.Transform {
	return board.Transform{
		Scale:          b.Scale,
		OriginX:        b.OriginX,
		OriginY:        b.OriginY,
		FlipY:          b.FlipY,
		RotationOffset: b.RotationOffset,
	}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	return load(v)
}

// LoadFile is Load with an explicit config file, for the CLI. A missing
// file is an error here.
func LoadFile(service, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return load(v)
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.body_limit", 16*1024*1024)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "railmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "railmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "layout-queue")

	tol := geometry.DefaultTolerances()
	v.SetDefault("geometry.snap_tolerance", tol.Snap)
	v.SetDefault("geometry.vertex_tolerance", tol.Vertex)
	v.SetDefault("geometry.tangent_step", tol.TangentStep)
	v.SetDefault("geometry.tangent_relative", tol.TangentRelative)
	v.SetDefault("geometry.max_markers", tol.MaxMarkers)

	v.SetDefault("layout.marker_spacing", 75.0)
	v.SetDefault("layout.marker_ref_prefix", "D")
	v.SetDefault("layout.marker_ref_start", 100)
	v.SetDefault("layout.cache_ttl", 300)

	// A3 sheet centre, 25 m per board millimetre.
	v.SetDefault("board.scale", 25.0)
	v.SetDefault("board.origin_x", 148.5)
	v.SetDefault("board.origin_y", 210.0)
	v.SetDefault("board.flip_y", true)
	v.SetDefault("board.rotation_offset", 180.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func load(v *viper.Viper) (*Config, error) {
	// Environment variables: RAILMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("RAILMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, "server.body_limit must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	g := c.Geometry
	if g.SnapTolerance < 0 {
		errs = append(errs, fmt.Sprintf("geometry.snap_tolerance must not be negative, got %g", g.SnapTolerance))
	}
	if g.VertexTolerance < 0 {
		errs = append(errs, fmt.Sprintf("geometry.vertex_tolerance must not be negative, got %g", g.VertexTolerance))
	}
	if g.TangentStep <= 0 {
		errs = append(errs, fmt.Sprintf("geometry.tangent_step must be positive, got %g", g.TangentStep))
	}
	if g.TangentRelative <= 0 {
		errs = append(errs, fmt.Sprintf("geometry.tangent_relative must be positive, got %g", g.TangentRelative))
	}
	if g.MaxMarkers <= 0 {
		errs = append(errs, fmt.Sprintf("geometry.max_markers must be positive, got %d", g.MaxMarkers))
	}

	if c.Layout.MarkerSpacing <= 0 {
		errs = append(errs, fmt.Sprintf("layout.marker_spacing must be positive, got %g", c.Layout.MarkerSpacing))
	}
	if c.Layout.MarkerRefStart < 0 {
		errs = append(errs, "layout.marker_ref_start must not be negative")
	}
	if c.Layout.CacheTTL < 0 {
		errs = append(errs, "layout.cache_ttl must not be negative")
	}
	if c.Board.Scale <= 0 {
		errs = append(errs, fmt.Sprintf("board.scale must be positive, got %g", c.Board.Scale))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
