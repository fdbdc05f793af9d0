package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/railmap/internal/adapters/postgres"
	"github.com/samirrijal/railmap/internal/adapters/valkey"
	"github.com/samirrijal/railmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. NATS, DB and
// Cache are optional; readiness reports what is missing.
type Dependencies struct {
	Layouts  *usecases.LayoutService
	Outlines *usecases.OutlineService
	Geometry *usecases.GeometryService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
	Version  string
}
