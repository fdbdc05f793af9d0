package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/railmap/internal/pkg/metrics"
)

const (
	readTimeout    = 15 * time.Second
	computeTimeout = 60 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Layout responses are coordinate arrays and compress well.
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Post("/layouts", timeout.NewWithContext(ComputeLayoutHandler(deps), computeTimeout))
	v1.Get("/layouts", timeout.NewWithContext(ListLayoutsHandler(deps), readTimeout))
	v1.Get("/layouts/:id", timeout.NewWithContext(GetLayoutHandler(deps), readTimeout))
	v1.Delete("/layouts/:id", timeout.NewWithContext(DeleteLayoutHandler(deps), readTimeout))
	v1.Get("/layouts/:id/markers", timeout.NewWithContext(LayoutMarkersHandler(deps), readTimeout))
	v1.Get("/layouts/:id/stations", timeout.NewWithContext(LayoutStationsHandler(deps), readTimeout))
	v1.Get("/layouts/:id/footprints", timeout.NewWithContext(LayoutFootprintsHandler(deps), readTimeout))
	v1.Get("/layouts/:id/geojson", timeout.NewWithContext(LayoutGeoJSONHandler(deps), readTimeout))
	v1.Post("/outlines", timeout.NewWithContext(ComputeOutlineHandler(deps), computeTimeout))
	v1.Post("/geometry/segments", timeout.NewWithContext(SegmentHandler(deps), readTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
