// Package httpapi is the HTTP surface of the workspace service: CRUD for
// calendar items, tags and projects, the derived-view projections, the
// dashboard layout and theme preferences, and the calendar-open signal.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/bus"
	"github.com/infinity-apps/workspace/internal/calendar"
	"github.com/infinity-apps/workspace/internal/dashboard"
	"github.com/infinity-apps/workspace/internal/health"
	"github.com/infinity-apps/workspace/internal/metrics"
	"github.com/infinity-apps/workspace/internal/prefs"
	"github.com/infinity-apps/workspace/internal/project"
	"github.com/infinity-apps/workspace/internal/requestid"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	ListenAddr     string
	APIKey         string // empty disables the key check
	CORSOrigins    string
	PinnedLimit    int
	GridVisibleCap int
	GridCacheSize  int
}

// Stores bundles the state containers the handlers operate on.
type Stores struct {
	Calendar  *calendar.Store
	Projects  *project.Store
	Dashboard *dashboard.Store
	Prefs     *prefs.Store
}

// Server is the workspace HTTP Fiber application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	config   ServerConfig
}

// NewServer creates and configures the workspace HTTP server.
func NewServer(
	cfg ServerConfig,
	stores Stores,
	signals *bus.Bus,
	checker *health.Checker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	handlers := NewHandlers(cfg, stores, signals, checker, m, logger)

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "httpapi").Logger(),
		config:   cfg,
	}

	s.setupMiddleware(cfg, logger)
	s.setupRoutes(handlers, m)

	return s
}

func (s *Server) setupMiddleware(cfg ServerConfig, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware
	s.app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set("X-Request-ID", reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		}))
	}

	s.app.Use(newAuthMiddleware(cfg.APIKey, logger))

	// Audit middleware (log every request, skip noisy probes)
	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("request_id", fmt.Sprintf("%v", c.Locals("request_id"))).
			Msg("api request")

		return c.Next()
	})
}

func (s *Server) setupRoutes(h *Handlers, m *metrics.Metrics) {
	// Probe endpoints (no auth required — handled in auth middleware)
	s.app.Get("/healthz", h.Liveness)
	s.app.Get("/readyz", h.Readiness)

	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	// Calendar items
	v1.Get("/calendar/items", h.ListItems)
	v1.Post("/calendar/items", h.CreateItem)
	v1.Patch("/calendar/items/:id", h.PatchItem)
	v1.Delete("/calendar/items/:id", h.DeleteItem)

	// Tags
	v1.Get("/calendar/tags", h.ListTags)
	v1.Post("/calendar/tags", h.CreateTag)
	v1.Patch("/calendar/tags/:id", h.PatchTag)
	v1.Delete("/calendar/tags/:id", h.DeleteTag)

	// Projections
	v1.Get("/calendar/agenda", h.Agenda)
	v1.Get("/calendar/grid", h.Grid)
	v1.Get("/calendar/pinned", h.PinnedItems)
	v1.Get("/calendar/upcoming", h.UpcomingItems)

	// Calendar-open signal
	v1.Post("/calendar/open", h.OpenCalendar)

	// Projects
	v1.Get("/projects", h.ListProjects)
	v1.Get("/projects/:id", h.GetProject)
	v1.Post("/projects", h.CreateProject)
	v1.Patch("/projects/:id", h.PatchProject)
	v1.Delete("/projects/:id", h.DeleteProject)

	// Dashboard layout
	v1.Get("/dashboard/layout", h.GetLayout)
	v1.Put("/dashboard/layout/:id", h.PutLayoutSlot)
	v1.Delete("/dashboard/layout/:id", h.DeleteLayoutSlot)

	// Theme
	v1.Get("/theme", h.GetTheme)
	v1.Put("/theme", h.PutTheme)

	// Signal stream
	s.setupWebSocket()
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info().Str("addr", addr).Msg("http server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("http server shutting down")
	return s.app.ShutdownWithContext(ctx)
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// newAuthMiddleware validates the Authorization header against a static API
// key. An empty key disables the check. Probe endpoints are always open.
func newAuthMiddleware(apiKey string, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}

		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return problemResponse(c, fiber.StatusUnauthorized,
				"missing_auth", "Unauthorized",
				"Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return problemResponse(c, fiber.StatusUnauthorized,
				"invalid_auth_scheme", "Unauthorized",
				"Authorization header must use Bearer scheme")
		}
		if strings.TrimPrefix(authHeader, "Bearer ") != apiKey {
			logger.Warn().
				Str("path", path).
				Str("method", c.Method()).
				Msg("unauthorized request: invalid API key")
			return problemResponse(c, fiber.StatusUnauthorized,
				"invalid_api_key", "Unauthorized",
				"Invalid API key")
		}
		return c.Next()
	}
}
