package httpapi

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/infinity-apps/workspace/internal/bus"
	"github.com/infinity-apps/workspace/internal/calendar"
	"github.com/infinity-apps/workspace/internal/health"
	"github.com/infinity-apps/workspace/internal/metrics"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	stores  Stores
	signals *bus.Bus
	checker *health.Checker
	metrics *metrics.Metrics
	grids   *calendar.GridCache
	logger  zerolog.Logger

	pinnedLimit    int
	gridVisibleCap int
	startTime      time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	cfg ServerConfig,
	stores Stores,
	signals *bus.Bus,
	checker *health.Checker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Handlers {
	gridCacheSize := cfg.GridCacheSize
	if gridCacheSize <= 0 {
		gridCacheSize = 16
	}
	return &Handlers{
		stores:         stores,
		signals:        signals,
		checker:        checker,
		metrics:        m,
		grids:          calendar.NewGridCache(gridCacheSize),
		logger:         logger.With().Str("component", "handlers").Logger(),
		pinnedLimit:    cfg.PinnedLimit,
		gridVisibleCap: cfg.GridVisibleCap,
		startTime:      time.Now(),
	}
}
