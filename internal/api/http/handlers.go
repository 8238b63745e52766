package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/providers/contact"
	"github.com/GriffinCanCode/deskfolio/internal/providers/weather"
)

// Version is reported by the banner and health endpoints
const Version = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	desktops *desktop.Manager
	catalog  *catalog.Catalog
	relay    *contact.Relay
	weather  *weather.Poller
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	desktops *desktop.Manager,
	cat *catalog.Catalog,
	relay *contact.Relay,
	poller *weather.Poller,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		desktops: desktops,
		catalog:  cat,
		relay:    relay,
		weather:  poller,
		metrics:  metrics,
		logger:   logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "deskfolio",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"version":  Version,
		"desktops": h.desktops.Stats(),
		"catalog":  gin.H{"apps": h.catalog.Len()},
		"providers": gin.H{
			"contact": gin.H{"configured": h.relay.Configured()},
			"weather": gin.H{"configured": h.weather.Configured()},
		},
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, desktop.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, desktop.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, desktop.ErrInvalidCommand), errors.Is(err, desktop.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, desktop.ErrTooManyDesktops),
		errors.Is(err, contact.ErrNotConfigured),
		errors.Is(err, weather.ErrNotConfigured),
		errors.Is(err, weather.ErrNoData):
		return http.StatusServiceUnavailable
	case errors.Is(err, contact.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, contact.ErrDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
