package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/deskfolio/internal/api/http"
	"github.com/GriffinCanCode/deskfolio/internal/api/middleware"
	"github.com/GriffinCanCode/deskfolio/internal/api/ws"
	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/session"
	"github.com/GriffinCanCode/deskfolio/internal/domain/terminal"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/config"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/supervise"
	"github.com/GriffinCanCode/deskfolio/internal/providers/contact"
	"github.com/GriffinCanCode/deskfolio/internal/providers/weather"
)

const shutdownTimeout = 10 * time.Second

// contactLimit keeps the contact form from being used as a mail cannon
var contactLimit = middleware.RateLimitConfig{RequestsPerSecond: 1, Burst: 3}

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	catalog  *catalog.Catalog
	desktops *desktop.Manager
	relay    *contact.Relay
	weather  *weather.Poller
	handler  http.Handler
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Initializing deskfolio server",
		zap.String("addr", cfg.Addr()),
		zap.String("catalog_dir", cfg.Catalog.Dir))

	metrics := monitoring.NewMetrics()

	cat, err := loadCatalog(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded", zap.Int("apps", cat.Len()))

	desktops := desktop.NewManager(cat, desktop.Options{
		Viewport: window.Viewport{
			Width:  cfg.Desktop.ViewportWidth,
			Height: cfg.Desktop.ViewportHeight,
			TopBar: cfg.Desktop.TopBar,
		},
		Delays: session.Delays{
			Login:    cfg.Desktop.LoginDelay,
			Shutdown: cfg.Desktop.ShutdownDelay,
			Restart:  cfg.Desktop.RestartDelay,
		},
		CloseDelay: cfg.Desktop.CloseDelay,
		Owner:      cfg.Catalog.Owner,
		Evaluator:  terminal.NewSandbox(cfg.Desktop.CalcTimeout),
		Logger:     logger,
		Recorder:   metrics,
	}, desktop.ManagerConfig{
		MaxDesktops:  cfg.Desktop.Max,
		IdleTTL:      cfg.Desktop.IdleTTL,
		ReapInterval: cfg.Desktop.ReapInterval,
	})
	metrics.ObserveWindows(func() int { return desktops.Stats().Windows })

	relay := contact.New(contact.Config{
		APIKey:   cfg.Contact.APIKey,
		Endpoint: cfg.Contact.Endpoint,
		From:     cfg.Contact.From,
		To:       cfg.Contact.To,
		Timeout:  cfg.Contact.Timeout,
	}, logger)
	if !relay.Configured() {
		logger.Warn("Contact relay disabled, CONTACT_API_KEY or CONTACT_TO missing")
	}

	poller := weather.New(weather.Config{
		APIKey:   cfg.Weather.APIKey,
		Endpoint: cfg.Weather.Endpoint,
		City:     cfg.Weather.City,
		Interval: cfg.Weather.Interval,
		RetryMax: 3,
	}, logger)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		catalog:  cat,
		desktops: desktops,
		relay:    relay,
		weather:  poller,
	}
	s.handler = s.routes()

	logger.Info("Server initialized successfully")
	return s, nil
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.Load(os.DirFS(dir))
}

func (s *Server) routes() http.Handler {
	if !s.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.Logger(s.logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.CORSFromOrigins(s.cfg.Server.CORSOrigins)))
	if s.cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.cfg.RateLimit.Burst))
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.cfg.RateLimit.RequestsPerSecond,
			Burst:             s.cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(s.desktops, s.catalog, s.relay, s.weather, s.metrics, s.logger)
	handlers.Register(router, middleware.RateLimit(contactLimit))

	wsHandler := ws.NewHandler(s.desktops, s.metrics, s.logger, s.cfg.Server.CORSOrigins)
	router.GET("/desktops/:id/stream", wsHandler.HandleConnection)

	// WebSocket upgrades need the raw connection, so they bypass gzip
	gz := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Desktops returns the desktop registry
func (s *Server) Desktops() *desktop.Manager {
	return s.desktops
}

// Serve runs the HTTP server, the idle desktop reaper and the weather poller
// under one supervisor until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, nil)
}

// ServeListener is Serve on an existing listener
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	super := supervise.New("deskfolio", s.logger)
	supervise.Add(super, supervise.NewFunc("http-server", func(ctx context.Context) error {
		return s.serveHTTP(ctx, ln)
	}))
	supervise.Add(super, s.desktops)
	supervise.Add(super, s.weather)

	err := super.Serve(ctx)
	s.desktops.StopAll()
	s.logger.Info("Server stopped")

	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) serveHTTP(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if ln != nil {
			s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
			err = srv.Serve(ln)
		} else {
			s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	<-errCh
	return ctx.Err()
}
