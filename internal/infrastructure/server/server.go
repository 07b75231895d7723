package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/htmlgateway/internal/api/http"
	"github.com/GriffinCanCode/htmlgateway/internal/api/middleware"
	"github.com/GriffinCanCode/htmlgateway/internal/gateway"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/config"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/logging"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/htmlgateway/internal/markup"
	"github.com/GriffinCanCode/htmlgateway/internal/storage"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	gateway *gateway.Gateway
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance. A nil logger is built from
// cfg.Logging.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	}

	logger.Info("Initializing HTML gateway",
		zap.String("addr", cfg.Address()),
		zap.String("count_engine", cfg.Gateway.CountEngine),
		zap.String("replace_mode", cfg.Gateway.ReplaceMode),
	)

	metrics := monitoring.NewMetrics()

	counter, err := markup.NewCounter(cfg.Gateway.CountEngine)
	if err != nil {
		return nil, err
	}

	mode, err := gateway.ParseReplaceMode(cfg.Gateway.ReplaceMode)
	if err != nil {
		return nil, err
	}

	store := storage.NewDir(cfg.Files.RootDir)
	logger.Info("Serving HTML files", zap.String("root_dir", store.Root()))

	gw, err := gateway.New(store, counter, gateway.Config{
		Paths: gateway.Paths{
			Index:        cfg.Files.IndexFile,
			HTMLDir:      cfg.Files.HTMLDir,
			HTMLPattern:  cfg.Files.HTMLPattern,
			Generated:    cfg.Files.GeneratedFile,
			About:        cfg.Files.AboutFile,
			AboutRenamed: cfg.Files.AboutRenamedFile,
			Obsolete:     cfg.Files.ObsoleteFile,
		},
		ReplaceMode:  mode,
		CountWorkers: cfg.Gateway.CountWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}
	gw.WithLogger(logger).WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(logger))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	api.NewHandlers(gw, logger, metrics).Register(router)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		gateway: gw,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops. A server stopped
// through Shutdown returns nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, drains in-flight ones and waits for
// background rename tasks, all within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.gateway.Close(ctx); err != nil {
		s.logger.Error("Rename tasks still running at shutdown", zap.Error(err))
		errs = append(errs, fmt.Errorf("gateway close: %w", err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
