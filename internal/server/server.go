package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alkime/dictator/internal/config"
	"github.com/alkime/dictator/internal/store"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	store  store.Store
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, st store.Store) *Server {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		secure.New(securityConfig(cfg)),
	)

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		store:  st,
	}

	logger.Debug("Configured security middleware",
		"hsts_enabled", cfg.Env == config.EnvProduction,
		"csp_mode", cfg.CSPMode,
	)
	server.setupRoutes()

	return server
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "port", s.config.Port)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1", noStore())
	{
		api.GET("/instructions", s.handleList)
		api.POST("/instructions", s.handleCreate)
		api.GET("/instructions/:id", s.handleGet)
		api.PUT("/instructions/:id", s.handleUpdate)
		api.DELETE("/instructions/:id", s.handleDelete)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dictator",
	})
}
