package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jkilzi/taskqueue/internal/config"
)

const (
	apiPrefix         = "/api/v1"
	readHeaderTimeout = 10 * time.Second
)

type Server struct {
	srv *http.Server
	log *zap.SugaredLogger
}

// NewServer builds the HTTP server. registerHandlerFn receives the router
// group mounted at /api/v1.
func NewServer(cfg *config.Configuration, registerHandlerFn func(router *gin.RouterGroup)) (*Server, error) {
	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http port: %d", cfg.Server.HTTPPort)
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(zap.L().Named("http"), time.RFC3339, true),
		ginzap.RecoveryWithZap(zap.L().Named("http"), true),
	)

	registerHandlerFn(engine.Group(apiPrefix))

	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: zap.S().Named("server"),
	}, nil
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until Stop is called or the listener fails. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	s.log.Infow("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Stop shuts the server down, waiting for in-flight requests until ctx is
// done.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Errorw("failed to shutdown server", "error", err)
		return
	}
	s.log.Info("http server stopped")
}
