package diagnostics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// Server serves the diagnostics routes for one container.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	addr       string
}

// NewRouter builds a gin engine with the middleware stack and the
// diagnostics routes for container.
func NewRouter(serviceName string, container di.Container, log *logger.Logger) *gin.Engine {
	// Set Gin mode based on global zerolog level.
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(Recovery(log), RequestID(), RequestLogger(log))
	RegisterRoutes(engine, serviceName, container)
	return engine
}

// New creates a diagnostics server. Nothing is bound until Start.
func New(cfg Config, serviceName string, container di.Container, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Get("diagnostics")
	} else {
		log = log.WithComponent("diagnostics")
	}

	engine := NewRouter(serviceName, container, log)

	// h2c lets HTTP/2 clients talk to the server without TLS.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          cfg.IdleTimeout,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		log:    log,
		addr:   cfg.Addr,
	}
}

// Engine returns the underlying gin engine for extra routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the address and begins serving. It returns once the listener
// is bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("diagnostics server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.addr = listener.Addr().String()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Diagnostics server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("Diagnostics server started", logger.Fields("addr", s.addr))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Diagnostics server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("diagnostics server shutdown error: %w", err)
	}

	s.log.Info("Diagnostics server stopped")
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	return s.addr
}
