// Package http provides the HTTP adapter for the application layer. It is
// a thin translation layer from HTTP requests to service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentops/hireflow/internal/application/port"
	"github.com/talentops/hireflow/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	records    service.RecordService
	sessions   service.SessionService
	letters    port.LetterDispatcher
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	records service.RecordService,
	sessions service.SessionService,
	letters port.LetterDispatcher,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		records:  records,
		sessions: sessions,
		letters:  letters,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.records, s.sessions, s.letters, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		// Committed records
		api.POST("/records", handlers.CreateRecord)
		api.GET("/records", handlers.ListRecords)
		api.GET("/records/:id", handlers.GetRecord)
		api.PUT("/records/:id", handlers.UpdateRecord)
		api.DELETE("/records/:id", handlers.DeleteRecord)
		api.POST("/records/:id/duplicate", handlers.DuplicateRecord)
		api.PATCH("/records/:id/status", handlers.TransitionStatus)
		api.POST("/records/:id/letter", handlers.EnqueueLetter)

		// Approval chain on committed records
		api.POST("/records/:id/approvers", handlers.AddApprover)
		api.DELETE("/records/:id/approvers/:approverId", handlers.RemoveApprover)
		api.PATCH("/records/:id/approvers/:approverId", handlers.DecideApprover)
		api.POST("/records/:id/approvers/:approverId/move", handlers.MoveApprover)

		// Wizard sessions
		api.POST("/sessions", handlers.StartSession)
		api.GET("/sessions/:id", handlers.GetSession)
		api.PATCH("/sessions/:id", handlers.PatchSession)
		api.POST("/sessions/:id/advance", handlers.AdvanceSession)
		api.POST("/sessions/:id/retreat", handlers.RetreatSession)
		api.POST("/sessions/:id/jump", handlers.JumpSession)
		api.DELETE("/sessions/:id", handlers.CancelSession)
		api.POST("/sessions/:id/approvers", handlers.SessionAddApprover)
		api.DELETE("/sessions/:id/approvers/:approverId", handlers.SessionRemoveApprover)
		api.POST("/sessions/:id/approvers/:approverId/move", handlers.SessionMoveApprover)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
