// Package server exposes the webhook surface: the chat provider posts
// inbound message batches here, and a health endpoint backs deploy checks.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balcaohq/balcao/internal/messaging"
)

// InboundHandler consumes one webhook batch. Satisfied by router.Router.
type InboundHandler interface {
	HandleBatch(ctx context.Context, batch messaging.InboundBatch)
}

// Server wraps the HTTP surface.
type Server struct {
	engine  *gin.Engine
	handler InboundHandler
	logger  *slog.Logger
	timeout time.Duration
}

// New builds the server and registers routes.
func New(handler InboundHandler, requestTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		handler: handler,
		logger:  logger,
		timeout: requestTimeout,
	}

	v1 := engine.Group("/v1")
	v1.POST("/messages", s.postMessages)
	v1.GET("/health", s.getHealth)

	return s
}

// Handler returns the http.Handler for serving or tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks serving HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", slog.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// postMessages accepts one inbound batch. The provider only needs to know
// the batch was received; processing outcome is observable via the reply
// messages themselves, so a 202 goes back as soon as handling finishes.
func (s *Server) postMessages(c *gin.Context) {
	var batch messaging.InboundBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed batch: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	s.handler.HandleBatch(ctx, batch)
	c.JSON(http.StatusAccepted, gin.H{"received": len(batch.Messages)})
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
