// Package server exposes the tutoring HTTP API: chat, conversation
// management, memory statistics and file handling.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/usecase/chat"
	"github.com/sensei-tutor/sensei/pkg/usecase/conversation"
	"github.com/sensei-tutor/sensei/pkg/usecase/file"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// Server wires the use cases into an echo HTTP server
type Server struct {
	echo   *echo.Echo
	logger *slog.Logger

	chat  *chat.UseCase
	convs *conversation.UseCase
	files *file.UseCase
}

// NewInput contains dependencies for the HTTP server
type NewInput struct {
	Logger *slog.Logger
	Chat   *chat.UseCase
	Convs  *conversation.UseCase
	Files  *file.UseCase
}

// New creates the HTTP server and registers all routes
func New(input NewInput) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		logger: input.Logger,
		chat:   input.Chat,
		convs:  input.Convs,
		files:  input.Files,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)

	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.POST("/chat", s.handleChat)

	api.GET("/conversations", s.handleListConversations)
	api.GET("/conversations/search", s.handleSearchConversations)
	api.POST("/conversations/:id/archive", s.handleArchiveConversation)
	api.DELETE("/conversations/:id", s.handleDeleteConversation)
	api.GET("/memory/stats", s.handleMemoryStats)

	api.POST("/files", s.handleUploadFile)
	api.GET("/files/:id", s.handleGetFile)
	api.GET("/files/:id/download", s.handleDownloadFile)
	api.POST("/files/:id/analyze", s.handleAnalyzeFile)
	api.POST("/files/:id/search", s.handleSearchFile)
	api.DELETE("/files/:id", s.handleDeleteFile)

	return s
}

// requestLogger attaches the server logger to the request context and
// logs one line per request
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		c.SetRequest(req.WithContext(logging.With(req.Context(), s.logger)))

		start := time.Now()
		err := next(c)

		s.logger.Info("http request",
			"method", req.Method,
			"uri", req.RequestURI,
			"status", c.Response().Status,
			"duration", time.Since(start),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		return err
	}
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return goerr.Wrap(err, "http server failed", goerr.V("addr", addr))
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// httpError maps the error taxonomy to HTTP statuses. Generation failures
// carry the single user-facing retry message; internal details stay in logs.
func (s *Server) httpError(c echo.Context, err error) error {
	s.logger.Warn("request failed",
		"uri", c.Request().RequestURI, "error", err)

	switch {
	case goerr.HasTag(err, model.ErrTagValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case goerr.HasTag(err, model.ErrTagNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case goerr.HasTag(err, model.ErrTagProvider):
		msg := chat.FailureMessage(chat.ClassifyFailure(err))
		return echo.NewHTTPError(http.StatusBadGateway, msg)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
