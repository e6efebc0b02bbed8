// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fitness-coach/internal/chat"
	"fitness-coach/internal/flow"
	"fitness-coach/internal/models"
	"fitness-coach/pkg/logger"
)

// Server exposes the chat flow over HTTP.
type Server struct {
	echo   *echo.Echo
	orch   *chat.Orchestrator
	plans  chat.PlanStore
	logger *logger.Logger
	port   string
}

func NewServer(port string, orch *chat.Orchestrator, plans chat.PlanStore, log *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	// An uncaught panic in a handler becomes a generic 500 instead of
	// killing the connection.
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		orch:   orch,
		plans:  plans,
		logger: log,
		port:   port,
	}

	e.POST("/api/chat", s.HandleChat)
	e.GET("/api/plan/:sessionId", s.HandleGetPlan)
	e.POST("/api/share/email", s.HandleShareEmail)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	return s
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "port", s.port)
	return s.echo.Start(":" + s.port)
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Infow("Stopping HTTP server")
	return s.echo.Shutdown(ctx)
}

// HandleChat processes one conversational turn.
// POST /api/chat
func (s *Server) HandleChat(c echo.Context) error {
	var req models.TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	resp := s.orch.HandleTurn(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}

// HandleGetPlan returns the persisted plan record for a session.
// GET /api/plan/:sessionId
func (s *Server) HandleGetPlan(c echo.Context) error {
	sessionID := c.Param("sessionId")

	rec, found := s.plans.GetBySession(c.Request().Context(), sessionID)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Plan not found"})
	}

	return c.JSON(http.StatusOK, rec)
}

type shareEmailRequest struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
}

// HandleShareEmail is a convenience wrapper around the email-share branch:
// it fires the share trigger and then submits the address as two chat
// turns on the caller's behalf.
// POST /api/share/email
func (s *Server) HandleShareEmail(c echo.Context) error {
	var req shareEmailRequest
	if err := c.Bind(&req); err != nil || req.SessionID == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	ctx := c.Request().Context()
	trigger := flow.ShareEmailTrigger
	resp := s.orch.HandleTurn(ctx, models.TurnRequest{SessionID: req.SessionID, Message: &trigger})
	if resp.Error != "" {
		return c.JSON(http.StatusOK, resp)
	}

	resp = s.orch.HandleTurn(ctx, models.TurnRequest{SessionID: resp.SessionID, Message: &req.Email})
	return c.JSON(http.StatusOK, resp)
}
