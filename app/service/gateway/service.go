package gateway

import (
	"context"
	"fairwaydesk/app/config"
	"fairwaydesk/app/service/dialog"
	"fairwaydesk/app/service/session"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

type dialogService interface {
	HandleUserTurn(ctx context.Context, sessionID, userText string) (string, error)
}

// Service is the HTTP face of the agent. It also enforces the operational
// invariant the dialog loop relies on: at most one turn in flight per
// session id.
type Service struct {
	cfg        *config.Config
	dialogSvc  dialogService
	sessionSvc *session.Service

	app      *fiber.App
	inflight sync.Map
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:        do.MustInvoke[*config.Config](di),
		dialogSvc:  do.MustInvoke[*dialog.Service](di),
		sessionSvc: do.MustInvoke[*session.Service](di),
	}

	s.initRouter()

	return s, nil
}

func (s *Service) initRouter() {
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	api := s.app.Group("/api/support")
	api.Post("/agent", s.handleAgentTurn)
	api.Get("/greeting", s.handleGreeting)
	api.Get("/holding", s.handleHolding)
	api.Post("/archive", s.handleArchive)
}

func (s *Service) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	slog.Info("Gateway listening", "address", s.cfg.Server.Address)

	if err := s.app.Listen(s.cfg.Server.Address); err != nil {
		slog.Error("Gateway stopped", "error", err, "telegram", true)
	}
}

func (s *Service) handleAgentTurn(c *fiber.Ctx) error {
	var req turnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(turnResponse{
			BotMessage: "Malformed request.",
		})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(turnResponse{
			BotMessage: "Missing session_id.",
		})
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	start := time.Now()

	message, err := s.dialogSvc.HandleUserTurn(c.Context(), sessionID, req.UserMessage)
	if err != nil {
		slog.Error("HandleUserTurn failed",
			"session_id", sessionID,
			"error", err,
			"telegram", true)

		// The caller still gets a spoken-word apology, never an error blob
		return c.JSON(turnResponse{BotMessage: dialog.FallbackMessage})
	}

	slog.Info("Processed turn",
		"session_id", sessionID,
		"duration", time.Since(start))

	return c.JSON(turnResponse{BotMessage: message})
}

// handleGreeting mints a fresh session id and hands the transport an
// opening line.
func (s *Service) handleGreeting(c *fiber.Ctx) error {
	return c.JSON(greetingResponse{
		SessionID:  uuid.NewString(),
		BotMessage: greetingMessages[rand.Intn(len(greetingMessages))],
	})
}

func (s *Service) handleHolding(c *fiber.Ctx) error {
	return c.JSON(turnResponse{
		BotMessage: holdingMessages[rand.Intn(len(holdingMessages))],
	})
}

// handleArchive moves a finished conversation to the long retention window.
func (s *Service) handleArchive(c *fiber.Ctx) error {
	var req archiveRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := s.sessionSvc.Archive(req.SessionID); err != nil {
		slog.Error("Failed to archive session", "session_id", req.SessionID, "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) lockSession(sessionID string) func() {
	v, _ := s.inflight.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

func (s *Service) Shutdown() error {
	return s.app.Shutdown()
}
