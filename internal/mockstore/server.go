package mockstore

import (
	"errors"
	"runtime/debug"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
)

// Server bundles the store, the simulated pipeline and the fiber app.
type Server struct {
	store    *Store
	analyzer *Analyzer
	app      *fiber.App
	logger   *zap.Logger
}

// NewServer wires the HTTP contract over a fresh store.
func NewServer(logger *zap.Logger, opts AnalyzerOptions) *Server {
	store := NewStore()
	server := &Server{
		store:    store,
		analyzer: NewAnalyzer(store, logger, opts),
		logger:   logger,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(server.errorMiddleware)
	registerRoutes(app, server)
	server.app = app
	return server
}

// App exposes the fiber app for Listen and for in-process tests via
// app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Store exposes the backing store for test fixtures.
func (s *Server) Store() *Store {
	return s.store
}

// registerRoutes wires the ticket endpoints. Paths match the backend
// contract exactly; the dashboard points at either interchangeably.
func registerRoutes(app *fiber.App, s *Server) {
	tickets := app.Group("/api/tickets")
	tickets.Post("/", s.createTicket)
	tickets.Get("/", s.listTickets)
	tickets.Get("/stats/summary", s.stats)
	tickets.Get("/:id", s.getTicket)
	tickets.Patch("/:id", s.updateTicket)
	tickets.Post("/:id/resolve", s.resolveTicket)
	tickets.Delete("/:id", s.deleteTicket)
}

func (s *Server) errorMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = &storeError{Status: 500, Detail: "internal server error"}
		}
		if err != nil {
			var se *storeError
			if !errors.As(err, &se) {
				s.logger.Error("request failed", zap.Error(err))
				se = &storeError{Status: 500, Detail: "internal server error"}
			}
			c.Status(se.Status)
			_ = c.JSON(fiber.Map{"detail": se.Detail})
			err = nil
		}
	}()
	return c.Next()
}

// createTicket POST /api/tickets/.
func (s *Server) createTicket(c *fiber.Ctx) error {
	var req client.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return &storeError{Status: 400, Detail: "invalid payload"}
	}
	in := domain.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
	}
	if req.CustomerName != nil {
		in.CustomerName = *req.CustomerName
	}
	if err := domain.ValidateCreate(in); err != nil {
		return &storeError{Status: 400, Detail: err.Error()}
	}

	ticket := s.store.Create(req)
	s.analyzer.Enqueue(ticket.ID)
	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID))

	return c.Status(fiber.StatusAccepted).JSON(client.CreateTicketResponse{
		ID:      ticket.ID,
		Status:  ticket.Status,
		Message: "Complaint received. Analysis is running in the background.",
	})
}

// listTickets GET /api/tickets/.
func (s *Server) listTickets(c *fiber.Ctx) error {
	query := client.ListQuery{
		Status:   domain.Status(c.Query("status")),
		Urgency:  domain.Urgency(c.Query("urgency")),
		Category: domain.Category(c.Query("category")),
		Limit:    parseInt(c.Query("limit"), 0),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	return c.JSON(s.store.List(query))
}

// getTicket GET /api/tickets/:id.
func (s *Server) getTicket(c *fiber.Ctx) error {
	ticket, err := s.store.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// updateTicket PATCH /api/tickets/:id.
func (s *Server) updateTicket(c *fiber.Ctx) error {
	var req client.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return &storeError{Status: 400, Detail: "invalid payload"}
	}
	ticket, err := s.store.Update(c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// resolveTicket POST /api/tickets/:id/resolve.
func (s *Server) resolveTicket(c *fiber.Ctx) error {
	var req client.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return &storeError{Status: 400, Detail: "invalid payload"}
	}
	ticket, err := s.store.Resolve(c.Params("id"), req)
	if err != nil {
		return err
	}
	s.logger.Info("ticket resolved", zap.String("ticket_id", ticket.ID), zap.String("resolved_by", *ticket.ResolvedBy))
	return c.JSON(ticket)
}

// deleteTicket DELETE /api/tickets/:id.
func (s *Server) deleteTicket(c *fiber.Ctx) error {
	if err := s.store.Delete(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// stats GET /api/tickets/stats/summary.
func (s *Server) stats(c *fiber.Ctx) error {
	return c.JSON(s.store.Stats())
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
