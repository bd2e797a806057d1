package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tunepulse/tunepulse-api/internal/api/dto"
	"github.com/tunepulse/tunepulse-api/internal/domain"
	"github.com/tunepulse/tunepulse-api/internal/service"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

// TicketsHandler exposes the support-ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:    req.Title,
		Category: req.Category,
		Message:  req.Message,
		Priority: req.Priority,
		Email:    req.Email,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.OK(
		"Ticket created successfully.",
		fiber.Map{"ticket": dto.NewTicketResponse(ticket)},
	))
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("OK", fiber.Map{"tickets": dto.NewTicketListResponse(tickets)}))
}

// Get handles GET /tickets/:ticketId.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("OK", fiber.Map{"ticket": dto.NewTicketResponse(ticket)}))
}

// UpdateStatus handles PATCH /tickets/:ticketId/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.SetStatus(c.UserContext(), c.Params("ticketId"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Ticket status updated.", fiber.Map{"ticket": dto.NewTicketResponse(ticket)}))
}

// Reply handles POST /tickets/:ticketId/reply.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	var req dto.TicketReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Reply(c.UserContext(), c.Params("ticketId"), req.Reply)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Reply sent to the ticket owner.", fiber.Map{"ticket": dto.NewTicketResponse(ticket)}))
}

// Delete handles DELETE /tickets/:ticketId.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.DeleteTicket(c.UserContext(), c.Params("ticketId")); err != nil {
		return err
	}
	return c.JSON(dto.OK("Ticket deleted successfully.", nil))
}
