package dto

import (
	"time"

	"github.com/tunepulse/tunepulse-api/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Message  string  `json:"message"`
	Priority string  `json:"priority"`
	Email    string  `json:"email"`
	ImageURL *string `json:"imageUrl"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}

// TicketReplyRequest payload for operator replies.
type TicketReplyRequest struct {
	Reply string `json:"reply"`
}

// TicketResponse is the ticket shape returned to clients.
type TicketResponse struct {
	ID        string                `json:"id"`
	TicketID  string                `json:"ticketId"`
	Title     string                `json:"title"`
	Category  string                `json:"category"`
	Message   string                `json:"message"`
	Priority  domain.TicketPriority `json:"priority"`
	Email     string                `json:"email"`
	ImageURL  *string               `json:"imageUrl,omitempty"`
	Status    domain.TicketStatus   `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID,
		TicketID:  ticket.TicketID,
		Title:     ticket.Title,
		Category:  ticket.Category,
		Message:   ticket.Message,
		Priority:  ticket.Priority,
		Email:     ticket.Email,
		ImageURL:  ticket.ImageURL,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
	}
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}
