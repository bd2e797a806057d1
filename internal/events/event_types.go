package events

import (
	"time"

	"github.com/tunepulse/tunepulse-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketReplied          EventType = "ticket_replied"
	EventVerificationRequested  EventType = "verification_requested"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventEmailChangeRequested   EventType = "email_change_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload notifies the submitter that a ticket exists.
type TicketCreatedPayload struct {
	TicketID string                `json:"ticket_id"`
	Title    string                `json:"title"`
	Category string                `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Status   domain.TicketStatus   `json:"status"`
	Email    string                `json:"email"`
}

// TicketRepliedPayload carries an operator reply to the submitter.
type TicketRepliedPayload struct {
	TicketID string `json:"ticket_id"`
	Email    string `json:"email"`
	Reply    string `json:"reply"`
}

// CredentialRequestedPayload is shared by the three confirmation-link mails
// (verification, password reset, email change).
type CredentialRequestedPayload struct {
	UserName   string `json:"user_name"`
	Email      string `json:"email"`
	Link       string `json:"link"`
	TTLMinutes int    `json:"ttl_minutes"`
}
