package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tunepulse/tunepulse-api/internal/domain"
	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/repository"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

// TicketService coordinates support-ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	return &TicketService{
		tickets:    tickets,
		dispatcher: dispatcher,
		validate:   validator.New(),
		logger:     logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title    string  `validate:"required,min=3"`
	Category string  `validate:"required"`
	Message  string  `validate:"required,min=10"`
	Priority string  `validate:"required,oneof=Low Medium High"`
	Email    string  `validate:"required,email"`
	ImageURL *string `validate:"-"`
}

// ticketFieldMessages maps input fields to the messages returned to clients.
// Every failing field is reported; validation does not stop at the first.
var ticketFieldMessages = map[string]string{
	"Title":    "Title must be at least 3 characters long.",
	"Category": "Category is required.",
	"Message":  "Message must be at least 10 characters long.",
	"Priority": "Priority must be one of Low, Medium, or High.",
	"Email":    "A valid email address is required.",
}

// CreateTicket validates input, assigns a short ticket id and persists the
// ticket with status Open. The submitter is notified through the dispatcher.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.Message = strings.TrimSpace(input.Message)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketID: generateTicketID(),
		Title:    input.Title,
		Category: input.Category,
		Message:  input.Message,
		Priority: domain.TicketPriority(input.Priority),
		Email:    input.Email,
		ImageURL: input.ImageURL,
		Status:   domain.TicketStatusOpen,
	}

	err := s.tickets.Create(ctx, ticket)
	if errors.Is(err, repository.ErrDuplicateTicketID) {
		// Collisions are possible within a millisecond; one retry with a
		// fresh id, then give up.
		ticket.TicketID = generateTicketID()
		err = s.tickets.Create(ctx, ticket)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.TicketID,
			Title:    ticket.Title,
			Category: ticket.Category,
			Priority: ticket.Priority,
			Status:   ticket.Status,
			Email:    ticket.Email,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by its short id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns all tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// SetStatus updates a ticket's status.
func (s *TicketService) SetStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, apperrors.NewValidationError("invalid ticket status", map[string]any{
			"status": "Status must be one of Open, In Progress, or Resolved.",
		})
	}
	ticket, err := s.tickets.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Reply sends an operator reply to the ticket submitter's stored address.
// Delivery is fire-and-forget; a mail failure is logged by the notifier and
// never surfaces here.
func (s *TicketService) Reply(ctx context.Context, ticketID, reply string) (*domain.Ticket, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apperrors.NewValidationError("reply must not be empty", nil)
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketReplied,
		Payload: events.TicketRepliedPayload{
			TicketID: ticket.TicketID,
			Email:    ticket.Email,
			Reply:    reply,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket by its short id.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	err := s.tickets.Delete(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) validateInput(input TicketCreateInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternalError(err)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		msg, ok := ticketFieldMessages[fe.Field()]
		if !ok {
			msg = "Invalid value."
		}
		details[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = msg
	}
	return apperrors.NewValidationError("ticket validation failed", details)
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateTicketID builds a short human-readable id: the last six base36
// digits of the current millisecond timestamp plus four random base36 chars.
func generateTicketID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is unavailable only in degenerate environments; a
		// uuid-derived suffix still keeps ids unique enough for the retry.
		return "T-" + ts + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	}
	suffix := make([]byte, 4)
	for i, b := range buf {
		suffix[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return "T-" + ts + "-" + string(suffix)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
