package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tunepulse/tunepulse-api/internal/domain"
)

// ErrDuplicateTicketID signals a collision on the short ticket identifier.
// The caller regenerates once and hard-fails on a second collision.
var ErrDuplicateTicketID = errors.New("ticket id already exists")

// TicketRepository encapsulates ticket persistence, keyed by the short
// human-readable ticket id.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error)
	Delete(ctx context.Context, ticketID string) error
}

const ticketColumns = `id, ticket_id, title, category, message, priority, email, image_url, status, created_at`

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, title, category, message, priority, email, image_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.Title,
		ticket.Category,
		ticket.Message,
		ticket.Priority,
		ticket.Email,
		ticket.ImageURL,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateTicketID
	}
	return err
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Title,
		&ticket.Category,
		&ticket.Message,
		&ticket.Priority,
		&ticket.Email,
		&ticket.ImageURL,
		&ticket.Status,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketID,
			&ticket.Title,
			&ticket.Category,
			&ticket.Message,
			&ticket.Priority,
			&ticket.Email,
			&ticket.ImageURL,
			&ticket.Status,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// UpdateStatus sets the status in one statement and returns the updated
// record, or pgx.ErrNoRows when the ticket is absent.
func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=$2 WHERE ticket_id=$1
        RETURNING ` + ticketColumns
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, ticketID, status).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Title,
		&ticket.Category,
		&ticket.Message,
		&ticket.Priority,
		&ticket.Email,
		&ticket.ImageURL,
		&ticket.Status,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, ticketID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
