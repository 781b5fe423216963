package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateTicket issues the next TKT-<n> identifier from the database
// sequence, so ids stay unique across api/worker instances.
func (r *TicketRepository) CreateTicket(ctx context.Context, userID, subject string) (*domain.Ticket, error) {
	now := time.Now().UTC()
	ticket := domain.Ticket{
		UserID:    userID,
		Subject:   subject,
		Status:    domain.TicketOpen,
		CreatedAt: now,
	}

	row := r.db.QueryRowContext(ctx, `
INSERT INTO tickets (id, user_id, subject, status, created_at)
VALUES ('TKT-' || nextval('ticket_seq'), $1, $2, $3, $4)
RETURNING id
`, userID, subject, string(domain.TicketOpen), now)
	if err := row.Scan(&ticket.ID); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return &ticket, nil
}

func (r *TicketRepository) CloseTicket(ctx context.Context, ticketID string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE tickets
SET status = $2
WHERE id = $1 AND status = $3
`, ticketID, string(domain.TicketClosed), string(domain.TicketOpen))
	if err != nil {
		return fmt.Errorf("close ticket: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close ticket rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "close ticket", fmt.Errorf("no open ticket with id %s", ticketID))
	}
	return nil
}

// ActiveTicket returns the most recent open ticket for the user, or nil
// when none exists.
func (r *TicketRepository) ActiveTicket(ctx context.Context, userID string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, subject, status, created_at
FROM tickets
WHERE user_id = $1 AND status = $2
ORDER BY created_at DESC
LIMIT 1
`, userID, string(domain.TicketOpen))

	var ticket domain.Ticket
	var status string
	err := row.Scan(&ticket.ID, &ticket.UserID, &ticket.Subject, &status, &ticket.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active ticket: %w", err)
	}
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}
