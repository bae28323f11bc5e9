package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

const ticketColumns = `id, owner_id, title, body, status, close_reason, closed_at, created_at, updated_at`

// TicketRepository encapsulates support ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Ticket, error)
	ListByStatuses(ctx context.Context, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error)
	SetStatus(ctx context.Context, id string, status domain.TicketStatus) error
	Close(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
	AddMessage(ctx context.Context, msg *domain.TicketMessage) error
	ListMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, title, body, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Title,
		ticket.Body,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Title,
		&ticket.Body,
		&ticket.Status,
		&ticket.CloseReason,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE owner_id=$1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, ownerID, clampLimit(limit), offset)
}

func (r *ticketRepository) ListByStatuses(ctx context.Context, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	if len(statuses) == 0 {
		statuses = []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusPending}
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, 0, len(statuses)+2)
	for i, status := range statuses {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	args = append(args, clampLimit(limit), offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE status IN (%s)
        ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		ticketColumns, strings.Join(placeholders, ","), len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.OwnerID,
			&ticket.Title,
			&ticket.Body,
			&ticket.Status,
			&ticket.CloseReason,
			&ticket.ClosedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Close(ctx context.Context, id, reason string) error {
	const query = `
        UPDATE tickets SET status=$1, close_reason=$2, closed_at=NOW(), updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusClosed, reason, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) AddMessage(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, sender_id, sender_name, sender_role, body)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.SenderName,
		msg.SenderRole,
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *ticketRepository) ListMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, sender_id, sender_name, sender_role, body, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketMessage
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.SenderRole,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
