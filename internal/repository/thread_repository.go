package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

// ThreadRepository manages message threads and their denormalized
// last-message summaries.
type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) error
	GetByID(ctx context.Context, id string) (*domain.Thread, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Thread, error)
	IsParticipant(ctx context.Context, threadID, userID string) (bool, error)
	AppendMessage(ctx context.Context, msg *domain.ThreadMessage) error
	ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ThreadMessage, error)
}

type threadRepository struct {
	pool *pgxpool.Pool
}

// NewThreadRepository builds repository.
func NewThreadRepository(pool *pgxpool.Pool) ThreadRepository {
	return &threadRepository{pool: pool}
}

func (r *threadRepository) Create(ctx context.Context, thread *domain.Thread) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertThread = `
        INSERT INTO threads (created_by, broadcast)
        VALUES ($1,$2)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertThread, thread.CreatedBy, thread.Broadcast).
		Scan(&thread.ID, &thread.CreatedAt); err != nil {
		return err
	}

	for _, participant := range thread.ParticipantIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO thread_participants (thread_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			thread.ID, participant); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *threadRepository) GetByID(ctx context.Context, id string) (*domain.Thread, error) {
	const query = `
        SELECT t.id, t.created_by, t.broadcast, t.last_message_text, t.last_message_sender,
               t.last_message_at, t.created_at,
               COALESCE(array_agg(p.user_id) FILTER (WHERE p.user_id IS NOT NULL), '{}')
        FROM threads t
        LEFT JOIN thread_participants p ON p.thread_id = t.id
        WHERE t.id=$1
        GROUP BY t.id`
	var thread domain.Thread
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&thread.ID,
		&thread.CreatedBy,
		&thread.Broadcast,
		&thread.LastMessageText,
		&thread.LastMessageSender,
		&thread.LastMessageAt,
		&thread.CreatedAt,
		&thread.ParticipantIDs,
	); err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Thread, error) {
	const query = `
        SELECT t.id, t.created_by, t.broadcast, t.last_message_text, t.last_message_sender,
               t.last_message_at, t.created_at
        FROM threads t
        JOIN thread_participants p ON p.thread_id = t.id
        WHERE p.user_id=$1 OR t.broadcast
        GROUP BY t.id
        ORDER BY t.last_message_at DESC NULLS LAST
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Thread
	for rows.Next() {
		var thread domain.Thread
		if err := rows.Scan(
			&thread.ID,
			&thread.CreatedBy,
			&thread.Broadcast,
			&thread.LastMessageText,
			&thread.LastMessageSender,
			&thread.LastMessageAt,
			&thread.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, thread)
	}
	return result, rows.Err()
}

func (r *threadRepository) IsParticipant(ctx context.Context, threadID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM thread_participants WHERE thread_id=$1 AND user_id=$2
        ) OR EXISTS(
            SELECT 1 FROM threads WHERE id=$1 AND broadcast
        )`
	var ok bool
	if err := r.pool.QueryRow(ctx, query, threadID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// AppendMessage inserts the message and refreshes the thread summary in
// one transaction so listings never show a stale last message.
func (r *threadRepository) AppendMessage(ctx context.Context, msg *domain.ThreadMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertMsg = `
        INSERT INTO thread_messages (thread_id, sender_id, sender_name, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertMsg,
		msg.ThreadID, msg.SenderID, msg.SenderName, msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	const updateSummary = `
        UPDATE threads SET last_message_text=$1, last_message_sender=$2, last_message_at=$3
        WHERE id=$4`
	cmd, err := tx.Exec(ctx, updateSummary, msg.Body, msg.SenderName, msg.CreatedAt, msg.ThreadID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func (r *threadRepository) ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ThreadMessage, error) {
	const query = `
        SELECT id, thread_id, sender_id, sender_name, body, created_at
        FROM thread_messages WHERE thread_id=$1 ORDER BY created_at ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, threadID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ThreadMessage
	for rows.Next() {
		var msg domain.ThreadMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.ThreadID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
