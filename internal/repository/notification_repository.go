package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

// NotificationRepository holds each user's append-only notification log.
// Appends are single atomic inserts; nothing ever rewrites the list, so
// concurrent writers cannot drop each other's entries.
type NotificationRepository interface {
	Append(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	LatestID(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string, cursor int64) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Append(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, kind, text, thread_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		n.UserID,
		n.Kind,
		n.Text,
		n.ThreadID,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	const query = `
        SELECT id, user_id, kind, text, thread_id, created_at
        FROM notifications WHERE user_id=$1 ORDER BY id DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Kind,
			&n.Text,
			&n.ThreadID,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) LatestID(ctx context.Context, userID string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM notifications WHERE user_id=$1`, userID).Scan(&id)
	return id, err
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string, cursor int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND id > $2`, userID, cursor).Scan(&count)
	return count, err
}
