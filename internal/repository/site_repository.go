package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

// SiteRepository covers the small site-wide singletons: announcements,
// the pack promotion and the maintenance toggle.
type SiteRepository interface {
	CreateAnnouncement(ctx context.Context, a *domain.Announcement) error
	ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error)
	GetPromotion(ctx context.Context) (*domain.Promotion, error)
	SetPromotion(ctx context.Context, allPercent int) error
	GetMaintenance(ctx context.Context) (*domain.MaintenanceState, error)
	SetMaintenance(ctx context.Context, state domain.MaintenanceState) error
}

type siteRepository struct {
	pool *pgxpool.Pool
}

// NewSiteRepository builds repository.
func NewSiteRepository(pool *pgxpool.Pool) SiteRepository {
	return &siteRepository{pool: pool}
}

func (r *siteRepository) CreateAnnouncement(ctx context.Context, a *domain.Announcement) error {
	const query = `
        INSERT INTO announcements (text, author_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, a.Text, a.AuthorID).Scan(&a.ID, &a.CreatedAt)
}

func (r *siteRepository) ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error) {
	const query = `
        SELECT id, text, author_id, created_at
        FROM announcements ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.Text, &a.AuthorID, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *siteRepository) GetPromotion(ctx context.Context) (*domain.Promotion, error) {
	const query = `SELECT all_percent, updated_at FROM promotions WHERE id='packs'`
	var promo domain.Promotion
	if err := r.pool.QueryRow(ctx, query).Scan(&promo.AllPercent, &promo.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return &domain.Promotion{}, nil
		}
		return nil, err
	}
	return &promo, nil
}

func (r *siteRepository) SetPromotion(ctx context.Context, allPercent int) error {
	const query = `
        INSERT INTO promotions (id, all_percent, updated_at)
        VALUES ('packs', $1, NOW())
        ON CONFLICT (id) DO UPDATE SET all_percent=EXCLUDED.all_percent, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, allPercent)
	return err
}

func (r *siteRepository) GetMaintenance(ctx context.Context) (*domain.MaintenanceState, error) {
	const query = `SELECT enabled, scope, message, updated_at FROM maintenance WHERE id='global'`
	var state domain.MaintenanceState
	if err := r.pool.QueryRow(ctx, query).Scan(
		&state.Enabled, &state.Scope, &state.Message, &state.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return &domain.MaintenanceState{Scope: "global"}, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *siteRepository) SetMaintenance(ctx context.Context, state domain.MaintenanceState) error {
	const query = `
        INSERT INTO maintenance (id, enabled, scope, message, updated_at)
        VALUES ('global', $1, $2, $3, NOW())
        ON CONFLICT (id) DO UPDATE
            SET enabled=EXCLUDED.enabled, scope=EXCLUDED.scope, message=EXCLUDED.message, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, state.Enabled, state.Scope, state.Message)
	return err
}
