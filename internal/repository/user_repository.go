package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

const userColumns = `id, email, display_name, avatar_url, password_hash, role, balance,
        warnings, banned, banned_at, banned_until, notif_cursor, created_at, updated_at`

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, search string, limit, offset int) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id, displayName, avatarURL string) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	SetBan(ctx context.Context, id string, banned bool, bannedAt, bannedUntil *time.Time) error
	IncrementWarnings(ctx context.Context, id string) (int, error)
	AdjustBalance(ctx context.Context, id string, delta int64) (int64, error)
	DebitBalance(ctx context.Context, id string, amount int64) (int64, error)
	AdvanceNotifCursor(ctx context.Context, id string, cursor int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, display_name, avatar_url, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, balance, warnings, notif_cursor, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.Balance, &user.Warnings, &user.NotifCursor, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.Role,
		&user.Balance,
		&user.Warnings,
		&user.Banned,
		&user.BannedAt,
		&user.BannedUntil,
		&user.NotifCursor,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` WHERE email ILIKE $1 OR display_name ILIKE $1 OR role::text ILIKE $1`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.AvatarURL,
			&user.PasswordHash,
			&user.Role,
			&user.Balance,
			&user.Warnings,
			&user.Banned,
			&user.BannedAt,
			&user.BannedUntil,
			&user.NotifCursor,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, displayName, avatarURL string) error {
	const query = `
        UPDATE users SET display_name=$1, avatar_url=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, displayName, avatarURL, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	const query = `UPDATE users SET role=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, role, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetBan(ctx context.Context, id string, banned bool, bannedAt, bannedUntil *time.Time) error {
	const query = `
        UPDATE users SET banned=$1, banned_at=$2, banned_until=$3, updated_at=NOW() WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, banned, bannedAt, bannedUntil, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) IncrementWarnings(ctx context.Context, id string) (int, error) {
	const query = `
        UPDATE users SET warnings=warnings+1, updated_at=NOW() WHERE id=$1 RETURNING warnings`
	var warnings int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&warnings); err != nil {
		return 0, err
	}
	return warnings, nil
}

// AdjustBalance applies an atomic increment and returns the new balance.
func (r *userRepository) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	const query = `
        UPDATE users SET balance=balance+$1, updated_at=NOW() WHERE id=$2 RETURNING balance`
	var balance int64
	if err := r.pool.QueryRow(ctx, query, delta, id).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// DebitBalance subtracts amount only when the balance covers it. A miss
// on an existing user means insufficient funds.
func (r *userRepository) DebitBalance(ctx context.Context, id string, amount int64) (int64, error) {
	const query = `
        UPDATE users SET balance=balance-$1, updated_at=NOW()
        WHERE id=$2 AND balance >= $1
        RETURNING balance`
	var balance int64
	if err := r.pool.QueryRow(ctx, query, amount, id).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// AdvanceNotifCursor moves the read cursor forward only; concurrent
// acknowledgements cannot move it backwards.
func (r *userRepository) AdvanceNotifCursor(ctx context.Context, id string, cursor int64) error {
	const query = `
        UPDATE users SET notif_cursor=GREATEST(notif_cursor, $1), updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, cursor, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
