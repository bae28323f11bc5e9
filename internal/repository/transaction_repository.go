package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

// TransactionRepository records RotCoins balance movements.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	// CreditUnique inserts a transaction keyed by its external reference
	// and applies its credits to the user's balance in the same database
	// transaction. It reports false without error when the reference was
	// seen before, which makes provider-driven credits idempotent: the
	// reference is only burned once the balance update commits with it.
	CreditUnique(ctx context.Context, txn *domain.Transaction) (bool, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository builds repository.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

const insertTransaction = `
        INSERT INTO transactions (user_id, type, credits, note, actor_id, actor_name, reference, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	return r.pool.QueryRow(ctx, insertTransaction+` RETURNING id, created_at`,
		txn.UserID,
		txn.Type,
		txn.Credits,
		txn.Note,
		txn.ActorID,
		txn.ActorName,
		txn.Reference,
		txn.Status,
	).Scan(&txn.ID, &txn.CreatedAt)
}

func (r *transactionRepository) CreditUnique(ctx context.Context, txn *domain.Transaction) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	const insert = insertTransaction + `
        ON CONFLICT (reference) WHERE reference IS NOT NULL DO NOTHING`
	cmd, err := tx.Exec(ctx, insert,
		txn.UserID,
		txn.Type,
		txn.Credits,
		txn.Note,
		txn.ActorID,
		txn.ActorName,
		txn.Reference,
		txn.Status,
	)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	const credit = `
        UPDATE users SET balance=balance+$1, updated_at=NOW() WHERE id=$2`
	if _, err := tx.Exec(ctx, credit, txn.Credits, txn.UserID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transaction, error) {
	const query = `
        SELECT id, user_id, type, credits, note, actor_id, actor_name, reference, status, created_at
        FROM transactions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Type,
			&txn.Credits,
			&txn.Note,
			&txn.ActorID,
			&txn.ActorName,
			&txn.Reference,
			&txn.Status,
			&txn.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, txn)
	}
	return result, rows.Err()
}
