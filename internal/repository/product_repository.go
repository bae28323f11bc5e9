package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainrot-market/market-service/internal/domain"
)

const productColumns = `id, seller_id, title, description, price, status, buyer_id, created_at, updated_at`

// ProductRepository encapsulates marketplace listing persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, status *domain.ProductStatus, limit, offset int) ([]domain.Product, error)
	CountActive(ctx context.Context) (int64, error)
	MarkSold(ctx context.Context, id, buyerID string) error
	SetStatus(ctx context.Context, id string, status domain.ProductStatus) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (seller_id, title, description, price, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.SellerID,
		product.Title,
		product.Description,
		product.Price,
		product.Status,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id).Scan(
		&product.ID,
		&product.SellerID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Status,
		&product.BuyerID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, status *domain.ProductStatus, limit, offset int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if status != nil {
		args = append(args, *status)
		query += ` WHERE status=$1`
	}
	args = append(args, clampLimit(limit), offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.SellerID,
			&product.Title,
			&product.Description,
			&product.Price,
			&product.Status,
			&product.BuyerID,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}

func (r *productRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE status=$1`, domain.ProductStatusActive).Scan(&count)
	return count, err
}

// MarkSold flips an active listing to sold; a miss means the listing was
// already sold or removed by a concurrent buyer.
func (r *productRepository) MarkSold(ctx context.Context, id, buyerID string) error {
	const query = `
        UPDATE products SET status=$1, buyer_id=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.ProductStatusSold, buyerID, id, domain.ProductStatusActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) SetStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE products SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
