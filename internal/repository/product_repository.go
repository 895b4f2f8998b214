package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serrano/api/internal/models"
)

const productColumns = `
	id, name, description, category, original_price, discount_price, stock,
	image_urls, created_at, updated_at
`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product models.Product) error {
	const query = `
		INSERT INTO products (
			id, name, description, category, original_price, discount_price, stock,
			image_urls, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.OriginalPrice,
		product.DiscountPrice,
		product.Stock,
		product.ImageURLs,
	)
	return translateUnique(err)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListByShop returns products the shop holds stock for.
func (r *ProductRepository) ListByShop(ctx context.Context, shopID string) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id IN (SELECT product_id FROM product_stocks WHERE shop_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

// AddStock adds delta units of a product to the shop's slice and to the
// product total, in one transaction so the totals never drift apart.
func (r *ProductRepository) AddStock(ctx context.Context, productID string, shopID string, delta int) (models.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback(ctx)

	const upsertStock = `
		INSERT INTO product_stocks (product_id, shop_id, stock, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_id, shop_id)
		DO UPDATE SET stock = product_stocks.stock + EXCLUDED.stock, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, upsertStock, productID, shopID, delta); err != nil {
		return models.Product{}, err
	}

	const bumpTotal = `
		UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := tx.Exec(ctx, bumpTotal, productID, delta)
	if err != nil {
		return models.Product{}, err
	}
	if cmd.RowsAffected() == 0 {
		return models.Product{}, ErrProductNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Product{}, err
	}

	return r.GetByID(ctx, productID)
}

func (r *ProductRepository) collect(rows pgx.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		product, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) scanOne(row pgx.Row) (models.Product, error) {
	var product models.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.OriginalPrice,
		&product.DiscountPrice,
		&product.Stock,
		&product.ImageURLs,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}
