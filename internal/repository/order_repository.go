package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serrano/api/internal/models"
)

const orderColumns = `
	id, user_id, cart, total_price, address_id, status, paid_at, delivered_at,
	created_at, updated_at
`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	cart, err := json.Marshal(order.Cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	const query = `
		INSERT INTO orders (
			id, user_id, cart, total_price, address_id, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`
	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		cart,
		order.TotalPrice,
		order.AddressID,
		order.Status,
	)
	return translateUnique(err)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListByShop returns orders whose cart contains at least one item fulfilled
// by the shop.
func (r *OrderRepository) ListByShop(ctx context.Context, shopID string) ([]models.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(cart) AS item
			WHERE item->>'shopId' = $1
		)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *OrderRepository) collect(rows pgx.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		order, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) scanOne(row pgx.Row) (models.Order, error) {
	var (
		order models.Order
		cart  []byte
	)
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&cart,
		&order.TotalPrice,
		&order.AddressID,
		&order.Status,
		&order.PaidAt,
		&order.DeliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}
	if err := json.Unmarshal(cart, &order.Cart); err != nil {
		return models.Order{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	return order, nil
}
