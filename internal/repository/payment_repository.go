package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"serrano/api/internal/models"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Create(ctx context.Context, payment models.Payment) error {
	const query = `
		INSERT INTO payments (
			id, gateway_order_id, gateway_payment_id, gateway_signature, created_at
		) VALUES (
			$1, $2, $3, $4, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.GatewayOrderID,
		payment.GatewayPaymentID,
		payment.GatewaySignature,
	)
	return translateUnique(err)
}
