package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serrano/api/internal/models"
)

const shopColumns = `
	id, name, email, phone_number, password_hash, description, address, zip_code,
	avatar_url, aadhar_card_url, pan_card_url, shop_license_url, withdraw_method,
	role, status, reset_token_hash, reset_expires_at, created_at, updated_at
`

type ShopRepository struct {
	pool *pgxpool.Pool
}

func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

func (r *ShopRepository) Create(ctx context.Context, shop models.Shop) error {
	const query = `
		INSERT INTO shops (
			id, name, email, phone_number, password_hash, description, address, zip_code,
			avatar_url, aadhar_card_url, pan_card_url, shop_license_url,
			role, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		shop.ID,
		shop.Name,
		shop.Email,
		shop.PhoneNumber,
		shop.PasswordHash,
		shop.Description,
		shop.Address,
		shop.ZipCode,
		shop.AvatarURL,
		shop.AadharCardURL,
		shop.PanCardURL,
		shop.ShopLicenseURL,
		shop.Role,
		shop.Status,
	)
	return translateUnique(err)
}

func (r *ShopRepository) FindByEmail(ctx context.Context, email string) (models.Shop, error) {
	const query = `SELECT ` + shopColumns + ` FROM shops WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *ShopRepository) GetByID(ctx context.Context, id string) (models.Shop, error) {
	const query = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ShopRepository) UpdateProfile(ctx context.Context, shop models.Shop) error {
	const query = `
		UPDATE shops
		SET name = $2,
		    description = $3,
		    address = $4,
		    phone_number = $5,
		    zip_code = $6,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		shop.ID,
		shop.Name,
		shop.Description,
		shop.Address,
		shop.PhoneNumber,
		shop.ZipCode,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	const query = `UPDATE shops SET avatar_url = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, avatarURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) UpdateStatus(ctx context.Context, id string, status models.ShopStatus) error {
	const query = `UPDATE shops SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `
		UPDATE shops
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error {
	const query = `
		UPDATE shops SET reset_token_hash = $2, reset_expires_at = $3, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) UpdateWithdrawMethod(ctx context.Context, id string, withdrawMethod []byte) error {
	const query = `UPDATE shops SET withdraw_method = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, withdrawMethod)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) List(ctx context.Context, limit, offset int) ([]models.Shop, error) {
	const query = `
		SELECT ` + shopColumns + `
		FROM shops
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []models.Shop
	for rows.Next() {
		shop, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

func (r *ShopRepository) ListByStatus(ctx context.Context, status models.ShopStatus, limit, offset int) ([]models.Shop, error) {
	const query = `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []models.Shop
	for rows.Next() {
		shop, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM shops WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) scanOne(row pgx.Row) (models.Shop, error) {
	var shop models.Shop
	if err := row.Scan(
		&shop.ID,
		&shop.Name,
		&shop.Email,
		&shop.PhoneNumber,
		&shop.PasswordHash,
		&shop.Description,
		&shop.Address,
		&shop.ZipCode,
		&shop.AvatarURL,
		&shop.AadharCardURL,
		&shop.PanCardURL,
		&shop.ShopLicenseURL,
		&shop.WithdrawMethod,
		&shop.Role,
		&shop.Status,
		&shop.ResetTokenHash,
		&shop.ResetExpiresAt,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Shop{}, ErrShopNotFound
		}
		return models.Shop{}, err
	}
	return shop, nil
}
