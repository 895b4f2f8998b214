package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"serrano/api/internal/apperr"
	"serrano/api/internal/config"
	"serrano/api/internal/ids"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
	"serrano/api/internal/security"
)

type Mailer interface {
	SendActivation(ctx context.Context, toEmail, name, token string) error
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

type TokenBurner interface {
	Burn(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// ActivationService runs the two out-of-band token flows: shop signup
// activation and password reset. Tokens are stateless and short-lived; only
// their IDs touch Redis, to stop replay of an already-exchanged token.
type ActivationService struct {
	users  UserStore
	shops  ShopStore
	admins AdminStore
	mailer Mailer
	burner TokenBurner
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewActivationService(
	users UserStore,
	shops ShopStore,
	admins AdminStore,
	mailer Mailer,
	burner TokenBurner,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *ActivationService {
	return &ActivationService{
		users:  users,
		shops:  shops,
		admins: admins,
		mailer: mailer,
		burner: burner,
		cfg:    cfg,
		log:    log,
	}
}

type RegisterShopInput struct {
	Name           string
	Email          string
	Password       string
	PhoneNumber    string
	Address        string
	ZipCode        string
	AvatarURL      *string
	AadharCardURL  *string
	PanCardURL     *string
	ShopLicenseURL *string
}

// RegisterShop stages a new shop: nothing is persisted until the emailed
// activation token is exchanged. The password is hashed before it enters
// the token, so the plaintext never leaves this call.
func (s *ActivationService) RegisterShop(ctx context.Context, input RegisterShopInput) error {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return apperr.New(apperr.KindValidation, "name, email and password are required")
	}

	if _, err := s.shops.FindByEmail(ctx, input.Email); err == nil {
		return apperr.New(apperr.KindConflict, "user already exists")
	} else if !errors.Is(err, repository.ErrShopNotFound) {
		return apperr.Wrap(apperr.KindInternal, "find shop", err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	pending := security.PendingSeller{
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   passwordHash,
		PhoneNumber:    input.PhoneNumber,
		Address:        input.Address,
		ZipCode:        input.ZipCode,
		AvatarURL:      input.AvatarURL,
		AadharCardURL:  input.AadharCardURL,
		PanCardURL:     input.PanCardURL,
		ShopLicenseURL: input.ShopLicenseURL,
	}

	token, err := security.SignActivationToken(s.cfg.Security.ActivationSecret, pending, s.cfg.Security.ActivationTTL)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "sign activation token", err)
	}

	if err := s.mailer.SendActivation(ctx, input.Email, input.Name, token); err != nil {
		return apperr.Wrap(apperr.KindInternal, "send activation email", err)
	}
	return nil
}

// ActivateShop exchanges an activation token for a persisted shop with
// status pending, and signs the new seller in.
func (s *ActivationService) ActivateShop(ctx context.Context, token string) (models.Shop, string, error) {
	claims, err := security.ParseActivationToken(token, s.cfg.Security.ActivationSecret)
	if err != nil {
		return models.Shop{}, "", apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}

	fresh, err := s.burner.Burn(ctx, claims.ID, s.cfg.Security.ActivationTTL)
	if err != nil {
		return models.Shop{}, "", apperr.Wrap(apperr.KindInternal, "check token", err)
	}
	if !fresh {
		return models.Shop{}, "", apperr.New(apperr.KindUnauthenticated, "token already used")
	}

	if _, err := s.shops.FindByEmail(ctx, claims.Seller.Email); err == nil {
		return models.Shop{}, "", apperr.New(apperr.KindConflict, "user already exists")
	} else if !errors.Is(err, repository.ErrShopNotFound) {
		return models.Shop{}, "", apperr.Wrap(apperr.KindInternal, "find shop", err)
	}

	shop := models.Shop{
		ID:             ids.New(),
		Name:           claims.Seller.Name,
		Email:          claims.Seller.Email,
		PhoneNumber:    claims.Seller.PhoneNumber,
		PasswordHash:   claims.Seller.PasswordHash,
		Address:        claims.Seller.Address,
		ZipCode:        claims.Seller.ZipCode,
		AvatarURL:      claims.Seller.AvatarURL,
		AadharCardURL:  claims.Seller.AadharCardURL,
		PanCardURL:     claims.Seller.PanCardURL,
		ShopLicenseURL: claims.Seller.ShopLicenseURL,
		Role:           models.RoleSeller,
		Status:         models.ShopStatusPending,
	}

	if err := s.shops.Create(ctx, shop); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Shop{}, "", apperr.New(apperr.KindConflict, "user already exists")
		}
		return models.Shop{}, "", apperr.Wrap(apperr.KindInternal, "create shop", err)
	}

	sessionToken, err := security.SignSessionToken(s.cfg.Security.SessionSecret, shop.ID, models.RoleSeller, s.cfg.Security.SessionTTL)
	if err != nil {
		return models.Shop{}, "", apperr.Wrap(apperr.KindInternal, "sign session token", err)
	}
	return shop, sessionToken, nil
}

// ForgotPassword mints a 5 minute reset token for the account behind email
// and mails the reset link. Each request mints an independent token;
// exchanging one does not invalidate the others before their expiry.
func (s *ActivationService) ForgotPassword(ctx context.Context, role models.Role, email string) error {
	email = normalizeEmail(email)

	accountID, err := s.lookupByEmail(ctx, role, email)
	if err != nil {
		return err
	}

	token, err := security.SignResetToken(s.cfg.Security.ActivationSecret, accountID, role, s.cfg.Security.ActivationTTL)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "sign reset token", err)
	}

	// Bookkeeping of the latest request only; the token itself is the
	// credential.
	sum := sha256.Sum256([]byte(token))
	expiresAt := time.Now().Add(s.cfg.Security.ActivationTTL)
	if err := s.setResetToken(ctx, role, accountID, sum[:], expiresAt); err != nil {
		s.log.Warn().Err(err).Str("account_id", accountID).Msg("record reset token failed")
	}

	if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
		return apperr.Wrap(apperr.KindInternal, "send reset email", err)
	}
	return nil
}

// ResetPassword exchanges a reset token for a password change and clears
// the reset bookkeeping fields.
func (s *ActivationService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return apperr.New(apperr.KindValidation, "passwords do not match")
	}

	claims, err := security.ParseResetToken(token, s.cfg.Security.ActivationSecret)
	if err != nil {
		return apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}

	fresh, err := s.burner.Burn(ctx, claims.ID, s.cfg.Security.ActivationTTL)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "check token", err)
	}
	if !fresh {
		return apperr.New(apperr.KindUnauthenticated, "token already used")
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	if err := s.updatePassword(ctx, claims.Role, claims.AccountID, passwordHash); err != nil {
		return err
	}
	return nil
}

func (s *ActivationService) lookupByEmail(ctx context.Context, role models.Role, email string) (string, error) {
	switch role {
	case models.RoleSeller:
		shop, err := s.shops.FindByEmail(ctx, email)
		if err != nil {
			return "", notFoundOrInternal(err, repository.ErrShopNotFound, "seller not found")
		}
		return shop.ID, nil
	case models.RoleAdmin:
		admin, err := s.admins.FindByEmail(ctx, email)
		if err != nil {
			return "", notFoundOrInternal(err, repository.ErrAdminNotFound, "admin not found")
		}
		return admin.ID, nil
	default:
		user, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return "", notFoundOrInternal(err, repository.ErrUserNotFound, "user not found")
		}
		return user.ID, nil
	}
}

func (s *ActivationService) setResetToken(ctx context.Context, role models.Role, id string, hash []byte, expiresAt time.Time) error {
	switch role {
	case models.RoleSeller:
		return s.shops.SetResetToken(ctx, id, hash, expiresAt)
	case models.RoleAdmin:
		return s.admins.SetResetToken(ctx, id, hash, expiresAt)
	default:
		return s.users.SetResetToken(ctx, id, hash, expiresAt)
	}
}

func (s *ActivationService) updatePassword(ctx context.Context, role models.Role, id string, hash []byte) error {
	var err error
	switch role {
	case models.RoleSeller:
		err = s.shops.UpdatePassword(ctx, id, hash)
		err = notFoundOrInternal(err, repository.ErrShopNotFound, "seller not found")
	case models.RoleAdmin:
		err = s.admins.UpdatePassword(ctx, id, hash)
		err = notFoundOrInternal(err, repository.ErrAdminNotFound, "admin not found")
	default:
		err = s.users.UpdatePassword(ctx, id, hash)
		err = notFoundOrInternal(err, repository.ErrUserNotFound, "user not found")
	}
	return err
}

func notFoundOrInternal(err error, notFound error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, notFound) {
		return apperr.New(apperr.KindNotFound, message)
	}
	return apperr.Wrap(apperr.KindInternal, message, err)
}
