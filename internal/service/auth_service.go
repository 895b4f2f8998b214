package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"serrano/api/internal/apperr"
	"serrano/api/internal/config"
	"serrano/api/internal/ids"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
	"serrano/api/internal/security"
)

// Credential failures share one message so callers cannot probe which
// identifiers exist.
const invalidCredentialsMsg = "please provide the correct information"

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByPhone(ctx context.Context, phoneNumber string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error
}

type ShopStore interface {
	Create(ctx context.Context, shop models.Shop) error
	FindByEmail(ctx context.Context, email string) (models.Shop, error)
	GetByID(ctx context.Context, id string) (models.Shop, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error
}

type AdminStore interface {
	Create(ctx context.Context, admin models.Admin) error
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	GetByID(ctx context.Context, id string) (models.Admin, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetResetToken(ctx context.Context, id string, tokenHash []byte, expiresAt time.Time) error
}

// AuthService owns credential verification and session issuance for the
// three account kinds.
type AuthService struct {
	users  UserStore
	shops  ShopStore
	admins AdminStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(users UserStore, shops ShopStore, admins AdminStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		shops:  shops,
		admins: admins,
		cfg:    cfg,
		log:    log,
	}
}

// LoginUser signs a customer in by phone number. A first login creates the
// account; a repeat login re-binds the password, matching the upstream
// OTP-checked flow where the phone number is the proven identifier.
func (s *AuthService) LoginUser(ctx context.Context, phoneNumber, password string) (models.User, string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" || password == "" {
		return models.User{}, "", apperr.New(apperr.KindValidation, "phone number and password are required")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, "", apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	user, err := s.users.FindByPhone(ctx, phoneNumber)
	switch {
	case err == nil:
		if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
			return models.User{}, "", apperr.Wrap(apperr.KindInternal, "update password", err)
		}
		user.PasswordHash = passwordHash
	case errors.Is(err, repository.ErrUserNotFound):
		user = models.User{
			ID:           ids.New(),
			PhoneNumber:  phoneNumber,
			PasswordHash: passwordHash,
			Role:         models.RoleUser,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.User{}, "", apperr.New(apperr.KindConflict, "user already exists")
			}
			return models.User{}, "", apperr.Wrap(apperr.KindInternal, "create user", err)
		}
	default:
		return models.User{}, "", apperr.Wrap(apperr.KindInternal, "find user", err)
	}

	token, err := s.issueSession(user.ID, models.RoleUser)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// LoginSeller verifies shop credentials. Unapproved shops cannot log in
// even with the right password.
func (s *AuthService) LoginSeller(ctx context.Context, email, password string) (models.Shop, string, error) {
	email = normalizeEmail(email)

	shop, err := s.shops.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return models.Shop{}, "", apperr.New(apperr.KindUnauthenticated, invalidCredentialsMsg)
		}
		return models.Shop{}, "", apperr.Wrap(apperr.KindInternal, "find shop", err)
	}

	if shop.Status != models.ShopStatusApproved {
		return models.Shop{}, "", apperr.New(apperr.KindUnauthenticated, "your account is not yet approved")
	}

	if !s.passwordMatches(password, shop.PasswordHash) {
		return models.Shop{}, "", apperr.New(apperr.KindUnauthenticated, invalidCredentialsMsg)
	}

	token, err := s.issueSession(shop.ID, models.RoleSeller)
	if err != nil {
		return models.Shop{}, "", err
	}
	return shop, token, nil
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (models.Admin, string, error) {
	email = normalizeEmail(email)

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return models.Admin{}, "", apperr.New(apperr.KindUnauthenticated, invalidCredentialsMsg)
		}
		return models.Admin{}, "", apperr.Wrap(apperr.KindInternal, "find admin", err)
	}

	if !s.passwordMatches(password, admin.PasswordHash) {
		return models.Admin{}, "", apperr.New(apperr.KindUnauthenticated, invalidCredentialsMsg)
	}

	token, err := s.issueSession(admin.ID, models.RoleAdmin)
	if err != nil {
		return models.Admin{}, "", err
	}
	return admin, token, nil
}

type CreateAdminInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	AvatarURL   *string
}

// CreateAdmin persists a new admin account. The route is an open bootstrap
// signup, so the first admin can be created on a fresh deployment.
func (s *AuthService) CreateAdmin(ctx context.Context, input CreateAdminInput) (models.Admin, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return models.Admin{}, apperr.New(apperr.KindValidation, "email and password are required")
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.Admin{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	admin := models.Admin{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: passwordHash,
		AvatarURL:    input.AvatarURL,
		Role:         models.RoleAdmin,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Admin{}, apperr.New(apperr.KindConflict, "admin already exists")
		}
		return models.Admin{}, apperr.Wrap(apperr.KindInternal, "create admin", err)
	}
	return admin, nil
}

type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

func (s *AuthService) ChangeUserPassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "load user", err)
	}
	return s.changePassword(ctx, user.PasswordHash, input, func(hash []byte) error {
		return s.users.UpdatePassword(ctx, userID, hash)
	})
}

func (s *AuthService) ChangeSellerPassword(ctx context.Context, shopID string, input ChangePasswordInput) error {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "load shop", err)
	}
	return s.changePassword(ctx, shop.PasswordHash, input, func(hash []byte) error {
		return s.shops.UpdatePassword(ctx, shopID, hash)
	})
}

func (s *AuthService) ChangeAdminPassword(ctx context.Context, adminID string, input ChangePasswordInput) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "load admin", err)
	}
	return s.changePassword(ctx, admin.PasswordHash, input, func(hash []byte) error {
		return s.admins.UpdatePassword(ctx, adminID, hash)
	})
}

func (s *AuthService) changePassword(ctx context.Context, currentHash []byte, input ChangePasswordInput, persist func([]byte) error) error {
	if !s.passwordMatches(input.OldPassword, currentHash) {
		return apperr.New(apperr.KindValidation, "old password is incorrect")
	}
	if input.NewPassword != input.ConfirmPassword {
		return apperr.New(apperr.KindValidation, "passwords do not match")
	}

	hash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	if err := persist(hash); err != nil {
		return apperr.Wrap(apperr.KindInternal, "update password", err)
	}
	return nil
}

// issueSession mints a stateless session token; the HTTP layer wraps it in
// the role's cookie.
func (s *AuthService) issueSession(accountID string, role models.Role) (string, error) {
	token, err := security.SignSessionToken(s.cfg.Security.SessionSecret, accountID, role, s.cfg.Security.SessionTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "sign session token", err)
	}
	return token, nil
}

func (s *AuthService) passwordMatches(password string, hash []byte) bool {
	ok, err := security.VerifyPassword(password, hash)
	if err != nil {
		s.log.Warn().Err(err).Msg("password verification failed")
		return false
	}
	return ok
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
