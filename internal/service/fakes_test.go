package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"serrano/api/internal/config"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			SessionSecret:    "session-secret",
			ActivationSecret: "activation-secret",
			SessionTTL:       time.Hour,
			ActivationTTL:    5 * time.Minute,
		},
	}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.PhoneNumber == user.PhoneNumber {
			return repository.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByPhone(_ context.Context, phoneNumber string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.PhoneNumber == phoneNumber {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email != nil && *user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetTokenHash = nil
	user.ResetExpiresAt = nil
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) SetResetToken(_ context.Context, id string, tokenHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ResetTokenHash = tokenHash
	user.ResetExpiresAt = &expiresAt
	s.users[id] = user
	return nil
}

type fakeShopStore struct {
	mu    sync.Mutex
	shops map[string]models.Shop
}

func newFakeShopStore() *fakeShopStore {
	return &fakeShopStore{shops: map[string]models.Shop{}}
}

func (s *fakeShopStore) Create(_ context.Context, shop models.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shops {
		if existing.Email == shop.Email {
			return repository.ErrDuplicate
		}
	}
	s.shops[shop.ID] = shop
	return nil
}

func (s *fakeShopStore) FindByEmail(_ context.Context, email string) (models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shop := range s.shops {
		if shop.Email == email {
			return shop, nil
		}
	}
	return models.Shop{}, repository.ErrShopNotFound
}

func (s *fakeShopStore) GetByID(_ context.Context, id string) (models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[id]
	if !ok {
		return models.Shop{}, repository.ErrShopNotFound
	}
	return shop, nil
}

func (s *fakeShopStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[id]
	if !ok {
		return repository.ErrShopNotFound
	}
	shop.PasswordHash = passwordHash
	shop.ResetTokenHash = nil
	shop.ResetExpiresAt = nil
	s.shops[id] = shop
	return nil
}

func (s *fakeShopStore) SetResetToken(_ context.Context, id string, tokenHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[id]
	if !ok {
		return repository.ErrShopNotFound
	}
	shop.ResetTokenHash = tokenHash
	shop.ResetExpiresAt = &expiresAt
	s.shops[id] = shop
	return nil
}

func (s *fakeShopStore) approve(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop := s.shops[id]
	shop.Status = models.ShopStatusApproved
	s.shops[id] = shop
}

type fakeAdminStore struct {
	mu     sync.Mutex
	admins map[string]models.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: map[string]models.Admin{}}
}

func (s *fakeAdminStore) Create(_ context.Context, admin models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if existing.Email == admin.Email {
			return repository.ErrDuplicate
		}
	}
	s.admins[admin.ID] = admin
	return nil
}

func (s *fakeAdminStore) FindByEmail(_ context.Context, email string) (models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, admin := range s.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return models.Admin{}, repository.ErrAdminNotFound
}

func (s *fakeAdminStore) GetByID(_ context.Context, id string) (models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return models.Admin{}, repository.ErrAdminNotFound
	}
	return admin, nil
}

func (s *fakeAdminStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	admin.PasswordHash = passwordHash
	admin.ResetTokenHash = nil
	admin.ResetExpiresAt = nil
	s.admins[id] = admin
	return nil
}

func (s *fakeAdminStore) SetResetToken(_ context.Context, id string, tokenHash []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	admin.ResetTokenHash = tokenHash
	admin.ResetExpiresAt = &expiresAt
	s.admins[id] = admin
	return nil
}

type sentMail struct {
	To    string
	Name  string
	Token string
}

type fakeMailer struct {
	mu          sync.Mutex
	activations []sentMail
	resets      []sentMail
	fail        bool
}

func (m *fakeMailer) SendActivation(_ context.Context, toEmail, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errMailDown
	}
	m.activations = append(m.activations, sentMail{To: toEmail, Name: name, Token: token})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errMailDown
	}
	m.resets = append(m.resets, sentMail{To: toEmail, Token: token})
	return nil
}

func (m *fakeMailer) lastActivation() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activations[len(m.activations)-1]
}

func (m *fakeMailer) lastReset() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[len(m.resets)-1]
}

var errMailDown = &mailDownError{}

type mailDownError struct{}

func (*mailDownError) Error() string { return "mail provider unavailable" }

// fakeBurner mimics the Redis SETNX guard: the first burn of an id wins.
type fakeBurner struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeBurner() *fakeBurner {
	return &fakeBurner{seen: map[string]bool{}}
}

func (b *fakeBurner) Burn(_ context.Context, jti string, _ time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen[jti] {
		return false, nil
	}
	b.seen[jti] = true
	return true, nil
}
