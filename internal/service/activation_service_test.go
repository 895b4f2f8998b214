package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serrano/api/internal/apperr"
	"serrano/api/internal/models"
	"serrano/api/internal/security"
	"serrano/api/internal/service"
)

type activationFixture struct {
	users  *fakeUserStore
	shops  *fakeShopStore
	admins *fakeAdminStore
	mailer *fakeMailer
	burner *fakeBurner
	svc    *service.ActivationService
	auth   *service.AuthService
}

func newActivationFixture() *activationFixture {
	f := &activationFixture{
		users:  newFakeUserStore(),
		shops:  newFakeShopStore(),
		admins: newFakeAdminStore(),
		mailer: &fakeMailer{},
		burner: newFakeBurner(),
	}
	cfg := testConfig()
	f.svc = service.NewActivationService(f.users, f.shops, f.admins, f.mailer, f.burner, cfg, nopLogger())
	f.auth = service.NewAuthService(f.users, f.shops, f.admins, cfg, nopLogger())
	return f
}

func shopSignup() service.RegisterShopInput {
	return service.RegisterShopInput{
		Name:        "Chai Point",
		Email:       "owner@chai.example",
		Password:    "hunter22",
		PhoneNumber: "9999999999",
		Address:     "12 MG Road",
		ZipCode:     "560001",
	}
}

func TestShopActivationFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("signup emails a token without persisting the shop", func(t *testing.T) {
		f := newActivationFixture()
		require.NoError(t, f.svc.RegisterShop(ctx, shopSignup()))

		assert.Len(t, f.mailer.activations, 1)
		assert.Empty(t, f.shops.shops)
	})

	t.Run("the emailed token never carries the plaintext password", func(t *testing.T) {
		f := newActivationFixture()
		require.NoError(t, f.svc.RegisterShop(ctx, shopSignup()))

		token := f.mailer.lastActivation().Token
		assert.NotContains(t, token, "hunter22")

		claims, err := security.ParseActivationToken(token, testConfig().Security.ActivationSecret)
		require.NoError(t, err)
		ok, err := security.VerifyPassword("hunter22", claims.Seller.PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("activation creates a pending shop that cannot log in yet", func(t *testing.T) {
		f := newActivationFixture()
		require.NoError(t, f.svc.RegisterShop(ctx, shopSignup()))

		shop, sessionToken, err := f.svc.ActivateShop(ctx, f.mailer.lastActivation().Token)
		require.NoError(t, err)
		assert.Equal(t, models.ShopStatusPending, shop.Status)
		assert.NotEmpty(t, sessionToken)

		_, _, err = f.auth.LoginSeller(ctx, "owner@chai.example", "hunter22")
		require.Error(t, err)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

		f.shops.approve(shop.ID)
		_, _, err = f.auth.LoginSeller(ctx, "owner@chai.example", "hunter22")
		assert.NoError(t, err)
	})

	t.Run("an activation token is single use", func(t *testing.T) {
		f := newActivationFixture()
		require.NoError(t, f.svc.RegisterShop(ctx, shopSignup()))
		token := f.mailer.lastActivation().Token

		_, _, err := f.svc.ActivateShop(ctx, token)
		require.NoError(t, err)

		_, _, err = f.svc.ActivateShop(ctx, token)
		require.Error(t, err)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})

	t.Run("signup with a taken email conflicts", func(t *testing.T) {
		f := newActivationFixture()
		require.NoError(t, f.svc.RegisterShop(ctx, shopSignup()))
		_, _, err := f.svc.ActivateShop(ctx, f.mailer.lastActivation().Token)
		require.NoError(t, err)

		err = f.svc.RegisterShop(ctx, shopSignup())
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("garbage activation token rejected", func(t *testing.T) {
		f := newActivationFixture()
		_, _, err := f.svc.ActivateShop(ctx, "not-a-token")
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})

	t.Run("a reset token cannot activate a shop", func(t *testing.T) {
		f := newActivationFixture()
		reset, err := security.SignResetToken(
			testConfig().Security.ActivationSecret, "acct-1", models.RoleSeller, 5*time.Minute)
		require.NoError(t, err)

		_, _, err = f.svc.ActivateShop(ctx, reset)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
		assert.Empty(t, f.shops.shops, "no shop may be minted from a reset token")
		assert.Empty(t, f.burner.seen, "a rejected token must stay unburned")
	})

	t.Run("mail failure surfaces to the caller", func(t *testing.T) {
		f := newActivationFixture()
		f.mailer.fail = true
		err := f.svc.RegisterShop(ctx, shopSignup())
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	seedSeller := func(f *activationFixture) models.Shop {
		require.NoError(t, f.svc.RegisterShop(ctx, shopSignup()))
		shop, _, err := f.svc.ActivateShop(ctx, f.mailer.lastActivation().Token)
		require.NoError(t, err)
		f.shops.approve(shop.ID)
		return shop
	}

	t.Run("forgot then reset", func(t *testing.T) {
		f := newActivationFixture()
		seedSeller(f)

		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleSeller, "owner@chai.example"))
		token := f.mailer.lastReset().Token

		require.NoError(t, f.svc.ResetPassword(ctx, token, "new-password", "new-password"))

		_, _, err := f.auth.LoginSeller(ctx, "owner@chai.example", "new-password")
		assert.NoError(t, err)
		_, _, err = f.auth.LoginSeller(ctx, "owner@chai.example", "hunter22")
		assert.Error(t, err)
	})

	t.Run("unknown email is reported", func(t *testing.T) {
		f := newActivationFixture()
		err := f.svc.ForgotPassword(ctx, models.RoleSeller, "nobody@chai.example")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("confirmation mismatch rejected before the token is spent", func(t *testing.T) {
		f := newActivationFixture()
		seedSeller(f)

		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleSeller, "owner@chai.example"))
		token := f.mailer.lastReset().Token

		err := f.svc.ResetPassword(ctx, token, "new-password", "other")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		// The failed attempt must not have burned the token.
		require.NoError(t, f.svc.ResetPassword(ctx, token, "new-password", "new-password"))
	})

	t.Run("two outstanding tokens are independently valid", func(t *testing.T) {
		f := newActivationFixture()
		seedSeller(f)

		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleSeller, "owner@chai.example"))
		first := f.mailer.lastReset().Token
		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleSeller, "owner@chai.example"))
		second := f.mailer.lastReset().Token
		require.NotEqual(t, first, second)

		require.NoError(t, f.svc.ResetPassword(ctx, first, "password-one", "password-one"))
		require.NoError(t, f.svc.ResetPassword(ctx, second, "password-two", "password-two"))

		_, _, err := f.auth.LoginSeller(ctx, "owner@chai.example", "password-two")
		assert.NoError(t, err)
	})

	t.Run("a spent token cannot be replayed", func(t *testing.T) {
		f := newActivationFixture()
		seedSeller(f)

		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleSeller, "owner@chai.example"))
		token := f.mailer.lastReset().Token

		require.NoError(t, f.svc.ResetPassword(ctx, token, "new-password", "new-password"))
		err := f.svc.ResetPassword(ctx, token, "stolen-password", "stolen-password")
		require.Error(t, err)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})

	t.Run("reset works for customers and admins too", func(t *testing.T) {
		f := newActivationFixture()

		email := "user@serrano.example"
		user, _, err := f.auth.LoginUser(ctx, "9876543210", "old-password")
		require.NoError(t, err)
		stored := f.users.users[user.ID]
		stored.Email = &email
		f.users.users[user.ID] = stored

		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleUser, email))
		require.NoError(t, f.svc.ResetPassword(ctx, f.mailer.lastReset().Token, "fresh", "fresh"))

		_, err = f.admins.FindByEmail(ctx, "root@serrano.example")
		require.Error(t, err)
		_, err = f.auth.CreateAdmin(ctx, service.CreateAdminInput{Email: "root@serrano.example", Password: "hunter22"})
		require.NoError(t, err)

		require.NoError(t, f.svc.ForgotPassword(ctx, models.RoleAdmin, "root@serrano.example"))
		require.NoError(t, f.svc.ResetPassword(ctx, f.mailer.lastReset().Token, "fresh-admin", "fresh-admin"))

		_, _, err = f.auth.LoginAdmin(ctx, "root@serrano.example", "fresh-admin")
		assert.NoError(t, err)
	})
}
