package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serrano/api/internal/models"
	"serrano/api/internal/security"
)

const testSecret = "unit-test-secret"

func TestSessionToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := security.SignSessionToken(testSecret, "acct-1", models.RoleUser, time.Hour)
		require.NoError(t, err)

		claims, err := security.ParseSessionToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "acct-1", claims.AccountID)
		assert.Equal(t, models.RoleUser, claims.Role)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("each token carries a fresh id", func(t *testing.T) {
		first, err := security.SignSessionToken(testSecret, "acct-1", models.RoleUser, time.Hour)
		require.NoError(t, err)
		second, err := security.SignSessionToken(testSecret, "acct-1", models.RoleUser, time.Hour)
		require.NoError(t, err)

		a, err := security.ParseSessionToken(first, testSecret)
		require.NoError(t, err)
		b, err := security.ParseSessionToken(second, testSecret)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token, err := security.SignSessionToken(testSecret, "acct-1", models.RoleSeller, time.Hour)
		require.NoError(t, err)

		_, err = security.ParseSessionToken(token, "some-other-secret")
		assert.Error(t, err)
	})

	t.Run("expired rejected", func(t *testing.T) {
		token, err := security.SignSessionToken(testSecret, "acct-1", models.RoleUser, -time.Minute)
		require.NoError(t, err)

		_, err = security.ParseSessionToken(token, testSecret)
		require.Error(t, err)
		assert.True(t, security.IsExpired(err))
	})

	t.Run("malformed rejected", func(t *testing.T) {
		_, err := security.ParseSessionToken("not.a.jwt", testSecret)
		assert.Error(t, err)
	})

	t.Run("role claim survives", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleUser, models.RoleSeller, models.RoleAdmin} {
			token, err := security.SignSessionToken(testSecret, "acct-1", role, time.Hour)
			require.NoError(t, err)
			claims, err := security.ParseSessionToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, role, claims.Role)
		}
	})
}

func TestActivationToken(t *testing.T) {
	seller := security.PendingSeller{
		Name:         "Chai Point",
		Email:        "owner@chaipoint.example",
		PasswordHash: []byte("$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"),
		PhoneNumber:  "9999999999",
		Address:      "12 MG Road",
		ZipCode:      "560001",
	}

	t.Run("round trip preserves pending payload", func(t *testing.T) {
		token, err := security.SignActivationToken(testSecret, seller, 5*time.Minute)
		require.NoError(t, err)

		claims, err := security.ParseActivationToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, seller, claims.Seller)
	})

	t.Run("session secret does not open activation token", func(t *testing.T) {
		token, err := security.SignActivationToken("activation-secret", seller, 5*time.Minute)
		require.NoError(t, err)

		_, err = security.ParseActivationToken(token, "session-secret")
		assert.Error(t, err)
	})

	t.Run("expired activation rejected", func(t *testing.T) {
		token, err := security.SignActivationToken(testSecret, seller, -time.Second)
		require.NoError(t, err)

		_, err = security.ParseActivationToken(token, testSecret)
		require.Error(t, err)
		assert.True(t, security.IsExpired(err))
	})

	t.Run("reset token is not an activation token", func(t *testing.T) {
		token, err := security.SignResetToken(testSecret, "acct-9", models.RoleSeller, 5*time.Minute)
		require.NoError(t, err)

		_, err = security.ParseActivationToken(token, testSecret)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestResetToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := security.SignResetToken(testSecret, "acct-9", models.RoleSeller, 5*time.Minute)
		require.NoError(t, err)

		claims, err := security.ParseResetToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "acct-9", claims.AccountID)
		assert.Equal(t, models.RoleSeller, claims.Role)
	})

	t.Run("two tokens for one account stay independent", func(t *testing.T) {
		first, err := security.SignResetToken(testSecret, "acct-9", models.RoleUser, 5*time.Minute)
		require.NoError(t, err)
		second, err := security.SignResetToken(testSecret, "acct-9", models.RoleUser, 5*time.Minute)
		require.NoError(t, err)

		_, err = security.ParseResetToken(first, testSecret)
		assert.NoError(t, err)
		_, err = security.ParseResetToken(second, testSecret)
		assert.NoError(t, err)
	})

	t.Run("activation token is not a reset token", func(t *testing.T) {
		token, err := security.SignActivationToken(testSecret, security.PendingSeller{
			Name:  "Chai Point",
			Email: "owner@chaipoint.example",
		}, 5*time.Minute)
		require.NoError(t, err)

		_, err = security.ParseResetToken(token, testSecret)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}
