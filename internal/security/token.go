package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"serrano/api/internal/models"
)

// SessionClaims prove a prior successful login. Only AccountID is
// authoritative; guards re-fetch the live record before authorizing.
type SessionClaims struct {
	AccountID string      `json:"aid"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// PendingSeller is the not-yet-persisted shop carried inside an activation
// token. The password is hashed before the token is minted, so no plaintext
// credential ever leaves the process.
type PendingSeller struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PasswordHash   []byte  `json:"passwordHash"`
	PhoneNumber    string  `json:"phoneNumber"`
	Address        string  `json:"address"`
	ZipCode        string  `json:"zipCode"`
	AvatarURL      *string `json:"avatarUrl,omitempty"`
	AadharCardURL  *string `json:"aadharCardUrl,omitempty"`
	PanCardURL     *string `json:"panCardUrl,omitempty"`
	ShopLicenseURL *string `json:"shopLicenseUrl,omitempty"`
}

// Activation and reset tokens are signed with the same secret, so each
// carries a "use" claim naming its class. Parsing rejects a token presented
// for the wrong use.
const (
	useActivation = "activation"
	useReset      = "reset"
)

type ActivationClaims struct {
	Use    string        `json:"use"`
	Seller PendingSeller `json:"seller"`
	jwt.RegisteredClaims
}

type ResetClaims struct {
	Use       string      `json:"use"`
	AccountID string      `json:"aid"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// IsExpired reports whether a parse failure was caused by token expiry.
// Guards treat expiry like any other invalid token; this exists for logs.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func SignSessionToken(secret string, accountID string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   accountID,
			ID:        uuid.NewString(),
		},
	}
	return sign(claims, secret)
}

func ParseSessionToken(tokenStr string, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := parse(tokenStr, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func SignActivationToken(secret string, seller PendingSeller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ActivationClaims{
		Use:    useActivation,
		Seller: seller,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   seller.Email,
			ID:        uuid.NewString(),
		},
	}
	return sign(claims, secret)
}

func ParseActivationToken(tokenStr string, secret string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := parse(tokenStr, secret, claims); err != nil {
		return nil, err
	}
	if claims.Use != useActivation || claims.Seller.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func SignResetToken(secret string, accountID string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		Use:       useReset,
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   accountID,
			ID:        uuid.NewString(),
		},
	}
	return sign(claims, secret)
}

func ParseResetToken(tokenStr string, secret string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := parse(tokenStr, secret, claims); err != nil {
		return nil, err
	}
	if claims.Use != useReset || claims.AccountID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func parse(tokenStr string, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
