package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"serrano/api/internal/config"
	"serrano/api/internal/models"
	"serrano/api/internal/security"
)

// Context keys for the resolved account and its verified claims.
const (
	CtxUser   = "current_user"
	CtxSeller = "current_seller"
	CtxAdmin  = "current_admin"
	CtxClaims = "session_claims"
)

type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type ShopSource interface {
	GetByID(ctx context.Context, id string) (models.Shop, error)
}

type AdminSource interface {
	GetByID(ctx context.Context, id string) (models.Admin, error)
}

// AuthUser gates customer routes on the `token` cookie.
func AuthUser(cfg *config.AppConfig, users UserSource) gin.HandlerFunc {
	return authenticate(cfg, models.RoleUser, func(c *gin.Context, claims *security.SessionClaims) error {
		user, err := users.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			return err
		}
		c.Set(CtxUser, user)
		return nil
	})
}

// AuthSeller gates shop routes on the `seller_token` cookie.
func AuthSeller(cfg *config.AppConfig, shops ShopSource) gin.HandlerFunc {
	return authenticate(cfg, models.RoleSeller, func(c *gin.Context, claims *security.SessionClaims) error {
		shop, err := shops.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			return err
		}
		c.Set(CtxSeller, shop)
		return nil
	})
}

// AuthAdmin gates admin routes on the `admin_token` cookie and additionally
// re-checks the resolved account's role tag.
func AuthAdmin(cfg *config.AppConfig, admins AdminSource) gin.HandlerFunc {
	return authenticate(cfg, models.RoleAdmin, func(c *gin.Context, claims *security.SessionClaims) error {
		admin, err := admins.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			return err
		}
		if admin.Role != models.RoleAdmin {
			abortForbidden(c)
			return errAborted
		}
		c.Set(CtxAdmin, admin)
		return nil
	})
}

var errAborted = &abortedError{}

type abortedError struct{}

func (*abortedError) Error() string { return "request aborted" }

// authenticate is the single guard all three roles share: extract the role
// cookie (or a bearer header), verify the session token, resolve the live
// account, attach it. The live record is authoritative; claims beyond the
// account ID are advisory.
func authenticate(cfg *config.AppConfig, role models.Role, resolve func(*gin.Context, *security.SessionClaims) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c, role)
		if tokenStr == "" {
			abortUnauthenticated(c)
			return
		}

		claims, err := security.ParseSessionToken(tokenStr, cfg.Security.SessionSecret)
		if err != nil {
			// Expired and malformed tokens get the same answer.
			abortUnauthenticated(c)
			return
		}

		if claims.Role != role {
			// A token minted for another role's identity space. The admin
			// guard answers 403 so the caller learns the token is live but
			// insufficient; the other guards stay uniform.
			if role == models.RoleAdmin {
				abortForbidden(c)
			} else {
				abortUnauthenticated(c)
			}
			return
		}

		if err := resolve(c, claims); err != nil {
			if err != errAborted {
				// Account deleted after the token was issued.
				abortUnauthenticated(c)
			}
			return
		}

		c.Set(CtxClaims, *claims)
		c.Next()
	}
}

func extractToken(c *gin.Context, role models.Role) string {
	if cookie, err := c.Cookie(role.CookieName()); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please login to continue"})
}

func abortForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}
