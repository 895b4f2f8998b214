package security

import (
	"net/http"

	"serrano/api/internal/config"
	"serrano/api/internal/models"
)

// SessionCookie builds the role-scoped session cookie. Cross-origin
// deployments need Secure + SameSite=None so browsers attach the cookie to
// requests from the allow-listed frontend origin; same-origin deployments
// stay on Lax.
func SessionCookie(cfg config.SecurityConfig, role models.Role, token string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if cfg.CrossOrigin {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     role.CookieName(),
		Value:    token,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CrossOrigin,
		SameSite: sameSite,
	}
}

// ClearedSessionCookie expires the role's cookie on logout.
func ClearedSessionCookie(cfg config.SecurityConfig, role models.Role) *http.Cookie {
	cookie := SessionCookie(cfg, role, "")
	cookie.MaxAge = -1
	return cookie
}
