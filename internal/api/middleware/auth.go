package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-api/internal/pkg/token"
)

// Context keys populated by the auth middleware.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// Auth validates the bearer token and injects identity into context.
// Requests without a valid token are rejected with 401.
func Auth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := verifyBearer(c, issuer)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			setIdentity(c, claims)
			return next(c)
		}
	}
}

// OptionalAuth injects identity when a valid bearer token is present and
// otherwise lets the request through anonymously. A tampered or expired
// token counts as absent identity, not as an error.
func OptionalAuth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := verifyBearer(c, issuer); ok {
				setIdentity(c, claims)
			}
			return next(c)
		}
	}
}

func verifyBearer(c echo.Context, issuer *token.Issuer) (*token.Claims, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	claims, err := issuer.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setIdentity(c echo.Context, claims *token.Claims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxRole, claims.Role)
}
