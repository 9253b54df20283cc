package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-api/internal/api/middleware"
)

// ctxUserID extracts the authenticated user ID injected by the Auth
// middleware. An empty ID means the middleware did not run or the route is
// misconfigured; fail fast with 401 before any service call.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// optionalUserID returns the authenticated user ID, or nil for anonymous
// callers.
func optionalUserID(c echo.Context) *string {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return nil
	}
	return &userID
}

// clientIP resolves the submitting address: first X-Forwarded-For entry,
// then X-Real-IP, then the transport-level peer. The result is used verbatim
// as the anonymous throttling key; no normalization is applied.
func clientIP(c echo.Context) string {
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := c.Request().Header.Get("X-Real-IP"); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		return c.Request().RemoteAddr
	}
	return host
}
