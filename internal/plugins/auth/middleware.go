package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authgate/internal/apperror"
)

// Context key for storing the identity in the Echo context. Other plugins
// use the exported getters below instead of reading it directly.
const contextKeyIdentity = "auth_identity"

// unauthorizedBody is the only response a refused request ever sees.
var unauthorizedBody = map[string]string{
	"error":   "Unauthorized",
	"message": "Unauthorized",
}

// RequireAuth returns middleware that runs the gate and injects the identity
// into the request context. Every rejection produces the same 401; store
// failures produce a 500.
func RequireAuth(gate *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := gate.Authenticate(c.Request().Context(), c.Request())
			if err != nil {
				var rej *Rejection
				if errors.As(err, &rej) {
					logRejection(c, rej)
					if rej.Reason != RejectNoToken {
						clearTokenCookie(c, gate.CookieName())
					}
					return c.JSON(http.StatusUnauthorized, unauthorizedBody)
				}
				return apperror.NewInternal(err)
			}

			c.Set(contextKeyIdentity, identity)
			return next(c)
		}
	}
}

// OptionalAuth returns middleware that attaches the identity when the request
// carries a valid token and otherwise lets it through anonymously. Store
// failures are still surfaced as 500.
func OptionalAuth(gate *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := gate.Authenticate(c.Request().Context(), c.Request())
			if err != nil {
				var rej *Rejection
				if !errors.As(err, &rej) {
					return apperror.NewInternal(err)
				}
				if rej.Reason != RejectNoToken {
					logRejection(c, rej)
				}
				return next(c)
			}

			c.Set(contextKeyIdentity, identity)
			return next(c)
		}
	}
}

// logRejection records the internal reason. The token itself is never logged.
func logRejection(c echo.Context, rej *Rejection) {
	attrs := []any{
		slog.String("reason", string(rej.Reason)),
		slog.String("path", c.Request().URL.Path),
		slog.String("remote_ip", c.RealIP()),
	}
	if rej.TokenKind != "" {
		attrs = append(attrs, slog.String("token_error", string(rej.TokenKind)))
	}
	slog.Warn("request rejected", attrs...)
}

// --- Exported getters for other plugins ---

// GetIdentity retrieves the authenticated identity from the Echo context.
// Returns nil if the request is not authenticated.
func GetIdentity(c echo.Context) *Identity {
	identity, ok := c.Get(contextKeyIdentity).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	identity := GetIdentity(c)
	if identity == nil || identity.User == nil {
		return ""
	}
	return identity.User.ID
}
