package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the user API on the given Echo instance. Register
// and login are public; profile and logout sit behind RequireAuth.
func RegisterRoutes(e *echo.Echo, h *Handler, gate *Gate) {
	requireAuth := RequireAuth(gate)

	users := e.Group("/api/v1/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.GET("/profile", h.Profile, requireAuth)
	users.POST("/logout", h.Logout, requireAuth)
}
