package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authgate/internal/plugins/auth"
)

// RegisterRoutes sets up all application routes. This is the single place
// where plugin routes are aggregated.
func (a *App) RegisterRoutes(deps *AuthDeps) error {
	if deps == nil || deps.Users == nil || deps.Revocations == nil || deps.Codec == nil || deps.Hasher == nil {
		return errors.New("auth plugin dependencies are incomplete")
	}

	e := a.Echo

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", a.healthz)

	// --- Plugin Routes ---

	gate := auth.NewGate(deps.Revocations, deps.Codec, deps.Users, a.Config.Auth.CookieName)
	authService := auth.NewAuthService(deps.Users, deps.Revocations, deps.Codec, deps.Hasher)
	authHandler := auth.NewHandler(authService, a.Config.Auth.CookieName, deps.Codec.TTL())
	auth.RegisterRoutes(e, authHandler, gate)

	return nil
}

// healthz reports 200 when every configured backing store answers a ping.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true

	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			slog.Warn("health check: mariadb unreachable", slog.Any("error", err))
			status["mariadb"] = "unreachable"
			healthy = false
		} else {
			status["mariadb"] = "ok"
		}
	}

	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			slog.Warn("health check: redis unreachable", slog.Any("error", err))
			status["redis"] = "unreachable"
			healthy = false
		} else {
			status["redis"] = "ok"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}
