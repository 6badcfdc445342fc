package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/authgate/internal/apperror"
)

// Handler handles HTTP requests for registration, login, profile and logout.
// Handlers are thin: they bind the request, call the service, and translate
// domain errors into apperror values.
type Handler struct {
	service    AuthService
	cookieName string
	cookieTTL  time.Duration
}

// NewHandler creates a new auth handler. cookieTTL should match the token TTL
// so the cookie and the token expire together.
func NewHandler(service AuthService, cookieName string, cookieTTL time.Duration) *Handler {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Handler{service: service, cookieName: cookieName, cookieTTL: cookieTTL}
}

// Register creates an account and logs it in (POST /api/v1/users/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	ctx := c.Request().Context()
	_, err := h.service.Register(ctx, RegisterInput{
		FirstName: req.FullName.FirstName,
		LastName:  req.FullName.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return registrationError(err)
	}

	// Auto-login after successful registration.
	result, err := h.service.Login(ctx, LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return loginError(err)
	}

	setTokenCookie(c, h.cookieName, result.Token, h.cookieTTL)
	return c.JSON(http.StatusCreated, result)
}

// Login checks credentials and issues a token (POST /api/v1/users/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperror.NewValidation("email and password are required")
	}

	result, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return loginError(err)
	}

	setTokenCookie(c, h.cookieName, result.Token, h.cookieTTL)
	return c.JSON(http.StatusOK, result)
}

// Profile returns the authenticated user (GET /api/v1/users/profile).
func (h *Handler) Profile(c echo.Context) error {
	identity := GetIdentity(c)
	if identity == nil {
		return apperror.NewMissingContext()
	}
	return c.JSON(http.StatusOK, map[string]any{"user": identity.User})
}

// Logout revokes the token that authenticated this request and clears the
// cookie (POST /api/v1/users/logout).
func (h *Handler) Logout(c echo.Context) error {
	identity := GetIdentity(c)
	if identity == nil {
		return apperror.NewMissingContext()
	}

	if err := h.service.Logout(c.Request().Context(), identity.Token); err != nil {
		return apperror.NewInternal(err)
	}

	clearTokenCookie(c, h.cookieName)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// --- Error translation ---

func registrationError(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		fields := make([]apperror.FieldDetail, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			fields = append(fields, apperror.FieldDetail{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		if vErr.IsDuplicate() {
			return apperror.NewConflict("an account with this email already exists", fields...)
		}
		return apperror.NewValidation("invalid registration", fields...)
	}
	return apperror.NewInternal(err)
}

// loginError hides which of the credential checks failed.
func loginError(err error) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return apperror.NewUnauthorized("invalid email or password")
	}
	return apperror.NewInternal(err)
}

// --- Cookie helpers ---

// setTokenCookie sets the token cookie. It is HttpOnly, Secure behind TLS,
// and SameSite=Lax.
func setTokenCookie(c echo.Context, name, token string, ttl time.Duration) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// clearTokenCookie removes the token cookie by setting MaxAge to -1.
func clearTokenCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
