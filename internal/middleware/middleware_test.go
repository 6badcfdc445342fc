package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/authgate/internal/apperror"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", okHandler)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(echo.HeaderXRequestID)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	supplied := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, supplied)
	assert.Equal(t, supplied, serve(e, req).Header().Get(echo.HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "<script>")
	assert.NotEqual(t, "<script>", serve(e, req).Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger_HandlesErrors(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRecovery(t *testing.T) {
	e := echo.New()
	var handled error
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		handled = err
		_ = c.NoContent(apperror.SafeCode(err))
	}
	e.Use(Recovery())
	e.GET("/", func(c echo.Context) error { panic("boom") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var appErr *apperror.AppError
	require.True(t, errors.As(handled, &appErr))
	assert.ErrorContains(t, appErr.Internal, "boom")
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders())
	e.GET("/api/v1/users/profile", okHandler)
	e.GET("/healthz", okHandler)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestCORS(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, AllowCredentials: true}))
	e.POST("/api/v1/users/login", okHandler)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
		req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
		rec := serve(e, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
		req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
		rec := serve(e, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), echo.HeaderAuthorization)
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
		req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
		rec := serve(e, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestCORS_WildcardDropsCredentials(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}))
	e.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://anywhere.example.com")
	rec := serve(e, req)

	assert.Equal(t, "https://anywhere.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestTrustedProxies(t *testing.T) {
	extract, err := buildIPExtractor(DefaultTrustedProxies)
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		realIP string
		xff    string
		want   string
	}{
		{"direct client", "203.0.113.7:5555", "", "", "203.0.113.7"},
		{"untrusted peer ignores headers", "203.0.113.7:5555", "1.2.3.4", "5.6.7.8", "203.0.113.7"},
		{"trusted peer real ip", "10.0.0.2:80", "198.51.100.9", "", "198.51.100.9"},
		{"trusted peer xff", "172.18.0.3:80", "", "198.51.100.9, 10.0.0.2", "198.51.100.9"},
		{"trusted peer no headers", "127.0.0.1:80", "", "", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.realIP != "" {
				req.Header.Set(echo.HeaderXRealIP, tt.realIP)
			}
			if tt.xff != "" {
				req.Header.Set(echo.HeaderXForwardedFor, tt.xff)
			}
			assert.Equal(t, tt.want, extract(req))
		})
	}
}

func TestTrustedProxies_InvalidCIDR(t *testing.T) {
	err := TrustedProxies(echo.New(), []string{"10.0.0.0/8", "not-a-cidr"})
	assert.ErrorContains(t, err, "not-a-cidr")
}
