package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func callProtected(authz string) *httptest.ResponseRecorder {
	e := echo.New()
	cfg := config.Config{JWTSecret: testSecret}

	g := e.Group("/api/admin")
	g.Use(middleware.AdminAuth(cfg))
	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	rec := callProtected("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_MalformedHeader(t *testing.T) {
	rec := callProtected("Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec := callProtected("Bearer " + token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "ADMIN",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	rec := callProtected("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_WrongRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "fan@example.com",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec := callProtected("Bearer " + token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuth_WrongSigningKey(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec := callProtected("Bearer " + signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
