package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-order-system/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler)(c))
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken("test-secret", 42, "OWNER", 15)
	require.NoError(t, err)

	rec := runMiddleware(t, JWTAuth("test-secret"), "Bearer "+at.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":42`)
	require.Contains(t, rec.Body.String(), `"role":"OWNER"`)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := runMiddleware(t, JWTAuth("test-secret"), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 42, "OWNER", 15)
	require.NoError(t, err)

	rec := runMiddleware(t, JWTAuth("test-secret"), "Bearer "+at.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec := runMiddleware(t, JWTAuth("test-secret"), "Bearer not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
