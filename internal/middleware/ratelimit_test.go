package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-order-system/internal/config"
)

// The limiter runs before authentication, so its key must be stable per
// ip+route and never depend on context the JWT middleware has not set yet.
func TestRateKeyPerIPAndRoute(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	req.RemoteAddr = "10.0.0.9:51334"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/orders")

	require.Equal(t, "rl:ip:10.0.0.9:route:POST /v1/orders", rateKey(cfg, c))

	// setting a user id later must not change the bucket
	c.Set("user_id", uint64(7))
	require.Equal(t, "rl:ip:10.0.0.9:route:POST /v1/orders", rateKey(cfg, c))
}

func TestRateKeySeparatesRoutes(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/orders/5", nil)
	req.RemoteAddr = "10.0.0.9:51334"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/orders/:id")

	require.NotEqual(t, "rl:ip:10.0.0.9:route:POST /v1/orders", rateKey(cfg, c))
}
