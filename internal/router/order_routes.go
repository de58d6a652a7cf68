package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/handler"
	"github.com/iliyamo/restaurant-order-system/internal/middleware"
)

// RegisterOrders registers the order ledger endpoints. Mutations (create,
// add line items, finish) sit behind JWT authentication for both roles;
// reads are open like the rest of the browse surface.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, jwtSecret string) {
	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER", "STAFF"),
	)
	auth.POST("/orders", h.CreateOrder)
	auth.POST("/orders/:id/items", h.AddLineItems)
	auth.POST("/orders/:id/finish", h.FinishOrder)

	e.GET("/v1/orders/:id", h.GetOrder)
	e.GET("/v1/users/:id/orders/current", h.ListUserCurrentOrders)
	e.GET("/v1/users/:id/orders/completed", h.ListUserCompletedOrders)
	e.GET("/v1/restaurants/:id/orders/current", h.ListRestaurantCurrentOrders)
	e.GET("/v1/restaurants/:id/orders/completed", h.ListRestaurantCompletedOrders)
}
