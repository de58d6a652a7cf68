package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/handler"
	"github.com/iliyamo/restaurant-order-system/internal/middleware"
)

// RegisterCatalog registers the restaurant, dish and table endpoints.
// Mutations require a valid JWT with the OWNER role; reads are public so
// guests can browse a menu before ordering. The cache middleware, when
// enabled, wraps the public reads only.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	owner := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)
	owner.POST("/restaurants", h.CreateRestaurant)
	owner.GET("/my-restaurants", h.ListMyRestaurants)
	owner.DELETE("/restaurants/:id", h.DeleteRestaurant)
	owner.POST("/restaurants/:id/dishes", h.CreateDish)
	owner.PUT("/dishes/:id/price", h.UpdateDishPrice)
	owner.DELETE("/dishes/:id", h.DeleteDish)
	owner.POST("/restaurants/:id/tables", h.CreateTable)
	owner.DELETE("/tables/:id", h.DeleteTable)

	pub := e.Group("/v1")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("/restaurants/:id", h.GetRestaurant)
	pub.GET("/users/:id/restaurants", h.ListUserRestaurants)
	pub.GET("/restaurants/:id/dishes", h.GetMenu)
	pub.GET("/restaurants/:id/tables", h.ListTables)
	pub.GET("/restaurants/:id/tables/:table_id", h.GetTable)
}
