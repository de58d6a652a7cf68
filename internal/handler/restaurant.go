package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// CatalogHandler groups the repositories behind the restaurant, dish and
// table endpoints. Mutations require the OWNER role and act only on the
// caller's own restaurants; reads are public. The order ledger consumes
// this data by foreign key only.
type CatalogHandler struct {
	Restaurants *repository.RestaurantRepo
	Dishes      *repository.DishRepo
	Tables      *repository.TableRepo
}

func NewCatalogHandler(r *repository.RestaurantRepo, d *repository.DishRepo, t *repository.TableRepo) *CatalogHandler {
	if r == nil || d == nil || t == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Restaurants: r, Dishes: d, Tables: t}
}

// requireOwner resolves the restaurant's owner and compares it with the
// caller. Returns sql.ErrNoRows when the restaurant does not exist and
// repository.ErrForbidden when it belongs to someone else.
func (h *CatalogHandler) requireOwner(c echo.Context, restaurantID uint64) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	ownerID, err := h.Restaurants.OwnerID(c.Request().Context(), restaurantID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return repository.ErrForbidden
	}
	return nil
}

type createRestaurantReq struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

// CreateRestaurant handles POST /v1/restaurants. The authenticated owner
// becomes the restaurant's owner.
func (h *CatalogHandler) CreateRestaurant(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRestaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Currency == "" {
		req.Currency = "EUR"
	}
	rest := &model.Restaurant{
		Name:     req.Name,
		Currency: strings.ToUpper(req.Currency),
		Location: req.Location,
		Phone:    req.Phone,
		OwnerID:  userID,
	}
	if err := h.Restaurants.Create(c.Request().Context(), rest); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}
	return c.JSON(http.StatusCreated, rest)
}

// ListMyRestaurants handles GET /v1/my-restaurants.
func (h *CatalogHandler) ListMyRestaurants(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Restaurants.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurants failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListUserRestaurants handles GET /v1/users/:id/restaurants (public).
// Anyone can look up which restaurants a user has registered; an unknown
// or restaurant-less user yields an empty list.
func (h *CatalogHandler) ListUserRestaurants(c echo.Context) error {
	ownerID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	items, err := h.Restaurants.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurants failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRestaurant handles GET /v1/restaurants/:id (public).
func (h *CatalogHandler) GetRestaurant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	rest, err := h.Restaurants.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rest)
}

// DeleteRestaurant handles DELETE /v1/restaurants/:id (owner only).
// Dishes and tables cascade; orders keep their snapshots.
func (h *CatalogHandler) DeleteRestaurant(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	if err := h.requireOwner(c, id); err != nil {
		return ownershipError(c, err, "restaurant not found")
	}
	if err := h.Restaurants.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete restaurant failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ownershipError maps requireOwner failures onto HTTP responses.
func ownershipError(c echo.Context, err error, notFoundMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	}
	if errors.Is(err, repository.ErrForbidden) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
