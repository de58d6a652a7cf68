package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// Dish and table endpoints live on CatalogHandler alongside restaurants;
// both entity types hang off a restaurant by foreign key and share its
// ownership rules.

type createDishReq struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SuitableDiet string `json:"suitable_diet"`
	PriceCents   uint32 `json:"price_cents"`
}

// CreateDish handles POST /v1/restaurants/:id/dishes (owner only).
func (h *CatalogHandler) CreateDish(c echo.Context) error {
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	if err := h.requireOwner(c, restaurantID); err != nil {
		return ownershipError(c, err, "restaurant not found")
	}
	var req createDishReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
	}
	dish := &model.Dish{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		SuitableDiet: req.SuitableDiet,
		PriceCents:   req.PriceCents,
	}
	if err := h.Dishes.Create(c.Request().Context(), dish); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create dish failed"})
	}
	return c.JSON(http.StatusCreated, dish)
}

// GetMenu handles GET /v1/restaurants/:id/dishes (public, cached).
func (h *CatalogHandler) GetMenu(c echo.Context) error {
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	ok, err := h.Restaurants.Exists(c.Request().Context(), restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}
	dishes, err := h.Dishes.ListByRestaurant(c.Request().Context(), restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load menu failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": dishes})
}

type updatePriceReq struct {
	PriceCents uint32 `json:"price_cents"`
}

// UpdateDishPrice handles PUT /v1/dishes/:id/price (owner only). Existing
// order line items keep their snapshots.
func (h *CatalogHandler) UpdateDishPrice(c echo.Context) error {
	dishID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dish id"})
	}
	dish, err := h.Dishes.GetByID(c.Request().Context(), dishID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dish not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.requireOwner(c, dish.RestaurantID); err != nil {
		return ownershipError(c, err, "restaurant not found")
	}
	var req updatePriceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
	}
	if err := h.Dishes.UpdatePrice(c.Request().Context(), dishID, req.PriceCents); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update price failed"})
	}
	dish.PriceCents = req.PriceCents
	return c.JSON(http.StatusOK, dish)
}

// DeleteDish handles DELETE /v1/dishes/:id (owner only). Order line items
// that copied this dish are unaffected.
func (h *CatalogHandler) DeleteDish(c echo.Context) error {
	dishID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dish id"})
	}
	dish, err := h.Dishes.GetByID(c.Request().Context(), dishID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dish not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.requireOwner(c, dish.RestaurantID); err != nil {
		return ownershipError(c, err, "restaurant not found")
	}
	if err := h.Dishes.Delete(c.Request().Context(), dishID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete dish failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type createTableReq struct {
	TableNumber uint32 `json:"table_number"`
	Capacity    uint32 `json:"capacity"`
}

// CreateTable handles POST /v1/restaurants/:id/tables (owner only).
// Capacity has to be 1 or greater.
func (h *CatalogHandler) CreateTable(c echo.Context) error {
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	if err := h.requireOwner(c, restaurantID); err != nil {
		return ownershipError(c, err, "restaurant not found")
	}
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table capacity has to be 1 or greater"})
	}
	if req.TableNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number must be positive"})
	}
	table := &model.Table{
		RestaurantID: restaurantID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
	}
	if err := h.Tables.Create(c.Request().Context(), table); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create table failed"})
	}
	return c.JSON(http.StatusCreated, table)
}

// ListTables handles GET /v1/restaurants/:id/tables (public, cached).
func (h *CatalogHandler) ListTables(c echo.Context) error {
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	ok, err := h.Restaurants.Exists(c.Request().Context(), restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}
	tables, err := h.Tables.ListByRestaurant(c.Request().Context(), restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tables failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tables})
}

// GetTable handles GET /v1/restaurants/:id/tables/:table_id (public).
func (h *CatalogHandler) GetTable(c echo.Context) error {
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	table, err := h.Tables.GetByID(c.Request().Context(), tableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if table.RestaurantID != restaurantID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}
	return c.JSON(http.StatusOK, table)
}

// DeleteTable handles DELETE /v1/tables/:id (owner only).
func (h *CatalogHandler) DeleteTable(c echo.Context) error {
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	table, err := h.Tables.GetByID(c.Request().Context(), tableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.requireOwner(c, table.RestaurantID); err != nil {
		return ownershipError(c, err, "restaurant not found")
	}
	if err := h.Tables.Delete(c.Request().Context(), tableID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete table failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
