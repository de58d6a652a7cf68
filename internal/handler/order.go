package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/queue"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-order-system/internal/service"
)

// OrderHandler implements the order ledger: order creation, line-item
// batches with snapshot pricing, idempotent completion and reads. Every
// mutation of an existing order runs inside one transaction that locks the
// order row, so concurrent batches on the same order serialize and the
// persisted total never drifts from the sum of its line items.
type OrderHandler struct {
	Orders      *repository.OrderRepo
	Dishes      *repository.DishRepo
	Restaurants *repository.RestaurantRepo
	Tables      *repository.TableRepo
	Users       *repository.UserRepo
	AMQPURL     string
}

func NewOrderHandler(o *repository.OrderRepo, d *repository.DishRepo, r *repository.RestaurantRepo, t *repository.TableRepo, u *repository.UserRepo, amqpURL string) *OrderHandler {
	if o == nil || d == nil || r == nil || t == nil || u == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: o, Dishes: d, Restaurants: r, Tables: t, Users: u, AMQPURL: amqpURL}
}

type createOrderReq struct {
	RestaurantID      uint64  `json:"restaurant_id"`
	TableID           uint64  `json:"table_id"`
	CustomerID        *uint64 `json:"customer_id"`
	NumberOfCustomers uint32  `json:"number_of_customers"`
}

// CreateOrder handles POST /v1/orders. It validates the restaurant, table
// and optional customer references and opens an empty order: completed
// false, zero total, no line items.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.NumberOfCustomers < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number_of_customers must be positive"})
	}
	if req.RestaurantID == 0 || req.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id and table_id are required"})
	}
	ctx := c.Request().Context()
	ok, err := h.Restaurants.Exists(ctx, req.RestaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}
	ok, err = h.Tables.ExistsInRestaurant(ctx, req.TableID, req.RestaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}
	// Guest orders carry no customer at all.
	if req.CustomerID != nil {
		ok, err = h.Users.Exists(ctx, *req.CustomerID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
	}
	order := &model.Order{
		RestaurantID:      req.RestaurantID,
		TableID:           req.TableID,
		CustomerID:        req.CustomerID,
		NumberOfCustomers: req.NumberOfCustomers,
	}
	if err := h.Orders.Create(ctx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}
	return c.JSON(http.StatusCreated, order)
}

type lineItemReq struct {
	DishID   uint64 `json:"dish_id"`
	Quantity uint32 `json:"quantity"`
}

type addLineItemsReq struct {
	Items []lineItemReq `json:"items"`
}

// AddLineItems handles POST /v1/orders/:id/items. The batch is processed
// in input order inside a single transaction: the order row is locked,
// each dish's current name and price are copied into a new line item, and
// the batch's price*quantity sum is added to the running total. A missing
// dish aborts the whole batch; nothing is persisted. Totals accumulate
// across batches, they are never recomputed from scratch.
func (h *OrderHandler) AddLineItems(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req addLineItemsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items is required"})
	}
	// Reject the whole batch before touching storage.
	for _, it := range req.Items {
		if it.DishID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "dish_id is required"})
		}
		if it.Quantity < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		}
	}

	ctx := c.Request().Context()
	tx, err := h.Orders.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := h.Orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if order.Completed {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrOrderCompleted.Error()})
	}

	items := make([]model.OrderLineItem, 0, len(req.Items))
	var delta uint64
	for _, it := range req.Items {
		dish, err := h.Dishes.GetByIDTx(ctx, tx, it.DishID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "dish not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		items = append(items, model.OrderLineItem{
			OrderID:    orderID,
			DishID:     dish.ID,
			DishName:   dish.Name,
			PriceCents: dish.PriceCents,
			Quantity:   it.Quantity,
		})
		delta += uint64(dish.PriceCents) * uint64(it.Quantity)
	}

	if err := h.Orders.InsertLineItemsTx(ctx, tx, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "insert line items failed"})
	}
	if err := h.Orders.AddTotalTx(ctx, tx, orderID, delta); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update total failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	updated, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// FinishOrder handles POST /v1/orders/:id/finish. Completion is idempotent:
// finishing an already-completed order returns it unchanged, without error
// and without bumping the update timestamp. The first completion publishes
// an order.completed event after the transaction commits; publish failures
// never fail the request.
func (h *OrderHandler) FinishOrder(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Orders.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := h.Orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	alreadyCompleted := order.Completed
	if !alreadyCompleted {
		if err := h.Orders.CompleteTx(ctx, tx, orderID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "finish order failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	updated, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}

	if !alreadyCompleted {
		ev := queue.OrderCompletedEvent{
			OrderID:           updated.ID,
			RestaurantID:      updated.RestaurantID,
			TableID:           updated.TableID,
			NumberOfCustomers: updated.NumberOfCustomers,
			LineItems:         len(updated.Items),
			TotalAmountCents:  updated.TotalAmountCents,
			CompletedAt:       updated.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if updated.CustomerID != nil {
			ev.CustomerID = *updated.CustomerID
		}
		url := h.AMQPURL
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = queue_publisher.PublishOrderCompleted(pubCtx, url, ev)
		}()
	}
	return c.JSON(http.StatusOK, updated)
}

// GetOrder handles GET /v1/orders/:id (public read).
func (h *OrderHandler) GetOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, err := h.Orders.GetByID(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, order)
}

// ListUserCurrentOrders handles GET /v1/users/:id/orders/current.
func (h *OrderHandler) ListUserCurrentOrders(c echo.Context) error {
	return h.listByCustomer(c, false)
}

// ListUserCompletedOrders handles GET /v1/users/:id/orders/completed.
func (h *OrderHandler) ListUserCompletedOrders(c echo.Context) error {
	return h.listByCustomer(c, true)
}

// ListRestaurantCurrentOrders handles GET /v1/restaurants/:id/orders/current.
func (h *OrderHandler) ListRestaurantCurrentOrders(c echo.Context) error {
	return h.listByRestaurant(c, false)
}

// ListRestaurantCompletedOrders handles GET /v1/restaurants/:id/orders/completed.
func (h *OrderHandler) ListRestaurantCompletedOrders(c echo.Context) error {
	return h.listByRestaurant(c, true)
}

func (h *OrderHandler) listByCustomer(c echo.Context, completed bool) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx := c.Request().Context()
	ok, err := h.Users.Exists(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	orders, err := h.Orders.ListByCustomer(ctx, userID, completed)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load orders failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}

func (h *OrderHandler) listByRestaurant(c echo.Context, completed bool) error {
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	ctx := c.Request().Context()
	ok, err := h.Restaurants.Exists(ctx, restaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}
	orders, err := h.Orders.ListByRestaurant(ctx, restaurantID, completed)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load orders failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}
