package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

var (
	lockCols  = []string{"id", "restaurant_id", "table_id", "completed", "total_amount_cents"}
	orderCols = []string{"id", "restaurant_id", "table_id", "customer_id", "number_of_customers",
		"completed", "total_amount_cents", "created_at", "updated_at"}
	itemCols = []string{"id", "order_id", "dish_id", "dish_name", "price_cents", "quantity", "created_at"}
	dishCols = []string{"id", "restaurant_id", "name", "price_cents"}

	testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newOrderEnv(t *testing.T) (*OrderHandler, sqlmock.Sqlmock, *echo.Echo) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := NewOrderHandler(
		repository.NewOrderRepo(db),
		repository.NewDishRepo(db),
		repository.NewRestaurantRepo(db),
		repository.NewTableRepo(db),
		repository.NewUserRepo(db),
		"amqp://127.0.0.1:1/", // unreachable; publish failures are ignored
	)
	return h, mock, echo.New()
}

func orderCtx(e *echo.Echo, method, body string, orderID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.Set("role", "STAFF")
	if orderID != "" {
		c.SetParamNames("id")
		c.SetParamValues(orderID)
	}
	return c, rec
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) model.Order {
	t.Helper()
	var o model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	return o
}

func TestCreateOrderOpensEmptyOrder(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectQuery("SELECT 1 FROM restaurants").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM restaurant_tables").WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO orders").WithArgs(1, 2, nil, 4).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT created_at, updated_at FROM orders").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(testTime, testTime))

	c, rec := orderCtx(e, http.MethodPost, `{"restaurant_id":1,"table_id":2,"number_of_customers":4}`, "")
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeOrder(t, rec)
	require.Equal(t, uint64(5), got.ID)
	require.False(t, got.Completed)
	require.Zero(t, got.TotalAmountCents)
	require.Empty(t, got.Items)
	require.Nil(t, got.CustomerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderUnknownTable(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectQuery("SELECT 1 FROM restaurants").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM restaurant_tables").WithArgs(99, 1).
		WillReturnError(sql.ErrNoRows)

	c, rec := orderCtx(e, http.MethodPost, `{"restaurant_id":1,"table_id":99,"number_of_customers":2}`, "")
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Two batches against the same order: the first inserts two dishes
// (850*2 + 300*1 = 2000), the second adds one more of the first dish after
// its menu price rose to 999. The new item and its delta use the current
// price while the batch-1 items keep their 850 snapshot, and each batch
// bumps the stored total by its own delta; nothing is ever recomputed
// from scratch.
func TestAddLineItemsAccumulatesAcrossBatches(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	// batch 1
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lockCols).AddRow(5, 1, 2, false, 0))
	mock.ExpectQuery("FROM dishes").WithArgs(3).
		WillReturnRows(sqlmock.NewRows(dishCols).AddRow(3, 1, "Margherita", 850))
	mock.ExpectQuery("FROM dishes").WithArgs(4).
		WillReturnRows(sqlmock.NewRows(dishCols).AddRow(4, 1, "Cola", 300))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(5, 3, "Margherita", 850, 2, 5, 4, "Cola", 300, 1).
		WillReturnResult(sqlmock.NewResult(10, 2))
	mock.ExpectExec("UPDATE orders SET total_amount_cents").WithArgs(2000, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("number_of_customers").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(5, 1, 2, nil, 4, false, 2000, testTime, testTime))
	mock.ExpectQuery("FROM order_items WHERE order_id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(10, 5, 3, "Margherita", 850, 2, testTime).
			AddRow(11, 5, 4, "Cola", 300, 1, testTime))

	c, rec := orderCtx(e, http.MethodPost, `{"items":[{"dish_id":3,"quantity":2},{"dish_id":4,"quantity":1}]}`, "5")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeOrder(t, rec)
	require.Equal(t, uint64(2000), got.TotalAmountCents)
	require.Len(t, got.Items, 2)
	require.Equal(t, "Margherita", got.Items[0].DishName)
	require.Equal(t, uint32(850), got.Items[0].PriceCents)

	// batch 2: the dish now costs 999; the order already holds 2000 and
	// only the 999 delta is added
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lockCols).AddRow(5, 1, 2, false, 2000))
	mock.ExpectQuery("FROM dishes").WithArgs(3).
		WillReturnRows(sqlmock.NewRows(dishCols).AddRow(3, 1, "Margherita", 999))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(5, 3, "Margherita", 999, 1).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("UPDATE orders SET total_amount_cents").WithArgs(999, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("number_of_customers").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(5, 1, 2, nil, 4, false, 2999, testTime, testTime))
	mock.ExpectQuery("FROM order_items WHERE order_id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(10, 5, 3, "Margherita", 850, 2, testTime).
			AddRow(11, 5, 4, "Cola", 300, 1, testTime).
			AddRow(12, 5, 3, "Margherita", 999, 1, testTime))

	c, rec = orderCtx(e, http.MethodPost, `{"items":[{"dish_id":3,"quantity":1}]}`, "5")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusOK, rec.Code)

	got = decodeOrder(t, rec)
	require.Equal(t, uint64(2999), got.TotalAmountCents)
	require.Len(t, got.Items, 3)
	// batch-1 snapshots are untouched by the price change
	require.Equal(t, uint32(850), got.Items[0].PriceCents)
	require.Equal(t, uint32(999), got.Items[2].PriceCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineItemsRejectsNonPositiveQuantity(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	c, rec := orderCtx(e, http.MethodPost, `{"items":[{"dish_id":3,"quantity":0}]}`, "5")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	// storage was never touched
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineItemsEmptyBatch(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	c, rec := orderCtx(e, http.MethodPost, `{"items":[]}`, "5")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A batch referencing one unknown dish persists nothing, not even the
// items resolved before the failure.
func TestAddLineItemsUnknownDishAbortsBatch(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lockCols).AddRow(5, 1, 2, false, 2000))
	mock.ExpectQuery("FROM dishes").WithArgs(3).
		WillReturnRows(sqlmock.NewRows(dishCols).AddRow(3, 1, "Margherita", 850))
	mock.ExpectQuery("FROM dishes").WithArgs(77).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := orderCtx(e, http.MethodPost, `{"items":[{"dish_id":3,"quantity":1},{"dish_id":77,"quantity":1}]}`, "5")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "dish not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineItemsCompletedOrderConflict(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lockCols).AddRow(5, 1, 2, true, 2850))
	mock.ExpectRollback()

	c, rec := orderCtx(e, http.MethodPost, `{"items":[{"dish_id":3,"quantity":1}]}`, "5")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "order already completed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineItemsOrderNotFound(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(404).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := orderCtx(e, http.MethodPost, `{"items":[{"dish_id":3,"quantity":1}]}`, "404")
	require.NoError(t, h.AddLineItems(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Finishing twice returns the same completed order both times; the second
// call never writes.
func TestFinishOrderIdempotent(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lockCols).AddRow(5, 1, 2, false, 2850))
	mock.ExpectExec("SET completed = 1").WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("number_of_customers").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(5, 1, 2, nil, 4, true, 2850, testTime, testTime))
	mock.ExpectQuery("FROM order_items WHERE order_id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(10, 5, 3, "Margherita", 850, 2, testTime))

	c, rec := orderCtx(e, http.MethodPost, "", "5")
	require.NoError(t, h.FinishOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeOrder(t, rec)
	require.True(t, first.Completed)
	require.Equal(t, uint64(2850), first.TotalAmountCents)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(lockCols).AddRow(5, 1, 2, true, 2850))
	mock.ExpectCommit()
	mock.ExpectQuery("number_of_customers").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(5, 1, 2, nil, 4, true, 2850, testTime, testTime))
	mock.ExpectQuery("FROM order_items WHERE order_id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(10, 5, 3, "Margherita", 850, 2, testTime))

	c, rec = orderCtx(e, http.MethodPost, "", "5")
	require.NoError(t, h.FinishOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeOrder(t, rec)
	require.True(t, second.Completed)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderNotFound(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectQuery("number_of_customers").WithArgs(404).WillReturnError(sql.ErrNoRows)

	c, rec := orderCtx(e, http.MethodGet, "", "404")
	require.NoError(t, h.GetOrder(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRestaurantCurrentOrders(t *testing.T) {
	h, mock, e := newOrderEnv(t)

	mock.ExpectQuery("SELECT 1 FROM restaurants").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("FROM orders WHERE restaurant_id=").WithArgs(1, false).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(5, 1, 2, nil, 4, false, 2000, testTime, testTime))
	mock.ExpectQuery("FROM order_items WHERE order_id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(10, 5, 3, "Margherita", 850, 2, testTime))

	c, rec := orderCtx(e, http.MethodGet, "", "1")
	require.NoError(t, h.ListRestaurantCurrentOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []model.Order `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.Len(t, resp.Items[0].Items, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
