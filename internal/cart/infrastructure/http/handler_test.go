package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/cart/domain"
	"github.com/dmehra2102/storefront/internal/cart/infrastructure/memory"
)

const session = "0d4c6a3e-7d0b-4f51-9a43-2a6d4c0b9e11"

func newRouter() http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, memory.NewRepository(log, time.Hour))

	r := chi.NewRouter()
	r.Use(Session(svc, time.Hour))
	r.Mount("/cart", NewHandler(log).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(SessionHeader, session)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResp {
	t.Helper()
	var c cartResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestCartHandlers(t *testing.T) {
	h := newRouter()

	rec := do(t, h, http.MethodPost, "/cart/items", `{
		"product_id": "acai-500",
		"name": "Açaí 500ml",
		"price": "18.50",
		"quantity": 0,
		"addons": [{"id": "g", "name": "Granola", "price": 1.5}, {"id": "x", "name": "Mel", "price": "abc"}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, decimal.RequireFromString("18.5").Equal(item.Price))
	require.Len(t, item.Addons, 2)
	assert.True(t, item.Addons[1].Price.IsZero())

	rec = do(t, h, http.MethodPatch, "/cart/items/"+item.ID, `{"quantity": "2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeCart(t, rec)
	assert.Equal(t, 2, c.TotalItems)
	assert.True(t, decimal.NewFromInt(40).Equal(c.Subtotal), c.Subtotal.String())

	rec = do(t, h, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeCart(t, rec).Items, 1)

	rec = do(t, h, http.MethodPatch, "/cart/items/"+item.ID, `{"quantity": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestRemoveAndClear(t *testing.T) {
	h := newRouter()

	rec := do(t, h, http.MethodPost, "/cart/items", `{"name": "A", "price": 1, "quantity": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var a domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	do(t, h, http.MethodPost, "/cart/items", `{"name": "B", "price": 2, "quantity": 3}`)

	rec = do(t, h, http.MethodDelete, "/cart/items/"+a.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeCart(t, rec)
	assert.Equal(t, 3, c.TotalItems)

	rec = do(t, h, http.MethodDelete, "/cart", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/cart", "")
	assert.Equal(t, 0, decodeCart(t, rec).TotalItems)
}

func TestAddItemBadBody(t *testing.T) {
	rec := do(t, newRouter(), http.MethodPost, "/cart/items", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAddFailed)
}

func TestSessionIssuesCookie(t *testing.T) {
	h := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.Equal(t, cookies[0].Value, rec.Header().Get(SessionHeader))
}

func TestSessionsAreSeparate(t *testing.T) {
	h := newRouter()
	do(t, h, http.MethodPost, "/cart/items", `{"name": "A", "price": 1, "quantity": 1}`)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "6f1d0a52-3f8e-4d7b-8d44-5d0b1f6a7c22"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, 0, decodeCart(t, rec).TotalItems)
}

func TestFlexNumbers(t *testing.T) {
	var req addItemReq
	require.NoError(t, json.Unmarshal([]byte(`{"price": "12,90", "quantity": "3"}`), &req))
	assert.True(t, decimal.RequireFromString("12.90").Equal(decimal.Decimal(req.Price)))
	assert.Equal(t, 3, int(req.Quantity))

	var bad addItemReq
	require.NoError(t, json.Unmarshal([]byte(`{"price": null, "quantity": "lots"}`), &bad))
	assert.True(t, decimal.Decimal(bad.Price).IsZero())
	assert.Equal(t, 0, int(bad.Quantity))
}

func TestFlexNumbersOutOfRange(t *testing.T) {
	var req addItemReq
	require.NoError(t, json.Unmarshal([]byte(`{"price": "1e50000000", "quantity": "1e30"}`), &req))
	assert.True(t, decimal.Decimal(req.Price).IsZero())
	assert.Equal(t, domain.MaxQuantity, int(req.Quantity))

	var neg updateQuantityReq
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": -1e30}`), &neg))
	assert.Equal(t, -domain.MaxQuantity, int(neg.Quantity))

	var nan updateQuantityReq
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": "NaN"}`), &nan))
	assert.Equal(t, 0, int(nan.Quantity))
}

func TestAddItemHugePriceStoredAsZero(t *testing.T) {
	h := newRouter()

	rec := do(t, h, http.MethodPost, "/cart/items", `{"name": "A", "price": "1e50000000", "quantity": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Less(t, rec.Body.Len(), 1024)

	c := decodeCart(t, do(t, h, http.MethodGet, "/cart", ""))
	assert.True(t, c.Subtotal.IsZero(), c.Subtotal.String())
}
