package woo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/woo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *woo.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := woo.New(srv.URL, "ck_test", "cs_test", 2*time.Second, 1000)
	require.NoError(t, err)
	return client
}

func TestProducts_DecodesAndAuthenticates(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "ck_test", r.URL.Query().Get("consumer_key"))
		assert.Equal(t, "cs_test", r.URL.Query().Get("consumer_secret"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))

		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 7, "name": "Mug", "type": "simple", "sku": "MUG01", "price": "9.99", "stock_quantity": 3},
			{"id": 8, "name": "Shirt", "type": "variable", "price": "19.50", "stock_quantity": nil},
		})
	})

	products, err := client.Products(context.Background(), domain.ListParams{Offset: 10, Limit: 5})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, int64(7), products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("9.99")))
	require.NotNil(t, products[0].Stock)
	assert.Equal(t, 3, *products[0].Stock)
	assert.Nil(t, products[1].Stock)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   domain.StoreErrorKind
	}{
		{http.StatusUnauthorized, domain.KindUnauthorized},
		{http.StatusForbidden, domain.KindUnauthorized},
		{http.StatusNotFound, domain.KindNotFound},
		{http.StatusTooManyRequests, domain.KindRateLimited},
		{http.StatusInternalServerError, domain.KindUnreachable},
		{http.StatusBadRequest, domain.KindMalformed},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})

			_, err := client.Products(context.Background(), domain.ListParams{Limit: 10})
			require.Error(t, err)
			kind, ok := domain.ErrorKind(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestUnreachableOnConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	client, err := woo.New(srv.URL, "ck", "cs", time.Second, 1000)
	require.NoError(t, err)

	_, err = client.Orders(context.Background(), domain.ListParams{Limit: 10})
	kind, ok := domain.ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindUnreachable, kind)
}

func TestMalformedOnBadJSON(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := client.Products(context.Background(), domain.ListParams{Limit: 10})
	kind, ok := domain.ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindMalformed, kind)
}

func TestMalformedOnBadMoney(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "name": "Mug", "price": "not-a-price"},
		})
	})

	_, err := client.Products(context.Background(), domain.ListParams{Limit: 10})
	kind, ok := domain.ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindMalformed, kind)
}

func TestSearchProducts_SKUVersusName(t *testing.T) {
	var gotSKU, gotSearch string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSKU = r.URL.Query().Get("sku")
		gotSearch = r.URL.Query().Get("search")
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})

	_, err := client.SearchProducts(context.Background(), "MUG01")
	require.NoError(t, err)
	assert.Equal(t, "MUG01", gotSKU)
	assert.Empty(t, gotSearch)

	_, err = client.SearchProducts(context.Background(), "coffee mug")
	require.NoError(t, err)
	assert.Equal(t, "coffee mug", gotSearch)
}

func TestUpdateStock_SendsManageStock(t *testing.T) {
	var body map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/7", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte("{}"))
	})

	require.NoError(t, client.UpdateStock(context.Background(), 7, 12))
	assert.Equal(t, float64(12), body["stock_quantity"])
	assert.Equal(t, true, body["manage_stock"])
}

func TestUpdateOrderStatus(t *testing.T) {
	var body map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders/42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte("{}"))
	})

	require.NoError(t, client.UpdateOrderStatus(context.Background(), 42, domain.OrderCompleted))
	assert.Equal(t, "completed", body["status"])
}

func TestOrder_DecodesDetails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     42,
			"status": "processing",
			"total":  "35.00",
			"billing": map[string]any{
				"first_name": "Jane", "last_name": "Doe",
			},
			"shipping": map[string]any{
				"address_1": "1 Main St", "city": "Springfield", "state": "IL", "postcode": "62701",
			},
			"line_items": []map[string]any{
				{"product_id": 7, "name": "Mug", "quantity": 2, "total": "19.98"},
			},
			"date_created": "2025-06-01T10:30:00",
		})
	})

	order, err := client.Order(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, order.Status)
	assert.Equal(t, "Jane Doe", order.Customer)
	assert.Contains(t, order.Shipping, "Springfield")
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 2025, order.CreatedAt.Year())
}
