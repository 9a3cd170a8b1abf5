package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Domain:      "cshop.co",
		AccessToken: "shpat_test_token",
		APIVersion:  "2023-10",
		BaseURL:     srv.URL,
	}, srv.Client())
}

func TestFetchOrder_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2023-10/orders/450789469.json", r.URL.Path)
		assert.Equal(t, "shpat_test_token", r.Header.Get("X-Shopify-Access-Token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order": {
			"id": 450789469,
			"order_number": 1001,
			"created_at": "2024-03-05T10:00:00Z",
			"line_items": [{"title": "Camiseta", "quantity": 2, "price": "5000.00"}],
			"subtotal_price": "10000.00",
			"total_price": "10000.00"
		}}`))
	})

	o, err := c.FetchOrder(context.Background(), "450789469")
	require.NoError(t, err)
	assert.Equal(t, int64(450789469), o.ID)
	assert.Equal(t, "1001", string(o.Number))
	require.Len(t, o.LineItems, 1)
	assert.True(t, decimal.RequireFromString("10000.00").Equal(o.TotalPrice))
}

func TestFetchOrder_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	})

	_, err := c.FetchOrder(context.Background(), "999")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchOrder_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"order": `))
	})

	_, err := c.FetchOrder(context.Background(), "1")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.Status)
}

func TestFetchOrder_MissingOrderObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.FetchOrder(context.Background(), "1")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, err.Error(), "no order object")
}

func TestFetchOrder_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(Config{BaseURL: srv.URL, APIVersion: "2023-10"}, nil)
	_, err := c.FetchOrder(context.Background(), "1")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.Status)
	assert.Error(t, reqErr.Unwrap())
}
