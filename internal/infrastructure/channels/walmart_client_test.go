package channels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

func newTestWalmartClient(t *testing.T, baseURL string) *WalmartClient {
	t.Helper()
	client, err := NewWalmartClient(testChannelConfig(baseURL),
		&staticTokenSource{token: "wm-token"}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestWalmartClient_FetchRecentOrders(t *testing.T) {
	t.Run("returns converted orders", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "wm-token", r.Header.Get("WM_SEC.ACCESS_TOKEN"))
			assert.NotEmpty(t, r.URL.Query().Get("createdStartDate"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"list": {
					"meta": {"totalCount": 1},
					"elements": {
						"order": [{
							"purchaseOrderId": "PO-1001",
							"orderDate": 1756550400000,
							"customerName": "Jane Doe",
							"orderLines": {
								"orderLine": [{
									"lineNumber": "1",
									"item": {"sku": "SKU-W", "productName": "Widget"},
									"orderLineQuantity": {"unitOfMeasurement": "EACH", "amount": "3"},
									"charges": {"charge": [{"chargeType": "PRODUCT", "chargeAmount": {"currency": "USD", "amount": 12.5}}]},
									"orderLineStatuses": {"orderLineStatus": [{"status": "Created"}]}
								}]
							}
						}]
					}
				}
			}`))
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		orders, err := client.FetchRecentOrders(context.Background(), time.Now().Add(-10*time.Minute))

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "PO-1001", orders[0].ExternalOrderID)
		assert.Equal(t, channel.CodeWalmart, orders[0].Channel)
		assert.Equal(t, "Created", orders[0].Status)
		require.Len(t, orders[0].Lines, 1)
		assert.Equal(t, "SKU-W", orders[0].Lines[0].SKU)
		assert.Equal(t, int64(3), orders[0].Lines[0].Quantity)
		assert.Equal(t, "37.5", orders[0].TotalAmount.String())
	})

	t.Run("follows the next cursor", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("nextCursor") == "" {
				w.Write([]byte(`{"list": {"meta": {"totalCount": 2, "nextCursor": "c2"}, "elements": {"order": [{"purchaseOrderId": "PO-1"}]}}}`))
				return
			}
			w.Write([]byte(`{"list": {"meta": {"totalCount": 2}, "elements": {"order": [{"purchaseOrderId": "PO-2"}]}}}`))
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		orders, err := client.FetchRecentOrders(context.Background(), time.Now())

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		require.Len(t, orders, 2)
	})
}

func TestWalmartClient_PushStockUpdate(t *testing.T) {
	t.Run("accepted on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/v3/inventory", r.URL.Path)
			assert.Equal(t, "SKU-W", r.URL.Query().Get("sku"))
			w.Write([]byte(`{"sku": "SKU-W", "quantity": {"unitOfMeasurement": "EACH", "amount": "5"}}`))
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		outcome, err := client.PushStockUpdate(context.Background(), "SKU-W", 5)

		require.NoError(t, err)
		assert.Equal(t, channel.PushOutcomeAccepted, outcome)
	})

	t.Run("locked listing yields policy restricted without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"errors": {"error": [{"code": "CONTENT_PROTECTED", "description": "Listing content is locked"}]}}`))
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		outcome, err := client.PushStockUpdate(context.Background(), "SKU-LOCKED", 5)

		require.NoError(t, err)
		assert.Equal(t, channel.PushOutcomePolicyRestricted, outcome)
	})

	t.Run("other validation errors still fail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"errors": {"error": [{"code": "INVALID_SKU", "description": "Unknown sku"}]}}`))
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		outcome, err := client.PushStockUpdate(context.Background(), "SKU-BAD", 5)

		assert.ErrorIs(t, err, channel.ErrValidation)
		assert.Equal(t, channel.PushOutcomeFailed, outcome)
	})

	t.Run("transient on server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		outcome, err := client.PushStockUpdate(context.Background(), "SKU-W", 5)

		assert.ErrorIs(t, err, channel.ErrTransient)
		assert.Equal(t, channel.PushOutcomeFailed, outcome)
	})
}

func TestWalmartClient_DeleteListing(t *testing.T) {
	t.Run("retires the item", func(t *testing.T) {
		var gotMethod, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestWalmartClient(t, server.URL)
		err := client.DeleteListing(context.Background(), "SKU-W")

		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/v3/items/SKU-W", gotPath)
	})
}
