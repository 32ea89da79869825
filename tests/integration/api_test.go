package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lob-engine/internal/api"
	"lob-engine/internal/config"
	"lob-engine/internal/engine"
	"lob-engine/internal/middleware"
	"lob-engine/internal/models"
)

// setupTestRouter creates a test router backed by a fresh book. No Redis,
// RabbitMQ or WebSocket hub: the HTTP layer must work with all collaborators
// absent.
func setupTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *engine.LimitOrderBook) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg == nil {
		cfg = &config.Config{
			TickSize:           0.01,
			MaxDisplayLevels:   20,
			RateLimitPerSecond: 10000,
			RateLimitBurst:     10000,
		}
	}

	book := engine.New(
		engine.Config{TickSize: cfg.TickSize, MaxDisplayLevels: cfg.MaxDisplayLevels},
		engine.WithTradeIDs(engine.NewSequenceTradeIDs("t-")),
	)

	router := gin.New()
	api.RegisterRoutes(router, cfg, book, nil, nil, nil, nil)
	return router, book
}

func placeOrder(t *testing.T, router *gin.Engine, req api.PlaceOrderRequest) (*httptest.ResponseRecorder, api.PlaceOrderResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	var resp api.PlaceOrderResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestPlaceOrderRests(t *testing.T) {
	router, book := setupTestRouter(t, nil)

	w, resp := placeOrder(t, router, api.PlaceOrderRequest{
		ClientID: "alice",
		Side:     "buy",
		Type:     "limit",
		Price:    99.99,
		Size:     10,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp.Order.ID)
	assert.Equal(t, models.Active, resp.Order.Status)
	assert.Empty(t, resp.Fills)

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, 99.99, bid)
}

func TestPlaceOrderValidation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	tests := []struct {
		name       string
		req        api.PlaceOrderRequest
		wantStatus int
	}{
		{
			name:       "missing_client_id",
			req:        api.PlaceOrderRequest{Side: "buy", Type: "limit", Price: 100, Size: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid_side",
			req:        api.PlaceOrderRequest{ClientID: "a", Side: "hold", Type: "limit", Price: 100, Size: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid_type",
			req:        api.PlaceOrderRequest{ClientID: "a", Side: "buy", Type: "stop", Price: 100, Size: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero_size",
			req:        api.PlaceOrderRequest{ClientID: "a", Side: "buy", Type: "limit", Price: 100, Size: 0},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "limit_without_price",
			req:        api.PlaceOrderRequest{ClientID: "a", Side: "buy", Type: "limit", Size: 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "market_without_price_ok",
			req:        api.PlaceOrderRequest{ClientID: "a", Side: "buy", Type: "market", Size: 1},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := placeOrder(t, router, tt.req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestDuplicateOrderConflict(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	first := api.PlaceOrderRequest{ID: "o-1", ClientID: "alice", Side: "buy", Type: "limit", Price: 99, Size: 5}
	w, _ := placeOrder(t, router, first)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = placeOrder(t, router, first)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMatchFlowAndClientFills(t *testing.T) {
	router, book := setupTestRouter(t, nil)

	w, _ := placeOrder(t, router, api.PlaceOrderRequest{
		ID: "s1", ClientID: "maker", Side: "sell", Type: "limit", Price: 100.00, Size: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := placeOrder(t, router, api.PlaceOrderRequest{
		ID: "b1", ClientID: "taker", Side: "buy", Type: "market", Size: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Fills, 1)
	assert.Equal(t, 100.00, resp.Fills[0].Price)
	assert.Equal(t, int64(10), resp.Fills[0].Size)
	assert.Equal(t, models.Filled, resp.Order.Status)

	// Both sides of the trade show up in the ledger with one trade id.
	req := httptest.NewRequest(http.MethodGet, "/api/fills?client_id=maker", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var fillsResp struct {
		Fills []models.Fill `json:"fills"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &fillsResp))
	require.Equal(t, 1, fillsResp.Count)
	assert.Equal(t, resp.Fills[0].TradeID, fillsResp.Fills[0].TradeID)
	assert.Equal(t, models.Sell, fillsResp.Fills[0].Side)

	// Book is empty again.
	_, ok := book.BestAsk()
	assert.False(t, ok)
}

func TestCancelFlow(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w, _ := placeOrder(t, router, api.PlaceOrderRequest{
		ID: "o1", ClientID: "alice", Side: "buy", Type: "limit", Price: 99, Size: 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/o1", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	// Second cancel conflicts, unknown id is not found.
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, httptest.NewRequest(http.MethodDelete, "/api/orders/o1", nil))
	assert.Equal(t, http.StatusConflict, w3.Code)

	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, httptest.NewRequest(http.MethodDelete, "/api/orders/ghost", nil))
	assert.Equal(t, http.StatusNotFound, w4.Code)

	// Order state survives with cancelled status.
	w5 := httptest.NewRecorder()
	router.ServeHTTP(w5, httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil))
	require.Equal(t, http.StatusOK, w5.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w5.Body.Bytes(), &order))
	assert.Equal(t, models.Cancelled, order.Status)
}

func TestBookSnapshotEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	for _, req := range []api.PlaceOrderRequest{
		{ClientID: "a", Side: "buy", Type: "limit", Price: 99.00, Size: 5},
		{ClientID: "b", Side: "buy", Type: "limit", Price: 99.00, Size: 3},
		{ClientID: "c", Side: "sell", Type: "limit", Price: 101.00, Size: 4},
	} {
		w, _ := placeOrder(t, router, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/book?levels=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.BookSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.NotNil(t, snap.BestBid)
	require.NotNil(t, snap.BestAsk)
	assert.Equal(t, 99.00, *snap.BestBid)
	assert.Equal(t, 101.00, *snap.BestAsk)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, int64(8), snap.Bids[0].Size)
}

func TestTickerEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	for _, req := range []api.PlaceOrderRequest{
		{ClientID: "a", Side: "buy", Type: "limit", Price: 99.00, Size: 5},
		{ClientID: "b", Side: "sell", Type: "limit", Price: 101.00, Size: 5},
	} {
		w, _ := placeOrder(t, router, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ticker", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var ticker struct {
		BestBid *float64 `json:"best_bid"`
		BestAsk *float64 `json:"best_ask"`
		Mid     *float64 `json:"mid"`
		Spread  *float64 `json:"spread"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticker))
	require.NotNil(t, ticker.Mid)
	assert.Equal(t, 100.00, *ticker.Mid)
	require.NotNil(t, ticker.Spread)
	assert.Equal(t, 2.00, *ticker.Spread)
}

func TestAuthProtectsMutations(t *testing.T) {
	cfg := &config.Config{
		TickSize:           0.01,
		MaxDisplayLevels:   20,
		AuthEnabled:        true,
		JWTSecret:          "test-secret",
		RateLimitPerSecond: 10000,
		RateLimitBurst:     10000,
	}
	router, _ := setupTestRouter(t, cfg)

	// Unauthenticated submission is rejected.
	w, _ := placeOrder(t, router, api.PlaceOrderRequest{
		ClientID: "alice", Side: "buy", Type: "limit", Price: 99, Size: 5,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// With a token, the client id comes from the claims.
	auth := middleware.NewAuthMiddleware(middleware.DefaultAuthConfig("test-secret"))
	token, err := auth.GenerateToken("alice", "trader")
	require.NoError(t, err)

	body, _ := json.Marshal(api.PlaceOrderRequest{Side: "buy", Type: "limit", Price: 99, Size: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp api.PlaceOrderResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Order.ClientID)

	// Reads stay public.
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/api/book", nil))
	assert.Equal(t, http.StatusOK, w3.Code)
}
