package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lob-engine/internal/cache"
	"lob-engine/internal/engine"
	"lob-engine/internal/messaging"
	"lob-engine/internal/metrics"
	"lob-engine/internal/middleware"
	"lob-engine/internal/models"
	"lob-engine/internal/ws"
)

// Handler translates HTTP requests into book operations. All invariants live
// in the engine; this layer only validates the payload shape and fans events
// out to cache, WebSocket and RabbitMQ collaborators.
type Handler struct {
	book      *engine.LimitOrderBook
	cache     *cache.RedisCache
	wsHub     *ws.Hub
	publisher *messaging.Publisher
	metrics   *metrics.Metrics
}

func NewHandler(book *engine.LimitOrderBook, redisCache *cache.RedisCache, wsHub *ws.Hub, publisher *messaging.Publisher, m *metrics.Metrics) *Handler {
	return &Handler{
		book:      book,
		cache:     redisCache,
		wsHub:     wsHub,
		publisher: publisher,
		metrics:   m,
	}
}

// PlaceOrderRequest is the submission payload. ID is optional; the book
// assigns one when absent. Price is required for limit orders only.
type PlaceOrderRequest struct {
	ID       string  `json:"id"`
	ClientID string  `json:"client_id"`
	Side     string  `json:"side" binding:"required,oneof=buy sell"`
	Type     string  `json:"type" binding:"required,oneof=limit market"`
	Price    float64 `json:"price"`
	Size     int64   `json:"size" binding:"required,gt=0"`
}

// PlaceOrderResponse pairs the accepted order with its immediate fills.
type PlaceOrderResponse struct {
	Order models.Order  `json:"order"`
	Fills []models.Fill `json:"fills"`
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordOrderRejected("bad_request")
		AbortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	clientID := h.resolveClientID(c, req.ClientID)
	if clientID == "" {
		h.metrics.RecordOrderRejected("missing_client")
		AbortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "client_id is required")
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	fills, err := h.book.AddOrder(engine.OrderSpec{
		ID:       req.ID,
		ClientID: clientID,
		Side:     models.Side(req.Side),
		Type:     models.OrderType(req.Type),
		Price:    req.Price,
		Size:     req.Size,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidOrder):
			h.metrics.RecordOrderRejected("invalid_order")
			AbortWithError(c, http.StatusBadRequest, ErrCodeInvalidOrder, err.Error())
		case errors.Is(err, engine.ErrDuplicateOrder):
			h.metrics.RecordOrderRejected("duplicate")
			AbortWithError(c, http.StatusConflict, ErrCodeDuplicateOrder, err.Error())
		default:
			AbortWithError(c, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		}
		return
	}

	h.metrics.RecordOrderSubmitted()
	h.recordBookShape()

	order, ok := h.book.GetOrder(req.ID)
	if !ok {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeInternalError, "order vanished after submission")
		return
	}

	if h.publisher != nil {
		h.publisher.Publish("order.accepted", order)
		h.metrics.RecordMQPublished("order.accepted")
	}
	if h.wsHub != nil {
		h.wsHub.BroadcastOrderUpdate(order.ID, string(order.Status))
	}
	h.refreshTicker()

	c.JSON(http.StatusOK, PlaceOrderResponse{Order: order, Fills: fills})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	orderID := c.Param("id")

	if _, ok := h.book.GetOrder(orderID); !ok {
		AbortWithError(c, http.StatusNotFound, ErrCodeOrderNotFound, engine.ErrOrderNotFound.Error())
		return
	}

	if !h.book.CancelOrder(orderID) {
		AbortWithError(c, http.StatusConflict, ErrCodeCannotCancel, "order already filled or cancelled")
		return
	}

	h.metrics.RecordOrderCancelled()
	h.recordBookShape()

	if h.publisher != nil {
		h.publisher.Publish("order.cancelled", gin.H{"order_id": orderID})
		h.metrics.RecordMQPublished("order.cancelled")
	}
	if h.wsHub != nil {
		h.wsHub.BroadcastOrderUpdate(orderID, string(models.Cancelled))
	}
	h.refreshTicker()

	c.JSON(http.StatusOK, gin.H{
		"message":  "order cancelled",
		"order_id": orderID,
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.book.GetOrder(c.Param("id"))
	if !ok {
		AbortWithError(c, http.StatusNotFound, ErrCodeOrderNotFound, engine.ErrOrderNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetBookSnapshot(c *gin.Context) {
	levels := 0
	if levelsStr := c.Query("levels"); levelsStr != "" {
		if l, err := strconv.Atoi(levelsStr); err == nil && l > 0 {
			levels = l
		}
	}
	c.JSON(http.StatusOK, h.book.Snapshot(levels))
}

func (h *Handler) GetTicker(c *gin.Context) {
	// Serve from cache when fresh, fall back to the book.
	if h.cache != nil {
		if t, err := h.cache.GetTicker(); err == nil && t != nil {
			c.JSON(http.StatusOK, t)
			return
		}
	}
	c.JSON(http.StatusOK, h.currentTicker())
}

func (h *Handler) GetClientFills(c *gin.Context) {
	clientID := h.resolveClientID(c, c.Query("client_id"))
	if clientID == "" {
		AbortWithError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "client_id is required")
		return
	}

	fills := h.book.ClientFills(clientID)
	c.JSON(http.StatusOK, gin.H{
		"client_id": clientID,
		"fills":     fills,
		"count":     len(fills),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"orders": h.book.OrderCount(),
		"fills":  h.book.FillCount(),
	})
}

// resolveClientID prefers the authenticated identity over the payload.
func (h *Handler) resolveClientID(c *gin.Context, fromRequest string) string {
	if authed := c.GetString(middleware.ContextKeyClientID); authed != "" {
		return authed
	}
	return fromRequest
}

func (h *Handler) currentTicker() cache.Ticker {
	t := cache.Ticker{Timestamp: time.Now()}
	if p, ok := h.book.BestBid(); ok {
		t.BestBid = &p
	}
	if p, ok := h.book.BestAsk(); ok {
		t.BestAsk = &p
	}
	if p, ok := h.book.MidPrice(); ok {
		t.Mid = &p
	}
	if p, ok := h.book.Spread(); ok {
		t.Spread = &p
	}
	return t
}

func (h *Handler) refreshTicker() {
	if h.cache == nil {
		return
	}
	h.cache.SetTicker(h.currentTicker())
}

func (h *Handler) recordBookShape() {
	bidOrders, askOrders := h.book.RestingCounts()
	bidLevels, askLevels := h.book.LevelCounts()
	h.metrics.RecordBookShape(bidOrders, askOrders, bidLevels, askLevels)
}
