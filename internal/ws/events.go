package ws

import (
	"encoding/json"
	"time"

	"lob-engine/internal/models"
)

// Event types pushed to subscribers.
const (
	EventTrade       = "trade"
	EventSnapshot    = "snapshot"
	EventOrderUpdate = "order_update"
	EventHeartbeat   = "heartbeat"
)

// TradeEvent is broadcast once per trade.
type TradeEvent struct {
	Type      string    `json:"type"`
	TradeID   string    `json:"trade_id"`
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	TakerSide string    `json:"taker_side"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTradeEvent builds a trade event from the taker-side fill.
func NewTradeEvent(taker models.Fill) *TradeEvent {
	return &TradeEvent{
		Type:      EventTrade,
		TradeID:   taker.TradeID,
		Price:     taker.Price,
		Size:      taker.Size,
		TakerSide: string(taker.Side),
		Timestamp: taker.Timestamp,
	}
}

// SnapshotEvent carries an L2 view plus the recent trade feed.
type SnapshotEvent struct {
	Type         string              `json:"type"`
	Book         models.BookSnapshot `json:"book"`
	RecentTrades []models.Fill       `json:"recent_trades,omitempty"`
	Sequence     int64               `json:"sequence"`
}

func NewSnapshotEvent(book models.BookSnapshot, recent []models.Fill, seq int64) *SnapshotEvent {
	return &SnapshotEvent{
		Type:         EventSnapshot,
		Book:         book,
		RecentTrades: recent,
		Sequence:     seq,
	}
}

// OrderUpdateEvent notifies subscribers of an order status change.
type OrderUpdateEvent struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func NewOrderUpdateEvent(orderID, status string) *OrderUpdateEvent {
	return &OrderUpdateEvent{
		Type:    EventOrderUpdate,
		OrderID: orderID,
		Status:  status,
	}
}

// HeartbeatEvent keeps idle connections warm.
type HeartbeatEvent struct {
	Type      string    `json:"type"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

func NewHeartbeatEvent(seq int64) *HeartbeatEvent {
	return &HeartbeatEvent{
		Type:      EventHeartbeat,
		Sequence:  seq,
		Timestamp: time.Now(),
	}
}

// toJSON marshals an event, returning nil on failure.
func toJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
