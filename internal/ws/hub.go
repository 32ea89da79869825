package ws

import (
	"log"
	"sync"
	"time"

	"lob-engine/internal/cache"
	"lob-engine/internal/engine"
	"lob-engine/internal/metrics"
	"lob-engine/internal/models"
)

// Hub maintains the set of active subscribers and fans events out to them.
// Every connected client receives the full feed for the instrument: trades,
// periodic snapshots and heartbeats.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	book       *engine.LimitOrderBook
	redisCache *cache.RedisCache
	metrics    *metrics.Metrics

	snapshotLevels int
	tradesLimit    int64

	heartbeatSeq    int64
	heartbeatTicker *time.Ticker
	snapshotTicker  *time.Ticker

	stop chan struct{}
	mu   sync.RWMutex
}

// HubConfig holds configuration for the hub.
type HubConfig struct {
	HeartbeatInterval time.Duration // default 30s
	SnapshotInterval  time.Duration // periodic snapshot broadcast, default 5s
	SnapshotLevels    int           // price levels per snapshot, default 10
	RecentTradesLimit int64         // recent trades per snapshot, default 50
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		HeartbeatInterval: 30 * time.Second,
		SnapshotInterval:  5 * time.Second,
		SnapshotLevels:    10,
		RecentTradesLimit: 50,
	}
}

// NewHub creates a hub serving the given book. The Redis cache is optional;
// without it snapshots simply omit the recent-trade feed.
func NewHub(cfg *HubConfig, book *engine.LimitOrderBook, redisCache *cache.RedisCache) *Hub {
	if cfg == nil {
		cfg = DefaultHubConfig()
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = 5 * time.Second
	}
	if cfg.SnapshotLevels <= 0 {
		cfg.SnapshotLevels = 10
	}

	return &Hub{
		clients:         make(map[*Client]bool),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan []byte, 256),
		book:            book,
		redisCache:      redisCache,
		snapshotLevels:  cfg.SnapshotLevels,
		tradesLimit:     cfg.RecentTradesLimit,
		heartbeatTicker: time.NewTicker(cfg.HeartbeatInterval),
		snapshotTicker:  time.NewTicker(cfg.SnapshotInterval),
		stop:            make(chan struct{}),
	}
}

// Run starts the hub's main event loop with heartbeat.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.heartbeatTicker.Stop()
			h.snapshotTicker.Stop()
			log.Println("📡 WebSocket hub stopped")
			return

		case <-h.heartbeatTicker.C:
			h.mu.Lock()
			h.heartbeatSeq++
			seq := h.heartbeatSeq
			h.mu.Unlock()
			h.broadcastBytes(toJSON(NewHeartbeatEvent(seq)))

		case <-h.snapshotTicker.C:
			h.BroadcastSnapshot()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnect()
			log.Printf("📱 WS client %s registered (total: %d)", client.id, h.ClientCount())

			// New subscribers start from a snapshot.
			go h.SendSnapshot(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.RecordWSDisconnect()
				log.Printf("📱 WS client %s unregistered", client.id)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastBytes(message)
		}
	}
}

// SetMetrics attaches the metrics sink. Call before Run.
func (h *Hub) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// Stop gracefully stops the hub.
func (h *Hub) Stop() {
	close(h.stop)
}

// Register adds a subscriber.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a subscriber.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendSnapshot sends the current book snapshot to one client.
func (h *Hub) SendSnapshot(client *Client) {
	if client == nil || h.book == nil {
		return
	}

	event := h.Snapshot()
	data := toJSON(event)
	if data == nil {
		return
	}

	select {
	case client.send <- data:
	default:
		log.Printf("⚠️ WS client %s send buffer full, dropping snapshot", client.id)
	}
}

// Snapshot builds the snapshot event served to new subscribers and the REST
// layer's websocket stats endpoint.
func (h *Hub) Snapshot() *SnapshotEvent {
	var recent []models.Fill
	if h.redisCache != nil {
		recent, _ = h.redisCache.GetRecentFills(h.tradesLimit)
	}

	h.mu.RLock()
	seq := h.heartbeatSeq
	h.mu.RUnlock()

	return NewSnapshotEvent(h.book.Snapshot(h.snapshotLevels), recent, seq)
}

// BroadcastTrade fans a trade event out to all subscribers.
func (h *Hub) BroadcastTrade(taker models.Fill) {
	h.metrics.RecordWSSent(EventTrade)
	h.enqueue(toJSON(NewTradeEvent(taker)))
}

// BroadcastOrderUpdate fans an order status change out to all subscribers.
func (h *Hub) BroadcastOrderUpdate(orderID, status string) {
	h.metrics.RecordWSSent(EventOrderUpdate)
	h.enqueue(toJSON(NewOrderUpdateEvent(orderID, status)))
}

// BroadcastSnapshot fans the current book state out to all subscribers.
func (h *Hub) BroadcastSnapshot() {
	h.metrics.RecordWSSent(EventSnapshot)
	h.enqueue(toJSON(h.Snapshot()))
}

func (h *Hub) enqueue(data []byte) {
	if data == nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Println("⚠️ WS broadcast buffer full, dropping message")
	}
}

func (h *Hub) broadcastBytes(message []byte) {
	if message == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client's send buffer is full, skip this message
			log.Printf("⚠️ WS client %s send buffer full, skipping", client.id)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
