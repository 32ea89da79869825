package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"lob-engine/internal/models"
)

// Config holds the tunables of a single-instrument book.
type Config struct {
	// TickSize is the price grid; submitted limit prices snap to the nearest
	// multiple so economically equal prices share one level.
	TickSize float64

	// MaxDisplayLevels bounds the depth of L2 snapshots.
	MaxDisplayLevels int
}

// DefaultConfig mirrors the engine's reference parameters.
func DefaultConfig() Config {
	return Config{TickSize: 0.01, MaxDisplayLevels: 20}
}

// Option configures a LimitOrderBook.
type Option func(*LimitOrderBook)

// WithClock injects the timestamp source used for fills and snapshots.
func WithClock(c Clock) Option {
	return func(b *LimitOrderBook) { b.clock = c }
}

// WithTradeIDs injects the trade-id source, letting tests run with a
// deterministic counter instead of random UUIDs.
func WithTradeIDs(s TradeIDSource) Option {
	return func(b *LimitOrderBook) { b.tradeIDs = s }
}

// LimitOrderBook is an in-memory book and matching engine for one instrument.
// All state lives on the aggregate; one lock serializes every mutating call
// so the match-then-rest sequence is atomic, while read-only queries share a
// read lock.
type LimitOrderBook struct {
	cfg Config

	mu     sync.RWMutex
	orders map[string]*models.Order
	bids   *bookSide
	asks   *bookSide
	ledger *fillLedger

	lastTradePrice float64
	lastTradeSize  int64
	hasLastTrade   bool

	clock    Clock
	tradeIDs TradeIDSource
	onTrade  func(taker, maker models.Fill)
}

// New creates an empty book.
func New(cfg Config, opts ...Option) *LimitOrderBook {
	if cfg.TickSize <= 0 {
		cfg.TickSize = DefaultConfig().TickSize
	}
	if cfg.MaxDisplayLevels <= 0 {
		cfg.MaxDisplayLevels = DefaultConfig().MaxDisplayLevels
	}

	b := &LimitOrderBook{
		cfg:      cfg,
		orders:   make(map[string]*models.Order),
		bids:     newBookSide(true),
		asks:     newBookSide(false),
		ledger:   newFillLedger(),
		clock:    SystemClock(),
		tradeIDs: UUIDTradeIDs(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OrderSpec is a submission request. Leave ID empty to have the book assign
// one.
type OrderSpec struct {
	ID       string           `json:"id"`
	ClientID string           `json:"client_id"`
	Side     models.Side      `json:"side"`
	Type     models.OrderType `json:"type"`
	Price    float64          `json:"price"`
	Size     int64            `json:"size"`
}

// SetTradeCallback registers a hook invoked once per trade with the paired
// taker and maker fills. The hook runs inside the book's critical section and
// must not call back into the book.
func (b *LimitOrderBook) SetTradeCallback(cb func(taker, maker models.Fill)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrade = cb
}

// AddOrder validates, matches and (for unfilled limit orders) rests the
// submission in one atomic pass, returning the taker-side fills. A rejected
// submission leaves the book untouched.
func (b *LimitOrderBook) AddOrder(spec OrderSpec) ([]models.Fill, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := spec.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, exists := b.orders[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOrder, id)
	}

	order := &models.Order{
		ID:        id,
		ClientID:  spec.ClientID,
		Side:      spec.Side,
		Type:      spec.Type,
		Size:      spec.Size,
		Remaining: spec.Size,
		Status:    models.Pending,
		CreatedAt: b.clock.Now(),
	}
	if spec.Type == models.Limit {
		order.Price = b.roundPrice(spec.Price)
	}
	b.orders[id] = order

	fills := b.match(order)

	switch {
	case order.Remaining == 0:
		order.Status = models.Filled
	case len(fills) > 0:
		order.Status = models.Partial
	}

	// Market orders never rest: an unfilled remainder is dropped.
	if order.Type == models.Limit && order.Remaining > 0 {
		b.sideFor(order.Side).add(order.Price, order.ID)
		if order.Status == models.Pending {
			order.Status = models.Active
		}
	}

	return fills, nil
}

func validateSpec(spec OrderSpec) error {
	o := models.Order{
		ID:        spec.ID,
		ClientID:  spec.ClientID,
		Side:      spec.Side,
		Type:      spec.Type,
		Price:     spec.Price,
		Size:      spec.Size,
		Remaining: spec.Size,
	}
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	return nil
}

// CancelOrder removes an order's remaining resting quantity from the book.
// It returns true only when a live order was cancelled; unknown ids and
// orders already filled or cancelled return false without error.
func (b *LimitOrderBook) CancelOrder(orderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok || order.IsTerminal() {
		return false
	}

	b.sideFor(order.Side).remove(order.Price, order.ID)
	order.Status = models.Cancelled
	return true
}

// GetOrder returns a copy of the order's current state.
func (b *LimitOrderBook) GetOrder(orderID string) (models.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	order, ok := b.orders[orderID]
	if !ok {
		return models.Order{}, false
	}
	return *order, true
}

// BestBid returns the most aggressive resting bid price.
func (b *LimitOrderBook) BestBid() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestPrice(b.bids)
}

// BestAsk returns the most aggressive resting ask price.
func (b *LimitOrderBook) BestAsk() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestPrice(b.asks)
}

// MidPrice averages best bid and ask; with one or both sides empty it falls
// back to the last traded price.
func (b *LimitOrderBook) MidPrice() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.midLocked()
}

// Spread returns ask minus bid when both sides are populated.
func (b *LimitOrderBook) Spread() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.spreadLocked()
}

// LastTrade returns the price and size of the most recent execution.
func (b *LimitOrderBook) LastTrade() (float64, int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTradePrice, b.lastTradeSize, b.hasLastTrade
}

// Depth returns the top aggregated levels per side, best-first.
func (b *LimitOrderBook) Depth(levels int) (bids, asks []models.BookLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := b.clampLevels(levels)
	return b.sideDepthLocked(b.bids, n), b.sideDepthLocked(b.asks, n)
}

// Snapshot projects the book into a bounded-depth L2 view. Two successive
// calls with no intervening mutation return identical results apart from the
// timestamp source.
func (b *LimitOrderBook) Snapshot(levels int) models.BookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.clampLevels(levels)
	snap := models.BookSnapshot{
		Timestamp: b.clock.Now(),
		Bids:      b.sideDepthLocked(b.bids, n),
		Asks:      b.sideDepthLocked(b.asks, n),
	}
	if p, ok := bestPrice(b.bids); ok {
		snap.BestBid = &p
	}
	if p, ok := bestPrice(b.asks); ok {
		snap.BestAsk = &p
	}
	if p, ok := b.midLocked(); ok {
		snap.Mid = &p
	}
	if p, ok := b.spreadLocked(); ok {
		snap.Spread = &p
	}
	return snap
}

// ClientFills returns every fill where the client was taker or maker, in
// original chronological order.
func (b *LimitOrderBook) ClientFills(clientID string) []models.Fill {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.forClient(clientID)
}

// FillCount returns the total number of fills recorded.
func (b *LimitOrderBook) FillCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.size()
}

// OrderCount returns the number of registered orders, terminal included.
func (b *LimitOrderBook) OrderCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

// RestingCounts returns how many orders currently rest on each side.
func (b *LimitOrderBook) RestingCounts() (bids, asks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, lvl := range b.bids.levels {
		bids += len(lvl.queue)
	}
	for _, lvl := range b.asks.levels {
		asks += len(lvl.queue)
	}
	return bids, asks
}

// LevelCounts returns how many price levels are populated on each side.
func (b *LimitOrderBook) LevelCounts() (bids, asks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.bids.levels), len(b.asks.levels)
}

// roundPrice snaps p to the nearest tick.
func (b *LimitOrderBook) roundPrice(p float64) float64 {
	return math.Round(p/b.cfg.TickSize) * b.cfg.TickSize
}

func (b *LimitOrderBook) sideFor(s models.Side) *bookSide {
	if s == models.Buy {
		return b.bids
	}
	return b.asks
}

func (b *LimitOrderBook) clampLevels(levels int) int {
	if levels <= 0 || levels > b.cfg.MaxDisplayLevels {
		return b.cfg.MaxDisplayLevels
	}
	return levels
}

func bestPrice(s *bookSide) (float64, bool) {
	lvl := s.best()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

func (b *LimitOrderBook) midLocked() (float64, bool) {
	bb, okBid := bestPrice(b.bids)
	ba, okAsk := bestPrice(b.asks)
	if okBid && okAsk {
		return (bb + ba) / 2.0, true
	}
	if b.hasLastTrade {
		return b.lastTradePrice, true
	}
	return 0, false
}

func (b *LimitOrderBook) spreadLocked() (float64, bool) {
	bb, okBid := bestPrice(b.bids)
	ba, okAsk := bestPrice(b.asks)
	if okBid && okAsk {
		return ba - bb, true
	}
	return 0, false
}

func (b *LimitOrderBook) sideDepthLocked(s *bookSide, levels int) []models.BookLevel {
	n := levels
	if n > len(s.levels) {
		n = len(s.levels)
	}
	out := make([]models.BookLevel, 0, n)
	for _, lvl := range s.levels[:n] {
		var size int64
		for _, id := range lvl.queue {
			size += b.orders[id].Remaining
		}
		out = append(out, models.BookLevel{Price: lvl.price, Size: size})
	}
	return out
}
