package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Order book metrics
	OrdersSubmitted prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	OrdersCancelled prometheus.Counter
	RestingOrders   *prometheus.GaugeVec
	BookDepth       *prometheus.GaugeVec

	// Trade metrics
	TradesTotal prometheus.Counter
	TradeVolume prometheus.Counter

	// WebSocket metrics
	WSConnections  prometheus.Gauge
	WSMessagesSent *prometheus.CounterVec

	// RabbitMQ metrics
	MQMessagesPublished *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		OrdersSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_submitted_total",
				Help: "Total number of orders accepted by the book",
			},
		),
		OrdersRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_rejected_total",
				Help: "Total number of rejected order submissions",
			},
			[]string{"reason"},
		),
		OrdersCancelled: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_cancelled_total",
				Help: "Total number of orders cancelled",
			},
		),
		RestingOrders: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orderbook_resting_orders",
				Help: "Number of resting orders per side",
			},
			[]string{"side"},
		),
		BookDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orderbook_depth_levels",
				Help: "Number of populated price levels per side",
			},
			[]string{"side"},
		),

		TradesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trades_total",
				Help: "Total number of trades executed",
			},
		),
		TradeVolume: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trade_volume_total",
				Help: "Total traded size",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ws_connections_active",
				Help: "Current number of active WebSocket connections",
			},
		),
		WSMessagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ws_messages_sent_total",
				Help: "Total number of WebSocket messages sent",
			},
			[]string{"type"},
		),

		MQMessagesPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mq_messages_published_total",
				Help: "Total number of messages published to RabbitMQ",
			},
			[]string{"routing_key"},
		),
	}
}

// RecordOrderSubmitted records an accepted order.
func (m *Metrics) RecordOrderSubmitted() {
	if m == nil {
		return
	}
	m.OrdersSubmitted.Inc()
}

// RecordOrderRejected records a rejected submission with its reason.
func (m *Metrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.OrdersRejected.WithLabelValues(reason).Inc()
}

// RecordOrderCancelled records an order cancellation.
func (m *Metrics) RecordOrderCancelled() {
	if m == nil {
		return
	}
	m.OrdersCancelled.Inc()
}

// RecordTrade records a trade execution.
func (m *Metrics) RecordTrade(size int64) {
	if m == nil {
		return
	}
	m.TradesTotal.Inc()
	m.TradeVolume.Add(float64(size))
}

// RecordBookShape updates the per-side gauges.
func (m *Metrics) RecordBookShape(bidOrders, askOrders, bidLevels, askLevels int) {
	if m == nil {
		return
	}
	m.RestingOrders.WithLabelValues("buy").Set(float64(bidOrders))
	m.RestingOrders.WithLabelValues("sell").Set(float64(askOrders))
	m.BookDepth.WithLabelValues("buy").Set(float64(bidLevels))
	m.BookDepth.WithLabelValues("sell").Set(float64(askLevels))
}

// RecordWSConnect bumps the active-connection gauge.
func (m *Metrics) RecordWSConnect() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// RecordWSDisconnect drops the active-connection gauge.
func (m *Metrics) RecordWSDisconnect() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// RecordWSSent records a WebSocket message sent.
func (m *Metrics) RecordWSSent(msgType string) {
	if m == nil {
		return
	}
	m.WSMessagesSent.WithLabelValues(msgType).Inc()
}

// RecordMQPublished records a message published to RabbitMQ.
func (m *Metrics) RecordMQPublished(routingKey string) {
	if m == nil {
		return
	}
	m.MQMessagesPublished.WithLabelValues(routingKey).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}
