package messaging

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

// Publisher pushes domain events to a RabbitMQ topic exchange so downstream
// consumers (strategy processes, analytics, notification fan-out) can react
// without touching the matching engine.
//
// EVENTS PUBLISHED:
//   - order.accepted: an order passed validation and entered the engine
//   - order.cancelled: a resting order was removed by its owner
//   - trade.executed: a match occurred (payload carries both fills)
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher initializes a RabbitMQ publisher with the given exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Topic exchange so consumers can bind patterns like trade.* or order.*.
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true, // durable
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish sends an event message with the given routing key.
func (p *Publisher) Publish(routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("⚠️ Failed to publish %s: %v", routingKey, err)
		return err
	}
	return nil
}

// Close shuts down RabbitMQ resources gracefully.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
