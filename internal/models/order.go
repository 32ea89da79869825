package models

import (
	"errors"
	"time"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type OrderType string

const (
	Limit  OrderType = "limit"
	Market OrderType = "market"
)

type Status string

const (
	Pending   Status = "pending"
	Active    Status = "active"
	Partial   Status = "partially_filled"
	Filled    Status = "filled"
	Cancelled Status = "cancelled"
)

// Order is the authoritative record of a submitted order. Remaining is the
// single source of truth for unfilled quantity; the book's price-level queues
// hold only order-id references.
type Order struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Side      Side      `json:"side"`
	Type      OrderType `json:"type"`
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	Remaining int64     `json:"remaining"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// FilledSize returns the executed quantity of the order.
func (o *Order) FilledSize() int64 {
	return o.Size - o.Remaining
}

// IsTerminal reports whether the order can no longer be mutated.
func (o *Order) IsTerminal() bool {
	return o.Status == Filled || o.Status == Cancelled
}

func (o *Order) Validate() error {
	if o.ClientID == "" {
		return errors.New("client_id is required")
	}
	if !o.Side.IsValid() {
		return errors.New("side must be 'buy' or 'sell'")
	}
	if !o.Type.IsValid() {
		return errors.New("type must be 'limit' or 'market'")
	}
	if o.Size <= 0 {
		return errors.New("size must be greater than 0")
	}
	if o.Type == Limit && o.Price <= 0 {
		return errors.New("price must be greater than 0")
	}
	if o.Remaining < 0 {
		return errors.New("remaining size cannot be negative")
	}
	if o.Remaining > o.Size {
		return errors.New("remaining size cannot exceed total size")
	}
	if o.Status != "" && !o.Status.IsValid() {
		return errors.New("unrecognized status")
	}
	return nil
}

func (s Side) IsValid() bool {
	return s == Buy || s == Sell
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (t OrderType) IsValid() bool {
	return t == Limit || t == Market
}

func (st Status) IsValid() bool {
	return st == Pending || st == Active || st == Partial || st == Filled || st == Cancelled
}
