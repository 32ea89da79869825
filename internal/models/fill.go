package models

import (
	"errors"
	"time"
)

// Fill records one execution for one order. Every trade produces exactly two
// fills, taker and maker, sharing one trade id, price, size and timestamp,
// with opposite sides.
type Fill struct {
	TradeID   string    `json:"trade_id"`
	OrderID   string    `json:"order_id"`
	ClientID  string    `json:"client_id"`
	Side      Side      `json:"side"`
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

func (f *Fill) Validate() error {
	if f.TradeID == "" {
		return errors.New("trade_id is required")
	}
	if f.OrderID == "" {
		return errors.New("order_id is required")
	}
	if f.Price <= 0 {
		return errors.New("price must be greater than 0")
	}
	if f.Size <= 0 {
		return errors.New("size must be greater than 0")
	}
	return nil
}
