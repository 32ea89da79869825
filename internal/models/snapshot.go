package models

import "time"

// BookLevel is one aggregated price level of an L2 view.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  int64   `json:"size"`
}

// BookSnapshot is a bounded-depth L2 view of the book. Optional prices are
// nil when the corresponding side (or both) is empty. Individual order
// identities are never exposed here.
type BookSnapshot struct {
	Timestamp time.Time   `json:"timestamp"`
	BestBid   *float64    `json:"best_bid"`
	BestAsk   *float64    `json:"best_ask"`
	Mid       *float64    `json:"mid"`
	Spread    *float64    `json:"spread"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
}
