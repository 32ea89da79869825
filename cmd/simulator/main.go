package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

// Synthetic order-flow generator. Feeds the book through the HTTP API with a
// random-walk mix of limit and market orders so the matching path, WebSocket
// feed and event pipeline can be exercised without real traders.

type orderRequest struct {
	ClientID string  `json:"client_id"`
	Side     string  `json:"side"`
	Type     string  `json:"type"`
	Price    float64 `json:"price,omitempty"`
	Size     int64   `json:"size"`
}

type orderResponse struct {
	Order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"order"`
	Fills []struct {
		Price float64 `json:"price"`
		Size  int64   `json:"size"`
	} `json:"fills"`
}

func main() {
	var (
		target    = flag.String("target", "http://localhost:8080", "order book API base URL")
		rate      = flag.Duration("rate", 100*time.Millisecond, "delay between orders")
		count     = flag.Int("count", 0, "number of orders to send (0 = run forever)")
		mid       = flag.Float64("mid", 100.0, "starting mid price of the random walk")
		tick      = flag.Float64("tick", 0.01, "price tick")
		marketPct = flag.Float64("market-pct", 0.2, "fraction of market orders")
		cancelPct = flag.Float64("cancel-pct", 0.1, "fraction of resting orders cancelled")
		clients   = flag.Int("clients", 5, "number of simulated clients")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	httpClient := &http.Client{Timeout: 5 * time.Second}

	var resting []string
	sent, trades := 0, 0
	walk := *mid

	log.Printf("🚀 Simulator feeding %s (seed=%d)", *target, *seed)

	for *count == 0 || sent < *count {
		// Mid drifts one tick at a time.
		walk += float64(rng.Intn(3)-1) * *tick
		if walk < *tick {
			walk = *tick
		}

		req := orderRequest{
			ClientID: fmt.Sprintf("sim-%d", rng.Intn(*clients)),
			Size:     int64(rng.Intn(20) + 1),
		}
		if rng.Intn(2) == 0 {
			req.Side = "buy"
		} else {
			req.Side = "sell"
		}
		if rng.Float64() < *marketPct {
			req.Type = "market"
		} else {
			req.Type = "limit"
			// Quote a few ticks away from mid, crossing now and then.
			offset := float64(rng.Intn(10)-3) * *tick
			if req.Side == "buy" {
				req.Price = walk - offset
			} else {
				req.Price = walk + offset
			}
			if req.Price < *tick {
				req.Price = *tick
			}
		}

		resp, err := placeOrder(httpClient, *target, req)
		if err != nil {
			log.Printf("⚠️ place failed: %v", err)
			time.Sleep(*rate)
			continue
		}
		sent++
		trades += len(resp.Fills)
		if resp.Order.Status == "active" || resp.Order.Status == "partially_filled" {
			resting = append(resting, resp.Order.ID)
		}

		// Occasionally pull a resting order.
		if len(resting) > 0 && rng.Float64() < *cancelPct {
			i := rng.Intn(len(resting))
			cancelOrder(httpClient, *target, resting[i])
			resting = append(resting[:i], resting[i+1:]...)
		}

		if sent%100 == 0 {
			log.Printf("📊 sent=%d trades=%d resting=%d mid≈%.2f", sent, trades, len(resting), walk)
		}
		time.Sleep(*rate)
	}

	log.Printf("✅ Done: sent=%d trades=%d", sent, trades)
}

func placeOrder(client *http.Client, target string, req orderRequest) (*orderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := client.Post(target+"/api/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func cancelOrder(client *http.Client, target, orderID string) {
	req, err := http.NewRequest(http.MethodDelete, target+"/api/orders/"+orderID, nil)
	if err != nil {
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("⚠️ cancel failed: %v", err)
		return
	}
	resp.Body.Close()
}
