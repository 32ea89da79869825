package engine

import "lob-engine/internal/models"

// match walks the opposite side of the book for an incoming order and
// returns the taker-side fills. Caller holds the write lock.
//
// A market order crosses until the opposite side is exhausted or the order is
// filled. A limit order additionally stops as soon as the best remaining
// opposite price no longer satisfies its limit; the check is re-run at every
// level. Within a level resting orders are consumed strictly in FIFO arrival
// order, and trades always execute at the maker's price.
func (b *LimitOrderBook) match(order *models.Order) []models.Fill {
	opposite := b.sideFor(order.Side.Opposite())

	var fills []models.Fill
	for order.Remaining > 0 {
		lvl := opposite.best()
		if lvl == nil {
			break
		}
		if order.Type == models.Limit && !crosses(order, lvl.price) {
			break
		}

		for len(lvl.queue) > 0 && order.Remaining > 0 {
			maker := b.orders[lvl.queue[0]]

			size := order.Remaining
			if maker.Remaining < size {
				size = maker.Remaining
			}

			tradeID := b.tradeIDs.Next()
			ts := b.clock.Now()
			takerFill := models.Fill{
				TradeID:   tradeID,
				OrderID:   order.ID,
				ClientID:  order.ClientID,
				Side:      order.Side,
				Price:     lvl.price,
				Size:      size,
				Timestamp: ts,
			}
			makerFill := models.Fill{
				TradeID:   tradeID,
				OrderID:   maker.ID,
				ClientID:  maker.ClientID,
				Side:      maker.Side,
				Price:     lvl.price,
				Size:      size,
				Timestamp: ts,
			}

			order.Remaining -= size
			maker.Remaining -= size
			if maker.Remaining == 0 {
				maker.Status = models.Filled
				lvl.queue = lvl.queue[1:]
			} else {
				// Partially consumed makers keep their place at the head.
				maker.Status = models.Partial
			}

			b.ledger.append(takerFill)
			b.ledger.append(makerFill)
			b.lastTradePrice = lvl.price
			b.lastTradeSize = size
			b.hasLastTrade = true

			fills = append(fills, takerFill)
			if b.onTrade != nil {
				b.onTrade(takerFill, makerFill)
			}
		}

		// Drained levels go before the next price is considered.
		if len(lvl.queue) == 0 {
			opposite.dropBest()
		}
	}

	return fills
}

// crosses reports whether a limit order may trade at levelPrice.
func crosses(order *models.Order, levelPrice float64) bool {
	if order.Side == models.Buy {
		return levelPrice <= order.Price
	}
	return levelPrice >= order.Price
}
