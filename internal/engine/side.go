package engine

import "sort"

// priceLevel is one price bucket holding resting order ids in strict FIFO
// arrival order. Sizes live in the registry only.
type priceLevel struct {
	price float64
	queue []string
}

// bookSide keeps price levels sorted best-first: descending for bids,
// ascending for asks. An empty level is removed as soon as its queue drains,
// so levels never holds a level with an empty queue.
type bookSide struct {
	bids   bool
	levels []*priceLevel
}

func newBookSide(bids bool) *bookSide {
	return &bookSide{bids: bids}
}

// better reports whether price a is more aggressive than b for this side.
func (s *bookSide) better(a, b float64) bool {
	if s.bids {
		return a > b
	}
	return a < b
}

// best returns the most aggressive level, or nil if the side is empty.
func (s *bookSide) best() *priceLevel {
	if len(s.levels) == 0 {
		return nil
	}
	return s.levels[0]
}

// level finds the insertion index for price and whether a level already
// exists there.
func (s *bookSide) level(price float64) (int, bool) {
	i := sort.Search(len(s.levels), func(i int) bool {
		return !s.better(s.levels[i].price, price)
	})
	if i < len(s.levels) && s.levels[i].price == price {
		return i, true
	}
	return i, false
}

// add appends orderID to the FIFO queue at price, creating the level if
// absent.
func (s *bookSide) add(price float64, orderID string) {
	i, ok := s.level(price)
	if ok {
		s.levels[i].queue = append(s.levels[i].queue, orderID)
		return
	}
	lvl := &priceLevel{price: price, queue: []string{orderID}}
	s.levels = append(s.levels, nil)
	copy(s.levels[i+1:], s.levels[i:])
	s.levels[i] = lvl
}

// remove deletes orderID from the level at price, dropping the level if it
// drains. A miss is a no-op.
func (s *bookSide) remove(price float64, orderID string) bool {
	i, ok := s.level(price)
	if !ok {
		return false
	}
	lvl := s.levels[i]
	for j, id := range lvl.queue {
		if id == orderID {
			lvl.queue = append(lvl.queue[:j], lvl.queue[j+1:]...)
			if len(lvl.queue) == 0 {
				s.dropLevel(i)
			}
			return true
		}
	}
	return false
}

// dropBest removes the most aggressive level outright.
func (s *bookSide) dropBest() {
	s.dropLevel(0)
}

func (s *bookSide) dropLevel(i int) {
	s.levels = append(s.levels[:i], s.levels[i+1:]...)
}
