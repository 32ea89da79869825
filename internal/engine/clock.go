package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock supplies fill and snapshot timestamps. The engine never reads
// wall-clock time directly, so tests can pin time to a fixed sequence.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used by default.
func SystemClock() Clock { return systemClock{} }

// TradeIDSource generates trade ids. Both fills of one trade share a single
// id drawn from this source.
type TradeIDSource interface {
	Next() string
}

type uuidTradeIDs struct{}

func (uuidTradeIDs) Next() string { return uuid.New().String() }

// UUIDTradeIDs returns the default random trade-id source.
func UUIDTradeIDs() TradeIDSource { return uuidTradeIDs{} }

// SequenceTradeIDs is a deterministic counter-backed source for tests and
// simulations. Not safe for use outside the book's lock.
type SequenceTradeIDs struct {
	prefix string
	next   uint64
}

func NewSequenceTradeIDs(prefix string) *SequenceTradeIDs {
	return &SequenceTradeIDs{prefix: prefix}
}

func (s *SequenceTradeIDs) Next() string {
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next)
}
