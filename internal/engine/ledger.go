package engine

import "lob-engine/internal/models"

// fillLedger is the append-only trade history. Fills are never mutated after
// append; per-client queries replay them in original chronological order.
type fillLedger struct {
	fills    []models.Fill
	byClient map[string][]int
}

func newFillLedger() *fillLedger {
	return &fillLedger{byClient: make(map[string][]int)}
}

func (l *fillLedger) append(f models.Fill) {
	l.byClient[f.ClientID] = append(l.byClient[f.ClientID], len(l.fills))
	l.fills = append(l.fills, f)
}

// forClient returns copies of all fills where the client was taker or maker.
func (l *fillLedger) forClient(clientID string) []models.Fill {
	idx := l.byClient[clientID]
	out := make([]models.Fill, 0, len(idx))
	for _, i := range idx {
		out = append(out, l.fills[i])
	}
	return out
}

func (l *fillLedger) size() int { return len(l.fills) }
