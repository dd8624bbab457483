package market

import (
	"sync"
)

// DefaultHistorySize is the rolling window capacity per instrument.
const DefaultHistorySize = 100

// PricePoint is a single observed price for an instrument.
// Immutable once recorded.
type PricePoint struct {
	Instrument string  `json:"instrument"`
	Price      float64 `json:"price"`
	Timestamp  int64   `json:"timestamp"` // unix milliseconds
}

// HistoryStore keeps a fixed-capacity rolling price series per instrument.
// Oldest points are evicted FIFO once the window is full. Timestamps are
// kept non-decreasing: an out-of-order point is clamped to the last
// recorded timestamp rather than rejected.
type HistoryStore struct {
	mu       sync.RWMutex
	capacity int
	series   map[string][]PricePoint
}

// NewHistoryStore creates a store with the given window capacity.
// A capacity <= 0 falls back to DefaultHistorySize.
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &HistoryStore{
		capacity: capacity,
		series:   make(map[string][]PricePoint),
	}
}

// Add appends a price observation for an instrument, evicting the oldest
// point beyond capacity.
func (hs *HistoryStore) Add(instrument string, price float64, timestamp int64) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	history := hs.series[instrument]
	if n := len(history); n > 0 && timestamp < history[n-1].Timestamp {
		timestamp = history[n-1].Timestamp
	}

	history = append(history, PricePoint{
		Instrument: instrument,
		Price:      price,
		Timestamp:  timestamp,
	})
	if len(history) > hs.capacity {
		history = history[len(history)-hs.capacity:]
	}
	hs.series[instrument] = history
}

// History returns a copy of the current window for an instrument.
// Unknown instruments return an empty slice.
func (hs *HistoryStore) History(instrument string) []PricePoint {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	history := hs.series[instrument]
	out := make([]PricePoint, len(history))
	copy(out, history)
	return out
}

// Len returns the number of points currently held for an instrument.
func (hs *HistoryStore) Len(instrument string) int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return len(hs.series[instrument])
}

// Prices extracts the price values from a window, oldest first.
func Prices(history []PricePoint) []float64 {
	prices := make([]float64, len(history))
	for i, p := range history {
		prices[i] = p.Price
	}
	return prices
}
