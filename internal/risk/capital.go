package risk

import "sync"

// CapitalConfig controls how the ledger allocates and reinvests capital.
type CapitalConfig struct {
	InitialCapital  float64 `json:"initial_capital"`
	MaxRiskPerTrade float64 `json:"max_risk_per_trade"` // percent of capital
	MinTradeSize    float64 `json:"min_trade_size"`
	MaxTradeSize    float64 `json:"max_trade_size"`
	Compounding     bool    `json:"compounding"`
}

// DefaultCapitalConfig returns the standard small-account setup.
func DefaultCapitalConfig() CapitalConfig {
	return CapitalConfig{
		InitialCapital:  10,
		MaxRiskPerTrade: 3,
		MinTradeSize:    0.0001,
		MaxTradeSize:    0.02,
		Compounding:     true,
	}
}

// CapitalStats is a snapshot of the ledger.
type CapitalStats struct {
	CurrentCapital     float64 `json:"current_capital"`
	InitialCapital     float64 `json:"initial_capital"`
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
}

// CapitalLedger tracks available trading capital across closed positions.
// In compounding mode every realized PnL is applied; otherwise only losses
// are, so wins never grow the tradable base.
type CapitalLedger struct {
	mu      sync.RWMutex
	config  CapitalConfig
	capital float64
}

// NewCapitalLedger creates a ledger seeded with the configured initial
// capital.
func NewCapitalLedger(config CapitalConfig) *CapitalLedger {
	return &CapitalLedger{config: config, capital: config.InitialCapital}
}

// AvailableCapital returns the capital currently tradable.
func (l *CapitalLedger) AvailableCapital() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.capital
}

// UpdateCapital applies a realized PnL according to the compounding mode.
func (l *CapitalLedger) UpdateCapital(pnl float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.config.Compounding || pnl < 0 {
		l.capital += pnl
	}
}

// SetInitialCapital resets both the baseline and the current capital.
func (l *CapitalLedger) SetInitialCapital(amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.InitialCapital = amount
	l.capital = amount
}

// Stats returns the current capital snapshot.
func (l *CapitalLedger) Stats() CapitalStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stats := CapitalStats{
		CurrentCapital: l.capital,
		InitialCapital: l.config.InitialCapital,
		TotalReturn:    l.capital - l.config.InitialCapital,
	}
	if l.config.InitialCapital != 0 {
		stats.TotalReturnPercent = stats.TotalReturn / l.config.InitialCapital * 100
	}
	return stats
}

// Config returns a copy of the ledger configuration.
func (l *CapitalLedger) Config() CapitalConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}
