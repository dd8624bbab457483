package bot

import (
	"time"

	"crypto-trading-engine/internal/risk"
	"crypto-trading-engine/internal/strategy"
)

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position is a simulated leveraged position managed by the engine.
type Position struct {
	ID               string                `json:"id"`
	Instrument       string                `json:"instrument"`
	Side             strategy.Side         `json:"side"`
	EntryPrice       float64               `json:"entry_price"`
	CurrentPrice     float64               `json:"current_price"`
	Quantity         float64               `json:"quantity"`
	Leverage         int                   `json:"leverage"`
	CapitalAllocated float64               `json:"capital_allocated"`
	Pnl              float64               `json:"pnl"`
	PnlPercent       float64               `json:"pnl_percent"`
	Levels           risk.ProtectionLevels `json:"levels"`
	Status           PositionStatus        `json:"status"`
	StrategyName     string                `json:"strategy_name"`
	SignalID         string                `json:"signal_id"`
	CreatedAt        time.Time             `json:"created_at"`
	ClosedAt         time.Time             `json:"closed_at,omitempty"`
	CloseReason      risk.CloseReason      `json:"close_reason,omitempty"`
	NetPnl           float64               `json:"net_pnl"` // realized, after fees; set on close
}

// HoursOpen returns how long the position has been held, for funding fees.
func (p *Position) HoursOpen(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours()
}

// TradingStrategy is a registry entry binding an instrument to a baseline
// strategy type and a confidence gate. The smart and aggressive tiers run
// for every enabled strategy's instrument regardless of Type.
type TradingStrategy struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Instrument    string        `json:"instrument"`
	Type          strategy.Type `json:"type"`
	Enabled       bool          `json:"enabled"`
	MinConfidence float64       `json:"min_confidence"` // 0-100
}

// Status is a point-in-time summary of the engine.
type Status struct {
	IsRunning        bool      `json:"is_running"`
	ActiveStrategies int       `json:"active_strategies"`
	ActivePositions  int       `json:"active_positions"`
	TotalPnl         float64   `json:"total_pnl"`
	TotalPnlPercent  float64   `json:"total_pnl_percent"`
	CurrentCapital   float64   `json:"current_capital"`
	SignalCount      int       `json:"signal_count"`
	LastUpdate       time.Time `json:"last_update"`
}
