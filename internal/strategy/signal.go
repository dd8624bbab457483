package strategy

import (
	"fmt"

	"github.com/google/uuid"

	"crypto-trading-engine/internal/regime"
)

// Side of a prospective trade.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// IsLong reports whether the side is long.
func (s Side) IsLong() bool { return s == SideLong }

// Type names the strategy family a signal originates from.
type Type string

const (
	TypeMomentum      Type = "momentum"
	TypeRSI           Type = "rsi"
	TypeMeanReversion Type = "mean_reversion"
	TypeBreakout      Type = "breakout"
)

// Tier discriminates signal variants. Baseline signals carry no
// profitability estimate and are checked downstream; aggressive and smart
// signals are fee-gated by their generator and carry expected profit,
// risk/reward and urgency; smart signals additionally carry the detected
// regime and pre-computed leverage/size.
type Tier string

const (
	TierBaseline   Tier = "baseline"
	TierAggressive Tier = "aggressive"
	TierSmart      Tier = "smart"
)

// Signal is a proposed trade. Value object: never mutated after creation.
type Signal struct {
	ID         string  `json:"id"`
	Instrument string  `json:"instrument"`
	Side       Side    `json:"side"`
	Price      float64 `json:"price"`
	Timestamp  int64   `json:"timestamp"`
	Strategy   Type    `json:"strategy"`
	Confidence float64 `json:"confidence"` // 0-100
	Reason     string  `json:"reason"`
	Tier       Tier    `json:"tier"`

	// Aggressive and smart tiers only.
	ExpectedProfit float64 `json:"expected_profit,omitempty"` // net of fees, currency units
	RiskReward     float64 `json:"risk_reward,omitempty"`
	Urgency        float64 `json:"urgency,omitempty"` // 0-100

	// Smart tier only.
	Regime          regime.Regime `json:"regime,omitempty"`
	OptimalLeverage int           `json:"optimal_leverage,omitempty"`
	OptimalSize     float64       `json:"optimal_size,omitempty"`
}

// HasProfitEstimate reports whether the generating tier pre-computed a net
// profit estimate for this signal.
func (s Signal) HasProfitEstimate() bool {
	return s.Tier == TierAggressive || s.Tier == TierSmart
}

// HasOptimalValues reports whether the signal carries pre-computed leverage
// and size.
func (s Signal) HasOptimalValues() bool {
	return s.Tier == TierSmart && s.OptimalLeverage > 0 && s.OptimalSize > 0
}

func newSignalID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
