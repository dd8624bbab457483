package risk

import (
	"math"

	"crypto-trading-engine/internal/market"
)

// LeverageConfig bounds and weights the adaptive leverage calculation.
type LeverageConfig struct {
	MinLeverage           int     `json:"min_leverage"`
	MaxLeverage           int     `json:"max_leverage"`
	BaseLeverage          int     `json:"base_leverage"`
	VolatilityMultiplier  float64 `json:"volatility_multiplier"`
	ConfidenceMultiplier  float64 `json:"confidence_multiplier"`
	PerformanceMultiplier float64 `json:"performance_multiplier"`
}

// DefaultLeverageConfig weighs confidence heaviest, with volatility and
// recent performance secondary.
func DefaultLeverageConfig() LeverageConfig {
	return LeverageConfig{
		MinLeverage:           3,
		MaxLeverage:           20,
		BaseLeverage:          8,
		VolatilityMultiplier:  0.25,
		ConfidenceMultiplier:  0.5,
		PerformanceMultiplier: 0.25,
	}
}

// TradeSize is the sized allocation for one entry.
type TradeSize struct {
	Quantity         float64 `json:"quantity"`
	CapitalAllocated float64 `json:"capital_allocated"`
	RiskAmount       float64 `json:"risk_amount"`
}

// AdaptiveLeverageSizer converts signal confidence plus market conditions
// into a leverage in [MinLeverage, MaxLeverage] and a position size bounded
// by the capital ledger's trade limits.
type AdaptiveLeverageSizer struct {
	config LeverageConfig
	ledger *CapitalLedger
}

// NewAdaptiveLeverageSizer creates a sizer drawing capital from the ledger.
func NewAdaptiveLeverageSizer(config LeverageConfig, ledger *CapitalLedger) *AdaptiveLeverageSizer {
	return &AdaptiveLeverageSizer{config: config, ledger: ledger}
}

// CalculateOptimalLeverage scores the market on confidence, calm, trend and
// recent performance, then maps the score onto the configured leverage
// range. Higher confidence and lower volatility push leverage up.
func (s *AdaptiveLeverageSizer) CalculateOptimalLeverage(confidence float64, analysis market.Analysis) int {
	confidenceScore := confidence / 100
	volatilityScore := 1 - analysis.Volatility
	trendScore := analysis.TrendStrength
	performanceScore := (analysis.RecentPerformance + 1) / 2

	score := confidenceScore*s.config.ConfidenceMultiplier +
		volatilityScore*s.config.VolatilityMultiplier +
		trendScore*0.2 +
		performanceScore*s.config.PerformanceMultiplier

	leverageRange := float64(s.config.MaxLeverage - s.config.MinLeverage)
	calculated := float64(s.config.MinLeverage) + score*leverageRange

	leverage := int(math.Round(calculated))
	if leverage < s.config.MinLeverage {
		leverage = s.config.MinLeverage
	}
	if leverage > s.config.MaxLeverage {
		leverage = s.config.MaxLeverage
	}
	return leverage
}

// CalculateTradeSize allocates capital to one entry. The risk budget starts
// at MaxRiskPerTrade percent of available capital, scaled by confidence,
// volatility and recent performance, then converted to a quantity assuming
// a 5% stop distance and clamped to the configured trade-size bounds.
func (s *AdaptiveLeverageSizer) CalculateTradeSize(confidence float64, analysis market.Analysis, currentPrice float64, leverage int) TradeSize {
	capCfg := s.ledger.Config()
	available := s.ledger.AvailableCapital()

	baseRisk := available * capCfg.MaxRiskPerTrade / 100

	confidenceMultiplier := confidence / 100
	adjustedRisk := baseRisk * (0.5 + confidenceMultiplier*0.5)

	volatilityMultiplier := 1 - analysis.Volatility*0.3
	finalRisk := adjustedRisk * volatilityMultiplier

	performanceMultiplier := 0.7 + (analysis.RecentPerformance+1)/2*0.3
	riskAmount := finalRisk * performanceMultiplier

	// Quantity derived from the risk budget at an assumed 5% stop; the
	// protection engine tightens the actual stop later.
	const stopLossPercent = 5
	positionSize := riskAmount / (stopLossPercent / 100.0)
	leveragedSize := positionSize * float64(leverage)
	quantity := leveragedSize / currentPrice

	if quantity < capCfg.MinTradeSize {
		quantity = capCfg.MinTradeSize
	}
	if quantity > capCfg.MaxTradeSize {
		quantity = capCfg.MaxTradeSize
	}

	return TradeSize{
		Quantity:         quantity,
		CapitalAllocated: quantity * currentPrice / float64(leverage),
		RiskAmount:       riskAmount,
	}
}
