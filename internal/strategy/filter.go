package strategy

import (
	"crypto-trading-engine/internal/fees"
	"crypto-trading-engine/internal/market"
	"crypto-trading-engine/internal/risk"
)

// ProfitabilityFilter drops signals that would not survive trading fees.
// Aggressive and smart signals were already fee-gated by their generator,
// so they only need a positive estimate; baseline signals get sized at the
// adaptive leverage and checked against a 1% favorable move.
type ProfitabilityFilter struct {
	fees     *fees.Calculator
	analyzer *market.Analyzer
	sizer    *risk.AdaptiveLeverageSizer
}

// NewProfitabilityFilter creates a filter.
func NewProfitabilityFilter(calc *fees.Calculator, analyzer *market.Analyzer, sizer *risk.AdaptiveLeverageSizer) *ProfitabilityFilter {
	return &ProfitabilityFilter{fees: calc, analyzer: analyzer, sizer: sizer}
}

// Filter applies the minimum-confidence gate and the per-tier profitability
// check, preserving the input order of survivors.
func (f *ProfitabilityFilter) Filter(signals []Signal, history []market.PricePoint, minConfidence float64) []Signal {
	var kept []Signal
	for _, s := range signals {
		if s.Confidence < minConfidence {
			continue
		}
		if f.isProfitable(s, history) {
			kept = append(kept, s)
		}
	}
	return kept
}

func (f *ProfitabilityFilter) isProfitable(s Signal, history []market.PricePoint) bool {
	if s.HasProfitEstimate() {
		return s.ExpectedProfit > 0
	}

	analysis := f.analyzer.Analyze(history)
	leverage := f.sizer.CalculateOptimalLeverage(s.Confidence, analysis)
	size := f.sizer.CalculateTradeSize(s.Confidence, analysis, s.Price, leverage)

	exitPrice := s.Price * 0.99
	if s.Side.IsLong() {
		exitPrice = s.Price * 1.01
	}

	return f.fees.IsProfitable(s.Price, exitPrice, size.Quantity, float64(leverage), s.Side.IsLong(), 0)
}
