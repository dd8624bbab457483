package strategy

import (
	"fmt"
	"math"
	"sort"

	"crypto-trading-engine/internal/fees"
	"crypto-trading-engine/internal/market"
	"crypto-trading-engine/internal/regime"
)

// SmartGenerator adapts its entries to the detected market regime: grid and
// extreme-reversion trades in ranges, pullback and strong-direct entries in
// trends, immediate high-leverage entries on breakouts and impulses. Every
// smart signal carries the regime plus pre-computed leverage and size.
type SmartGenerator struct {
	fees     *fees.Calculator
	detector *regime.Detector
}

// NewSmartGenerator creates a smart generator.
func NewSmartGenerator(calc *fees.Calculator, detector *regime.Detector) *SmartGenerator {
	return &SmartGenerator{fees: calc, detector: detector}
}

// Generate detects the regime and dispatches to the matching entry logic.
// Keeps only fee-positive candidates with risk/reward at least 1.5, sorted
// by urgency.
func (g *SmartGenerator) Generate(instrument string, history []market.PricePoint) []Signal {
	if len(history) < 20 {
		return nil
	}

	analysis := g.detector.Detect(history)

	var signals []Signal
	switch analysis.Regime {
	case regime.Ranging:
		signals = g.tradeRange(instrument, history, analysis)
	case regime.TrendingUp, regime.TrendingDown:
		signals = g.tradeTrend(instrument, history, analysis)
	case regime.Breakout:
		signals = g.tradeBreakout(instrument, history, analysis)
	case regime.StrongImpulse:
		signals = g.tradeImpulse(instrument, history, analysis)
	}

	kept := signals[:0]
	for _, s := range signals {
		if s.ExpectedProfit > 0 && s.RiskReward >= 1.5 {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Urgency > kept[j].Urgency })
	return kept
}

// tradeRange places grid entries across the detected range and reversion
// entries off its extremes. Moderate leverage.
func (g *SmartGenerator) tradeRange(instrument string, history []market.PricePoint, ra regime.Analysis) []Signal {
	if ra.RangeTop == 0 || ra.RangeBottom == 0 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	rangeSize := ra.RangeTop - ra.RangeBottom
	rangeMid := (ra.RangeTop + ra.RangeBottom) / 2
	if rangeSize <= 0 {
		return nil
	}
	positionInRange := (current - ra.RangeBottom) / rangeSize

	var signals []Signal

	const gridLevels = 7
	gridStep := rangeSize / gridLevels

	for i := 0; i <= gridLevels; i++ {
		gridPrice := ra.RangeBottom + float64(i)*gridStep
		distance := math.Abs((current-gridPrice)/current) * 100
		if distance >= 0.15 {
			continue
		}

		side := SideShort
		target := gridPrice - gridStep*1.5
		if positionInRange < 0.5 {
			side = SideLong
			target = gridPrice + gridStep*1.5
		}

		expectedMove := math.Abs((target-current)/current) * 100
		const leverage = 3
		const quantity = 0.001
		calc := g.fees.Calculate(current, target, quantity, leverage, side.IsLong(), false, 0)

		if calc.NetPnl > 0 && expectedMove > 0.2 {
			signals = append(signals, Signal{
				ID:              newSignalID(fmt.Sprintf("range-grid-%s", side)),
				Instrument:      instrument,
				Side:            side,
				Price:           current,
				Timestamp:       ts,
				Strategy:        TypeMeanReversion,
				Confidence:      70 + ra.Confidence*0.3,
				Reason:          fmt.Sprintf("grid %s in range, level %d/%d", side, i, gridLevels),
				Tier:            TierSmart,
				Regime:          regime.Ranging,
				OptimalLeverage: leverage,
				OptimalSize:     quantity,
				ExpectedProfit:  calc.NetPnl,
				RiskReward:      expectedMove / 0.3,
				Urgency:         60,
			})
		}
	}

	// Reversion off the range extremes toward the midpoint.
	distanceToTop := (ra.RangeTop - current) / ra.RangeTop * 100
	distanceToBottom := (current - ra.RangeBottom) / ra.RangeBottom * 100

	if distanceToTop < 1 {
		const leverage = 4
		const quantity = 0.0015
		calc := g.fees.Calculate(current, rangeMid, quantity, leverage, false, false, 0)
		if calc.NetPnl > 0 {
			signals = append(signals, Signal{
				ID:              newSignalID("range-reversion-short"),
				Instrument:      instrument,
				Side:            SideShort,
				Price:           current,
				Timestamp:       ts,
				Strategy:        TypeMeanReversion,
				Confidence:      80,
				Reason:          "reversion from range resistance",
				Tier:            TierSmart,
				Regime:          regime.Ranging,
				OptimalLeverage: leverage,
				OptimalSize:     quantity,
				ExpectedProfit:  calc.NetPnl,
				RiskReward:      distanceToTop / 0.5,
				Urgency:         75,
			})
		}
	}

	if distanceToBottom < 1 {
		const leverage = 4
		const quantity = 0.0015
		calc := g.fees.Calculate(current, rangeMid, quantity, leverage, true, false, 0)
		if calc.NetPnl > 0 {
			signals = append(signals, Signal{
				ID:              newSignalID("range-reversion-long"),
				Instrument:      instrument,
				Side:            SideLong,
				Price:           current,
				Timestamp:       ts,
				Strategy:        TypeMeanReversion,
				Confidence:      80,
				Reason:          "reversion from range support",
				Tier:            TierSmart,
				Regime:          regime.Ranging,
				OptimalLeverage: leverage,
				OptimalSize:     quantity,
				ExpectedProfit:  calc.NetPnl,
				RiskReward:      distanceToBottom / 0.5,
				Urgency:         75,
			})
		}
	}

	return signals
}

// tradeTrend enters on pullbacks to SMA20, or directly when the trend is
// very strong. Leverage scales with trend strength.
func (g *SmartGenerator) tradeTrend(instrument string, history []market.PricePoint, ra regime.Analysis) []Signal {
	if ra.TrendDirection == "" || ra.TrendDirection == regime.DirectionNeutral {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	side := SideShort
	if ra.TrendDirection == regime.DirectionUp {
		side = SideLong
	}

	sma20 := SMA(prices, 20)
	distanceToSMA := (current - sma20) / sma20 * 100

	isPullback := distanceToSMA > -0.5 && distanceToSMA < 1
	if side.IsLong() {
		isPullback = distanceToSMA < 0.5 && distanceToSMA > -1
	}

	var signals []Signal

	if isPullback {
		target := current * (1 - ra.Strength*0.02)
		if side.IsLong() {
			target = current * (1 + ra.Strength*0.02)
		}
		expectedMove := math.Abs((target-current)/current) * 100
		leverage := 5 + ra.Strength*5 // 5x-10x by strength
		const quantity = 0.001

		calc := g.fees.Calculate(current, target, quantity, leverage, side.IsLong(), false, 0)
		if calc.NetPnl > 0 {
			signals = append(signals, Signal{
				ID:              newSignalID(fmt.Sprintf("trend-%s", side)),
				Instrument:      instrument,
				Side:            side,
				Price:           current,
				Timestamp:       ts,
				Strategy:        TypeMomentum,
				Confidence:      75 + ra.Confidence*0.2,
				Reason:          fmt.Sprintf("pullback in %s trend, target %.2f%%", ra.TrendDirection, expectedMove),
				Tier:            TierSmart,
				Regime:          ra.Regime,
				OptimalLeverage: int(math.Round(leverage)),
				OptimalSize:     quantity,
				ExpectedProfit:  calc.NetPnl,
				RiskReward:      expectedMove / 0.8,
				Urgency:         70,
			})
		}
	}

	if ra.Strength > 0.8 && ra.Confidence > 80 {
		target := current * 0.985
		if side.IsLong() {
			target = current * 1.015
		}
		leverage := 8 + ra.Strength*4 // 8x-12x
		const quantity = 0.0015

		calc := g.fees.Calculate(current, target, quantity, leverage, side.IsLong(), false, 0)
		if calc.NetPnl > 0 {
			signals = append(signals, Signal{
				ID:              newSignalID(fmt.Sprintf("trend-strong-%s", side)),
				Instrument:      instrument,
				Side:            side,
				Price:           current,
				Timestamp:       ts,
				Strategy:        TypeMomentum,
				Confidence:      85,
				Reason:          fmt.Sprintf("strong %s trend, direct entry", ra.TrendDirection),
				Tier:            TierSmart,
				Regime:          ra.Regime,
				OptimalLeverage: int(math.Round(leverage)),
				OptimalSize:     quantity,
				ExpectedProfit:  calc.NetPnl,
				RiskReward:      1.5 / 0.5,
				Urgency:         85,
			})
		}
	}

	return signals
}

// tradeBreakout enters immediately in the breakout direction with high
// leverage, targeting a move proportional to breakout strength.
func (g *SmartGenerator) tradeBreakout(instrument string, history []market.PricePoint, ra regime.Analysis) []Signal {
	if ra.TrendDirection == "" || ra.TrendDirection == regime.DirectionNeutral {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	side := SideShort
	target := current * (1 - ra.Strength*0.03)
	if ra.TrendDirection == regime.DirectionUp {
		side = SideLong
		target = current * (1 + ra.Strength*0.03)
	}

	expectedMove := math.Abs((target-current)/current) * 100
	leverage := 10 + ra.Strength*5 // 10x-15x
	const quantity = 0.002

	calc := g.fees.Calculate(current, target, quantity, leverage, side.IsLong(), false, 0)
	if calc.NetPnl <= 0 || expectedMove <= 1 {
		return nil
	}

	return []Signal{{
		ID:              newSignalID(fmt.Sprintf("breakout-%s", side)),
		Instrument:      instrument,
		Side:            side,
		Price:           current,
		Timestamp:       ts,
		Strategy:        TypeBreakout,
		Confidence:      80 + ra.Confidence*0.15,
		Reason:          fmt.Sprintf("%s breakout, strength %.0f%%", ra.TrendDirection, ra.Strength*100),
		Tier:            TierSmart,
		Regime:          regime.Breakout,
		OptimalLeverage: int(math.Round(leverage)),
		OptimalSize:     quantity,
		ExpectedProfit:  calc.NetPnl,
		RiskReward:      expectedMove / 0.8,
		Urgency:         90,
	}}
}

// tradeImpulse is the maximum-conviction entry: highest leverage and size,
// targeting a move proportional to impulse strength.
func (g *SmartGenerator) tradeImpulse(instrument string, history []market.PricePoint, ra regime.Analysis) []Signal {
	if ra.TrendDirection == "" || ra.ImpulseStrength == 0 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	side := SideShort
	target := current * (1 - ra.ImpulseStrength*0.04)
	if ra.TrendDirection == regime.DirectionUp {
		side = SideLong
		target = current * (1 + ra.ImpulseStrength*0.04)
	}

	expectedMove := math.Abs((target-current)/current) * 100
	leverage := 15 + ra.ImpulseStrength*5 // 15x-20x
	const quantity = 0.0025

	calc := g.fees.Calculate(current, target, quantity, leverage, side.IsLong(), false, 0)
	if calc.NetPnl <= 0 || expectedMove <= 2 {
		return nil
	}

	return []Signal{{
		ID:              newSignalID(fmt.Sprintf("impulse-%s", side)),
		Instrument:      instrument,
		Side:            side,
		Price:           current,
		Timestamp:       ts,
		Strategy:        TypeMomentum,
		Confidence:      math.Min(100, 90+ra.ImpulseStrength*10),
		Reason:          fmt.Sprintf("strong %s impulse, strength %.0f%%", ra.TrendDirection, ra.ImpulseStrength*100),
		Tier:            TierSmart,
		Regime:          regime.StrongImpulse,
		OptimalLeverage: int(math.Round(leverage)),
		OptimalSize:     quantity,
		ExpectedProfit:  calc.NetPnl,
		RiskReward:      expectedMove / 1,
		Urgency:         95,
	}}
}
