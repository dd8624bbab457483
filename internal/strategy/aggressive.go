package strategy

import (
	"fmt"
	"math"
	"sort"

	"crypto-trading-engine/internal/fees"
	"crypto-trading-engine/internal/market"
)

// Probe values used by the aggressive tier's fee gates. The orchestrator
// re-checks profitability at the actually sized quantity before opening a
// position.
const (
	probeQuantity     = 0.001
	scalpLeverage     = 5
	gridLeverage      = 3
	momentumLeverage  = 8
	reversionLeverage = 5
)

// AggressiveGenerator produces scalping, grid, enhanced-momentum and
// aggressive mean-reversion signals. Every candidate must clear the fee
// model at its probe quantity/leverage or it is discarded.
type AggressiveGenerator struct {
	fees *fees.Calculator
}

// NewAggressiveGenerator creates an aggressive generator backed by the
// given fee calculator.
func NewAggressiveGenerator(calc *fees.Calculator) *AggressiveGenerator {
	return &AggressiveGenerator{fees: calc}
}

// Generate runs all aggressive strategies and returns the top candidates:
// fee-positive, risk/reward at least 1.5, sorted by urgency, capped at 10.
func (g *AggressiveGenerator) Generate(instrument string, history []market.PricePoint) []Signal {
	var signals []Signal
	signals = append(signals, g.scalping(instrument, history)...)
	signals = append(signals, g.grid(instrument, history)...)
	signals = append(signals, g.enhancedMomentum(instrument, history)...)
	signals = append(signals, g.aggressiveMeanReversion(instrument, history)...)

	kept := signals[:0]
	for _, s := range signals {
		if s.ExpectedProfit > 0 && s.RiskReward >= 1.5 {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Urgency > kept[j].Urgency })
	if len(kept) > 10 {
		kept = kept[:10]
	}
	return kept
}

// scalping looks for small consistent micro-moves over the last 2-5 points.
func (g *AggressiveGenerator) scalping(instrument string, history []market.PricePoint) []Signal {
	if len(history) < 10 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	var signals []Signal
	for i := 2; i <= 5; i++ {
		change := PercentChange(prices, i)

		if change > 0.1 && change < 0.8 {
			expectedProfit := current * 0.003 // target another 0.3%
			risk := current * 0.001          // stop 0.1%
			calc := g.fees.Calculate(current, current*1.003, probeQuantity, scalpLeverage, true, false, 0)
			if calc.NetPnl > 0 {
				signals = append(signals, Signal{
					ID:             newSignalID("scalping-long"),
					Instrument:     instrument,
					Side:           SideLong,
					Price:          current,
					Timestamp:      ts,
					Strategy:       TypeMomentum,
					Confidence:     60 + change*10,
					Reason:         fmt.Sprintf("bullish scalp: +%.3f%% over %d periods", change, i),
					Tier:           TierAggressive,
					ExpectedProfit: calc.NetPnl,
					RiskReward:     expectedProfit / risk,
					Urgency:        85,
				})
			}
		}

		if change < -0.1 && change > -0.8 {
			expectedProfit := current * 0.003
			risk := current * 0.001
			calc := g.fees.Calculate(current, current*0.997, probeQuantity, scalpLeverage, false, false, 0)
			if calc.NetPnl > 0 {
				signals = append(signals, Signal{
					ID:             newSignalID("scalping-short"),
					Instrument:     instrument,
					Side:           SideShort,
					Price:          current,
					Timestamp:      ts,
					Strategy:       TypeMomentum,
					Confidence:     60 + math.Abs(change)*10,
					Reason:         fmt.Sprintf("bearish scalp: %.3f%% over %d periods", change, i),
					Tier:           TierAggressive,
					ExpectedProfit: calc.NetPnl,
					RiskReward:     expectedProfit / risk,
					Urgency:        85,
				})
			}
		}
	}
	return signals
}

// grid splits the 20-point range into evenly spaced levels around the
// midpoint and enters when price sits within 0.2% of a level, targeting
// two grid steps away.
func (g *AggressiveGenerator) grid(instrument string, history []market.PricePoint) []Signal {
	if len(history) < 20 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	high, low := HighLow(prices, 20)
	priceRange := high - low
	mid := (high + low) / 2

	const gridLevels = 5
	gridStep := priceRange / (gridLevels * 2)
	if gridStep <= 0 {
		return nil
	}

	var signals []Signal
	for i := -gridLevels; i <= gridLevels; i++ {
		gridPrice := mid + float64(i)*gridStep
		distance := math.Abs((current-gridPrice)/current) * 100
		if distance >= 0.2 {
			continue
		}

		side := SideShort
		target := gridPrice - gridStep*2
		if i < 0 {
			side = SideLong
			target = gridPrice + gridStep*2
		}

		expectedMove := math.Abs((target-current)/current) * 100
		calc := g.fees.Calculate(current, target, probeQuantity, gridLeverage, side.IsLong(), false, 0)

		if calc.NetPnl > 0 && expectedMove > 0.2 {
			signals = append(signals, Signal{
				ID:             newSignalID(fmt.Sprintf("grid-%s", side)),
				Instrument:     instrument,
				Side:           side,
				Price:          current,
				Timestamp:      ts,
				Strategy:       TypeMeanReversion,
				Confidence:     65,
				Reason:         fmt.Sprintf("grid %s at level %d, target %.2f%% away", side, i, expectedMove),
				Tier:           TierAggressive,
				ExpectedProfit: calc.NetPnl,
				RiskReward:     expectedMove / 0.3, // stop 0.3%
				Urgency:        70,
			})
		}
	}
	return signals
}

// enhancedMomentum enters early on accelerating short-term momentum.
func (g *AggressiveGenerator) enhancedMomentum(instrument string, history []market.PricePoint) []Signal {
	if len(history) < 15 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	momentum3 := PercentChange(prices, 3)
	momentum5 := PercentChange(prices, 5)
	acceleration := momentum3 - (momentum5 - momentum3)

	var signals []Signal

	if momentum3 > 0.3 && momentum5 > 0.2 && acceleration > 0 {
		expectedMove := math.Min(2, momentum3*2)
		target := current * (1 + expectedMove/100)
		calc := g.fees.Calculate(current, target, probeQuantity, momentumLeverage, true, false, 0)
		if calc.NetPnl > 0 {
			signals = append(signals, Signal{
				ID:             newSignalID("momentum-long"),
				Instrument:     instrument,
				Side:           SideLong,
				Price:          current,
				Timestamp:      ts,
				Strategy:       TypeMomentum,
				Confidence:     70 + math.Min(20, momentum3*5),
				Reason:         fmt.Sprintf("accelerating bullish momentum: +%.2f%%", momentum3),
				Tier:           TierAggressive,
				ExpectedProfit: calc.NetPnl,
				RiskReward:     expectedMove / 0.5,
				Urgency:        80,
			})
		}
	}

	if momentum3 < -0.3 && momentum5 < -0.2 && acceleration < 0 {
		expectedMove := math.Min(2, math.Abs(momentum3)*2)
		target := current * (1 - expectedMove/100)
		calc := g.fees.Calculate(current, target, probeQuantity, momentumLeverage, false, false, 0)
		if calc.NetPnl > 0 {
			signals = append(signals, Signal{
				ID:             newSignalID("momentum-short"),
				Instrument:     instrument,
				Side:           SideShort,
				Price:          current,
				Timestamp:      ts,
				Strategy:       TypeMomentum,
				Confidence:     70 + math.Min(20, math.Abs(momentum3)*5),
				Reason:         fmt.Sprintf("accelerating bearish momentum: %.2f%%", momentum3),
				Tier:           TierAggressive,
				ExpectedProfit: calc.NetPnl,
				RiskReward:     expectedMove / 0.5,
				Urgency:        80,
			})
		}
	}

	return signals
}

// aggressiveMeanReversion enters earlier than the baseline variant, on
// ~1%/1.5% deviations from SMA10/SMA20, targeting a return to SMA20.
func (g *AggressiveGenerator) aggressiveMeanReversion(instrument string, history []market.PricePoint) []Signal {
	if len(history) < 20 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	ts := history[len(history)-1].Timestamp

	sma10 := SMA(prices, 10)
	sma20 := SMA(prices, 20)
	dev10 := (current - sma10) / sma10 * 100
	dev20 := (current - sma20) / sma20 * 100

	var signals []Signal

	if dev10 < -1 && dev20 < -1.5 && current < sma10 && sma10 < sma20 {
		target := sma20
		expectedMove := (target - current) / current * 100
		calc := g.fees.Calculate(current, target, probeQuantity, reversionLeverage, true, false, 0)
		if calc.NetPnl > 0 && expectedMove > 0.5 {
			signals = append(signals, Signal{
				ID:             newSignalID("reversion-long"),
				Instrument:     instrument,
				Side:           SideLong,
				Price:          current,
				Timestamp:      ts,
				Strategy:       TypeMeanReversion,
				Confidence:     75 + math.Min(15, math.Abs(dev20)*2),
				Reason:         fmt.Sprintf("bullish reversion: price %.2f%% below SMA20", dev20),
				Tier:           TierAggressive,
				ExpectedProfit: calc.NetPnl,
				RiskReward:     expectedMove / 1,
				Urgency:        75,
			})
		}
	}

	if dev10 > 1 && dev20 > 1.5 && current > sma10 && sma10 > sma20 {
		target := sma20
		expectedMove := (current - target) / current * 100
		calc := g.fees.Calculate(current, target, probeQuantity, reversionLeverage, false, false, 0)
		if calc.NetPnl > 0 && expectedMove > 0.5 {
			signals = append(signals, Signal{
				ID:             newSignalID("reversion-short"),
				Instrument:     instrument,
				Side:           SideShort,
				Price:          current,
				Timestamp:      ts,
				Strategy:       TypeMeanReversion,
				Confidence:     75 + math.Min(15, math.Abs(dev20)*2),
				Reason:         fmt.Sprintf("bearish reversion: price %.2f%% above SMA20", dev20),
				Tier:           TierAggressive,
				ExpectedProfit: calc.NetPnl,
				RiskReward:     expectedMove / 1,
				Urgency:        75,
			})
		}
	}

	return signals
}
