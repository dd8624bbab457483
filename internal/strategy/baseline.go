package strategy

import (
	"fmt"
	"math"

	"crypto-trading-engine/internal/market"
)

// BaselineGenerator produces the four traditional signals: momentum, RSI,
// mean reversion and breakout. Baseline signals carry no profit estimate;
// the profitability filter sizes and fee-checks them downstream.
type BaselineGenerator struct{}

// NewBaselineGenerator creates a baseline generator.
func NewBaselineGenerator() *BaselineGenerator {
	return &BaselineGenerator{}
}

// Generate runs the requested strategy types over the window and
// concatenates any resulting signals.
func (g *BaselineGenerator) Generate(instrument string, history []market.PricePoint, types []Type) []Signal {
	var signals []Signal
	for _, t := range types {
		var s *Signal
		switch t {
		case TypeMomentum:
			s = g.checkMomentum(instrument, history)
		case TypeRSI:
			s = g.checkRSI(instrument, history)
		case TypeMeanReversion:
			s = g.checkMeanReversion(instrument, history)
		case TypeBreakout:
			s = g.checkBreakout(instrument, history)
		}
		if s != nil {
			signals = append(signals, *s)
		}
	}
	return signals
}

// checkMomentum fires when both the 5-point and 20-point changes exceed
// their thresholds in the same direction.
func (g *BaselineGenerator) checkMomentum(instrument string, history []market.PricePoint) *Signal {
	if len(history) < 20 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	change5 := PercentChange(prices, 5)
	change20 := PercentChange(prices, 20)

	if change5 > 2 && change20 > 3 {
		return &Signal{
			ID:         newSignalID("momentum"),
			Instrument: instrument,
			Side:       SideLong,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeMomentum,
			Confidence: math.Min(90, 50+math.Abs(change5)*5),
			Reason:     fmt.Sprintf("bullish momentum: +%.2f%% (5p), +%.2f%% (20p)", change5, change20),
			Tier:       TierBaseline,
		}
	}

	if change5 < -2 && change20 < -3 {
		return &Signal{
			ID:         newSignalID("momentum"),
			Instrument: instrument,
			Side:       SideShort,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeMomentum,
			Confidence: math.Min(90, 50+math.Abs(change5)*5),
			Reason:     fmt.Sprintf("bearish momentum: %.2f%% (5p), %.2f%% (20p)", change5, change20),
			Tier:       TierBaseline,
		}
	}

	return nil
}

// checkRSI fires long below 30 (oversold) and short above 70 (overbought).
func (g *BaselineGenerator) checkRSI(instrument string, history []market.PricePoint) *Signal {
	if len(history) < 15 {
		return nil
	}
	prices := market.Prices(history)
	rsi := RSI(prices, 14)
	current := prices[len(prices)-1]

	if rsi < 30 {
		return &Signal{
			ID:         newSignalID("rsi"),
			Instrument: instrument,
			Side:       SideLong,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeRSI,
			Confidence: 85 - rsi, // lower RSI, higher confidence
			Reason:     fmt.Sprintf("RSI oversold: %.2f", rsi),
			Tier:       TierBaseline,
		}
	}

	if rsi > 70 {
		return &Signal{
			ID:         newSignalID("rsi"),
			Instrument: instrument,
			Side:       SideShort,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeRSI,
			Confidence: rsi - 30,
			Reason:     fmt.Sprintf("RSI overbought: %.2f", rsi),
			Tier:       TierBaseline,
		}
	}

	return nil
}

// checkMeanReversion fires when price deviates more than 3% from SMA20.
func (g *BaselineGenerator) checkMeanReversion(instrument string, history []market.PricePoint) *Signal {
	if len(history) < 20 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	sma20 := SMA(prices, 20)
	deviation := (current - sma20) / sma20 * 100

	if deviation < -3 {
		return &Signal{
			ID:         newSignalID("mean_reversion"),
			Instrument: instrument,
			Side:       SideLong,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeMeanReversion,
			Confidence: math.Min(85, 50+math.Abs(deviation)*5),
			Reason:     fmt.Sprintf("price %.2f%% below SMA20", deviation),
			Tier:       TierBaseline,
		}
	}

	if deviation > 3 {
		return &Signal{
			ID:         newSignalID("mean_reversion"),
			Instrument: instrument,
			Side:       SideShort,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeMeanReversion,
			Confidence: math.Min(85, 50+math.Abs(deviation)*5),
			Reason:     fmt.Sprintf("price %.2f%% above SMA20", deviation),
			Tier:       TierBaseline,
		}
	}

	return nil
}

// checkBreakout fires near the 20-point high/low while price is still
// moving in the breakout direction tick over tick. Fixed confidence 75.
func (g *BaselineGenerator) checkBreakout(instrument string, history []market.PricePoint) *Signal {
	if len(history) < 20 {
		return nil
	}
	prices := market.Prices(history)
	current := prices[len(prices)-1]
	previous := prices[len(prices)-2]
	high, low := HighLow(prices, 20)

	if current > high*0.98 && current > previous {
		return &Signal{
			ID:         newSignalID("breakout"),
			Instrument: instrument,
			Side:       SideLong,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeBreakout,
			Confidence: 75,
			Reason:     fmt.Sprintf("bullish breakout through resistance at %.2f", high),
			Tier:       TierBaseline,
		}
	}

	if current < low*1.02 && current < previous {
		return &Signal{
			ID:         newSignalID("breakout"),
			Instrument: instrument,
			Side:       SideShort,
			Price:      current,
			Timestamp:  history[len(history)-1].Timestamp,
			Strategy:   TypeBreakout,
			Confidence: 75,
			Reason:     fmt.Sprintf("bearish breakout through support at %.2f", low),
			Tier:       TierBaseline,
		}
	}

	return nil
}
