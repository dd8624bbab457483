package risk

import (
	"math"

	"crypto-trading-engine/internal/market"
)

// CloseReason names the protection level that triggered a close.
type CloseReason string

const (
	CloseStopLoss     CloseReason = "stop_loss"
	CloseTakeProfit   CloseReason = "take_profit"
	CloseTrailingStop CloseReason = "trailing_stop"
)

// ProtectionLevels are the computed exit levels for an open position.
// TrailingStop is zero until the position moves into profit.
type ProtectionLevels struct {
	StopLoss          float64 `json:"stop_loss"`
	TakeProfit        float64 `json:"take_profit"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent"`
	TrailingStop      float64 `json:"trailing_stop,omitempty"`
}

// DynamicProtectionEngine derives stop-loss and take-profit levels from
// volatility, trend strength, signal confidence and historical
// support/resistance, and re-derives them every tick so they track the
// market. Stateless; safe for concurrent use.
type DynamicProtectionEngine struct{}

// NewDynamicProtectionEngine creates a protection engine.
func NewDynamicProtectionEngine() *DynamicProtectionEngine {
	return &DynamicProtectionEngine{}
}

// CalculateDynamicLevels computes exit levels for a position.
//
// The base stop distance is 0.5% plus twice the volatility score, with the
// take profit three times as wide. Strong trends tighten the stop and widen
// the target; high confidence does the same. If a support (long) or
// resistance (short) level sits within 1.5x the stop distance, the stop
// snaps to 90% of the distance to that level. A trailing stop at 50%
// retracement of the open profit appears once the position is in profit.
func (e *DynamicProtectionEngine) CalculateDynamicLevels(
	isLong bool,
	entryPrice, currentPrice float64,
	analysis market.Analysis,
	history []market.PricePoint,
) ProtectionLevels {
	baseStopPercent := 0.5 + analysis.Volatility*2
	baseTakePercent := baseStopPercent * 3

	trendMultiplier := 1 - analysis.TrendStrength*0.3
	adjustedStopPercent := baseStopPercent * trendMultiplier
	adjustedTakePercent := baseTakePercent * (1 + analysis.TrendStrength*0.5)

	confidenceMultiplier := 1 - (100-analysis.Confidence)/100*0.2
	finalStopPercent := adjustedStopPercent * confidenceMultiplier
	finalTakePercent := adjustedTakePercent * (1 + analysis.Confidence/100*0.3)

	if nearest, ok := e.nearestSupportResistance(history, currentPrice, isLong); ok {
		levelDistance := math.Abs(nearest-entryPrice) / entryPrice * 100
		if levelDistance < finalStopPercent*1.5 {
			finalStopPercent = levelDistance * 0.9
		}
	}

	var stopLoss, takeProfit float64
	if isLong {
		stopLoss = entryPrice * (1 - finalStopPercent/100)
		takeProfit = entryPrice * (1 + finalTakePercent/100)
	} else {
		stopLoss = entryPrice * (1 + finalStopPercent/100)
		takeProfit = entryPrice * (1 - finalTakePercent/100)
	}

	levels := ProtectionLevels{
		StopLoss:          stopLoss,
		TakeProfit:        takeProfit,
		StopLossPercent:   finalStopPercent,
		TakeProfitPercent: finalTakePercent,
	}

	if isLong && currentPrice > entryPrice {
		profit := currentPrice - entryPrice
		levels.TrailingStop = currentPrice - profit*0.5
	} else if !isLong && currentPrice < entryPrice {
		profit := entryPrice - currentPrice
		levels.TrailingStop = currentPrice + profit*0.5
	}

	return levels
}

// ShouldClose checks the levels in fixed priority: stop loss first, then
// take profit, then trailing stop. Returns false with an empty reason when
// no level is breached.
func (e *DynamicProtectionEngine) ShouldClose(isLong bool, currentPrice float64, levels ProtectionLevels) (bool, CloseReason) {
	if isLong && currentPrice <= levels.StopLoss {
		return true, CloseStopLoss
	}
	if !isLong && currentPrice >= levels.StopLoss {
		return true, CloseStopLoss
	}

	if isLong && currentPrice >= levels.TakeProfit {
		return true, CloseTakeProfit
	}
	if !isLong && currentPrice <= levels.TakeProfit {
		return true, CloseTakeProfit
	}

	if levels.TrailingStop != 0 {
		if isLong && currentPrice <= levels.TrailingStop {
			return true, CloseTrailingStop
		}
		if !isLong && currentPrice >= levels.TrailingStop {
			return true, CloseTrailingStop
		}
	}

	return false, ""
}

// nearestSupportResistance scans for local extremes over a 10-point window
// and returns the closest support below the price (long) or resistance
// above it (short). Needs at least 20 points.
func (e *DynamicProtectionEngine) nearestSupportResistance(history []market.PricePoint, currentPrice float64, isLong bool) (float64, bool) {
	if len(history) < 20 {
		return 0, false
	}
	prices := market.Prices(history)

	const window = 10
	seen := make(map[float64]struct{})
	var levels []float64

	for i := window; i < len(prices)-window; i++ {
		localMax, localMin := prices[i-window], prices[i-window]
		for _, p := range prices[i-window : i+window] {
			if p > localMax {
				localMax = p
			}
			if p < localMin {
				localMin = p
			}
		}

		if math.Abs(prices[i]-localMax) < localMax*0.001 {
			if _, ok := seen[localMax]; !ok {
				seen[localMax] = struct{}{}
				levels = append(levels, localMax)
			}
		}
		if math.Abs(prices[i]-localMin) < localMin*0.001 {
			if _, ok := seen[localMin]; !ok {
				seen[localMin] = struct{}{}
				levels = append(levels, localMin)
			}
		}
	}

	nearest := 0.0
	minDistance := math.Inf(1)
	found := false
	for _, level := range levels {
		distance := math.Abs(level - currentPrice)
		if distance >= minDistance {
			continue
		}
		if (isLong && level < currentPrice) || (!isLong && level > currentPrice) {
			minDistance = distance
			nearest = level
			found = true
		}
	}
	return nearest, found
}
