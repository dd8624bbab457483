// Package regime classifies the current market state of an instrument from
// its recent price window.
package regime

import (
	"math"

	"crypto-trading-engine/internal/market"
)

// Regime is a classified market behavior mode.
type Regime string

const (
	Ranging       Regime = "ranging"
	TrendingUp    Regime = "trending_up"
	TrendingDown  Regime = "trending_down"
	Breakout      Regime = "breakout"
	StrongImpulse Regime = "strong_impulse"
)

// Direction of a trend, breakout or impulse.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// Analysis is the detector output for one tick. Exactly one regime is
// selected, by priority: strong_impulse > breakout > ranging > trending >
// default ranging.
type Analysis struct {
	Regime          Regime    `json:"regime"`
	Confidence      float64   `json:"confidence"` // 0-100
	Strength        float64   `json:"strength"`   // 0-1
	SupportLevel    float64   `json:"support_level,omitempty"`
	ResistanceLevel float64   `json:"resistance_level,omitempty"`
	TrendDirection  Direction `json:"trend_direction,omitempty"`
	ImpulseStrength float64   `json:"impulse_strength,omitempty"`
	RangeTop        float64   `json:"range_top,omitempty"`
	RangeBottom     float64   `json:"range_bottom,omitempty"`
}

// Detector classifies market regimes. Stateless; safe for concurrent use.
type Detector struct{}

// NewDetector creates a regime detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies the current regime from the price window. Windows below
// 50 points return the neutral ranging default (confidence 50, strength 0.5).
func (d *Detector) Detect(history []market.PricePoint) Analysis {
	if len(history) < 50 {
		return Analysis{Regime: Ranging, Confidence: 50, Strength: 0.5}
	}

	prices := market.Prices(history)

	trend := analyzeTrend(prices)
	rng := analyzeRange(prices)
	brk := analyzeBreakout(prices)
	impulse := analyzeImpulse(prices)

	if impulse.strength > 0.7 {
		return Analysis{
			Regime:          StrongImpulse,
			Confidence:      85 + impulse.strength*15,
			Strength:        impulse.strength,
			TrendDirection:  impulse.direction,
			ImpulseStrength: impulse.strength,
			SupportLevel:    rng.support,
			ResistanceLevel: rng.resistance,
		}
	}

	if brk.isBreakout && brk.confidence > 70 {
		return Analysis{
			Regime:          Breakout,
			Confidence:      brk.confidence,
			Strength:        brk.strength,
			SupportLevel:    rng.support,
			ResistanceLevel: rng.resistance,
			TrendDirection:  brk.direction,
		}
	}

	if rng.isRanging && rng.confidence > 60 {
		return Analysis{
			Regime:          Ranging,
			Confidence:      rng.confidence,
			Strength:        rng.strength,
			RangeTop:        rng.resistance,
			RangeBottom:     rng.support,
			SupportLevel:    rng.support,
			ResistanceLevel: rng.resistance,
		}
	}

	if trend.strength > 0.6 {
		r := TrendingUp
		if trend.direction == DirectionDown {
			r = TrendingDown
		}
		a := Analysis{
			Regime:          r,
			Confidence:      trend.confidence,
			Strength:        trend.strength,
			SupportLevel:    trend.support,
			ResistanceLevel: trend.resistance,
		}
		if trend.direction != DirectionNeutral {
			a.TrendDirection = trend.direction
		}
		return a
	}

	return Analysis{
		Regime:      Ranging,
		Confidence:  50,
		Strength:    0.5,
		RangeTop:    rng.resistance,
		RangeBottom: rng.support,
	}
}

type trendAnalysis struct {
	direction  Direction
	strength   float64
	confidence float64
	support    float64
	resistance float64
}

// analyzeTrend compares the current price against stacked moving averages.
func analyzeTrend(prices []float64) trendAnalysis {
	sma20 := sma(prices, 20)
	sma50 := sma20
	if len(prices) >= 50 {
		sma50 = sma(prices, 50)
	}
	sma100 := sma50
	if len(prices) >= 100 {
		sma100 = sma(prices, 100)
	}

	current := prices[len(prices)-1]

	direction := DirectionNeutral
	if current > sma20 && sma20 > sma50 && sma50 > sma100 {
		direction = DirectionUp
	} else if current < sma20 && sma20 < sma50 && sma50 < sma100 {
		direction = DirectionDown
	}

	priceChange := (current - prices[0]) / prices[0] * 100
	strength := math.Min(1, math.Abs(priceChange)/10)

	alignment := (current - sma20) / sma20
	if direction == DirectionDown {
		alignment = (sma20 - current) / current
	}
	confidence := math.Min(95, 50+alignment*1000)

	last20 := prices[len(prices)-20:]
	return trendAnalysis{
		direction:  direction,
		strength:   strength,
		confidence: confidence,
		support:    minOf(last20),
		resistance: maxOf(last20),
	}
}

type rangeAnalysis struct {
	isRanging  bool
	confidence float64
	strength   float64
	support    float64
	resistance float64
}

// analyzeRange checks whether the last 30 points oscillate inside a narrow
// band with low volatility. Strength counts touches of the band extremes.
func analyzeRange(prices []float64) rangeAnalysis {
	recent := prices
	if len(prices) > 30 {
		recent = prices[len(prices)-30:]
	}
	high := maxOf(recent)
	low := minOf(recent)
	avgPrice := 0.0
	for _, p := range recent {
		avgPrice += p
	}
	avgPrice /= float64(len(recent))
	rangePercent := (high - low) / avgPrice * 100

	volatility := 0.0
	for i := 1; i < len(recent); i++ {
		volatility += math.Abs((recent[i] - recent[i-1]) / recent[i-1])
	}
	volatility /= float64(len(recent) - 1)

	isRanging := rangePercent < 5 && volatility < 0.02

	touches := 0
	tolerance := avgPrice * 0.01
	for _, p := range recent {
		if math.Abs(p-high) < tolerance || math.Abs(p-low) < tolerance {
			touches++
		}
	}
	strength := math.Min(1, float64(touches)/10)

	confidence := 30.0
	if isRanging {
		confidence = 60 + strength*30
	}

	return rangeAnalysis{
		isRanging:  isRanging,
		confidence: confidence,
		strength:   strength,
		support:    low,
		resistance: high,
	}
}

type breakoutAnalysis struct {
	isBreakout bool
	confidence float64
	strength   float64
	direction  Direction
}

// analyzeBreakout fires when the current point closes outside the band the
// prior 20 points traded in and the previous point did not.
func analyzeBreakout(prices []float64) breakoutAnalysis {
	current := prices[len(prices)-1]
	previous := prices[len(prices)-2]

	window := prices[:len(prices)-1]
	if len(window) > 20 {
		window = window[len(window)-20:]
	}
	resistance := maxOf(window)
	support := minOf(window)

	breakoutUp := current > resistance && previous <= resistance
	breakoutDown := current < support && previous >= support

	if !breakoutUp && !breakoutDown {
		return breakoutAnalysis{direction: DirectionUp}
	}

	direction := DirectionUp
	distance := (current - resistance) / resistance * 100
	if breakoutDown {
		direction = DirectionDown
		distance = (support - current) / support * 100
	}

	return breakoutAnalysis{
		isBreakout: true,
		confidence: math.Min(95, 70+distance*10),
		strength:   math.Min(1, distance/2),
		direction:  direction,
	}
}

type impulseAnalysis struct {
	strength  float64
	direction Direction
}

// analyzeImpulse looks for high short-term momentum with matching
// acceleration over the last 3 and 5 points.
func analyzeImpulse(prices []float64) impulseAnalysis {
	if len(prices) < 10 {
		return impulseAnalysis{direction: DirectionUp}
	}

	current := prices[len(prices)-1]
	momentum3 := (current - prices[len(prices)-3]) / prices[len(prices)-3] * 100
	momentum5 := (current - prices[len(prices)-5]) / prices[len(prices)-5] * 100
	acceleration := momentum3 - momentum5

	isUp := momentum3 > 1 && momentum5 > 0.8 && acceleration > 0
	isDown := momentum3 < -1 && momentum5 < -0.8 && acceleration < 0

	if !isUp && !isDown {
		return impulseAnalysis{direction: DirectionUp}
	}

	direction := DirectionUp
	if isDown {
		direction = DirectionDown
	}
	avgMomentum := (math.Abs(momentum3) + math.Abs(momentum5)) / 2

	return impulseAnalysis{
		strength:  math.Min(1, avgMomentum/3),
		direction: direction,
	}
}

// sma averages the last period prices, or everything available below period.
func sma(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	slice := prices
	if len(prices) >= period {
		slice = prices[len(prices)-period:]
	}
	sum := 0.0
	for _, p := range slice {
		sum += p
	}
	return sum / float64(len(slice))
}

func minOf(prices []float64) float64 {
	m := prices[0]
	for _, p := range prices[1:] {
		if p < m {
			m = p
		}
	}
	return m
}

func maxOf(prices []float64) float64 {
	m := prices[0]
	for _, p := range prices[1:] {
		if p > m {
			m = p
		}
	}
	return m
}
