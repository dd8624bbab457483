package market

import (
	"math"
)

// Analysis holds derived market metrics for one instrument. It is
// recomputed from the price window on every evaluation and never persisted.
type Analysis struct {
	Volatility        float64 `json:"volatility"`         // 0-1
	TrendStrength     float64 `json:"trend_strength"`     // 0-1
	Confidence        float64 `json:"confidence"`         // 0-100, overwritten by the signal under evaluation
	RecentPerformance float64 `json:"recent_performance"` // -1 to 1, last 10 points vs the 10 before
	Volume            float64 `json:"volume"`             // 0-1, synthesized from volatility (no real volume feed)
}

// NeutralAnalysis is returned when the window is too short to analyze.
func NeutralAnalysis() Analysis {
	return Analysis{
		Volatility:        0.5,
		TrendStrength:     0.5,
		Confidence:        50,
		RecentPerformance: 0,
		Volume:            0.5,
	}
}

// Analyzer derives Analysis values from price history.
type Analyzer struct {
	minPoints int
}

// NewAnalyzer creates an analyzer. Windows shorter than 20 points yield
// NeutralAnalysis.
func NewAnalyzer() *Analyzer {
	return &Analyzer{minPoints: 20}
}

// Analyze computes volatility, trend strength and recent performance for
// the given window.
func (a *Analyzer) Analyze(history []PricePoint) Analysis {
	if len(history) < a.minPoints {
		return NeutralAnalysis()
	}

	prices := Prices(history)

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}

	volatility := math.Min(1, stdDev(returns)*100)

	recent := prices[len(prices)-20:]
	trend := (recent[len(recent)-1] - recent[0]) / recent[0]
	trendStrength := math.Min(1, math.Abs(trend)*10)

	last10 := mean(prices[len(prices)-10:])
	prev10 := mean(prices[len(prices)-20 : len(prices)-10])
	recentPerformance := (last10 - prev10) / prev10

	return Analysis{
		Volatility:        volatility,
		TrendStrength:     trendStrength,
		Confidence:        70, // replaced with the signal's confidence by the leverage sizer
		RecentPerformance: recentPerformance,
		Volume:            0.5 + volatility*0.5,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
