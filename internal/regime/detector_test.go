package regime

import (
	"testing"

	"crypto-trading-engine/internal/market"
)

func makeHistory(prices []float64) []market.PricePoint {
	history := make([]market.PricePoint, len(prices))
	for i, p := range prices {
		history[i] = market.PricePoint{Instrument: "bitcoin", Price: p, Timestamp: int64(i * 1000)}
	}
	return history
}

// TestDetectShortWindowDefaultsToRanging verifies fewer than 50 points
// returns the neutral ranging default.
func TestDetectShortWindowDefaultsToRanging(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 49)
	for i := range prices {
		prices[i] = 100
	}

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != Ranging {
		t.Errorf("short window should default to ranging, got %s", analysis.Regime)
	}
	if analysis.Confidence != 50 || analysis.Strength != 0.5 {
		t.Errorf("short window should be neutral, got confidence %.0f strength %.2f", analysis.Confidence, analysis.Strength)
	}
}

// TestDetectRanging verifies a tight oscillation classifies as ranging with
// range bounds populated.
func TestDetectRanging(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 60)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 101
		}
	}

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != Ranging {
		t.Fatalf("oscillating series should be ranging, got %s", analysis.Regime)
	}
	if analysis.Confidence <= 60 {
		t.Errorf("tight range should have confidence above 60, got %.0f", analysis.Confidence)
	}
	if analysis.RangeBottom != 100 || analysis.RangeTop != 101 {
		t.Errorf("range bounds should be [100,101], got [%.0f,%.0f]", analysis.RangeBottom, analysis.RangeTop)
	}
}

// TestDetectStrongImpulse verifies an explosive accelerating move wins over
// every other classification.
func TestDetectStrongImpulse(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 50)
	for i := 0; i < 45; i++ {
		prices[i] = 100
	}
	// Dip then explosion: momentum over 3 points exceeds momentum over 5,
	// so acceleration is positive.
	prices[45] = 100
	prices[46] = 99
	prices[47] = 98
	prices[48] = 104
	prices[49] = 112

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != StrongImpulse {
		t.Fatalf("explosive move should classify as strong impulse, got %s", analysis.Regime)
	}
	if analysis.TrendDirection != DirectionUp {
		t.Errorf("impulse direction should be up, got %s", analysis.TrendDirection)
	}
	if analysis.ImpulseStrength <= 0.7 {
		t.Errorf("impulse strength should exceed 0.7, got %.2f", analysis.ImpulseStrength)
	}
	if analysis.Confidence < 85 {
		t.Errorf("impulse confidence should be at least 85, got %.0f", analysis.Confidence)
	}
}

// TestDetectDownImpulse verifies the mirrored downside case.
func TestDetectDownImpulse(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 50)
	for i := 0; i < 45; i++ {
		prices[i] = 100
	}
	prices[45] = 100
	prices[46] = 101
	prices[47] = 102
	prices[48] = 96
	prices[49] = 89

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != StrongImpulse {
		t.Fatalf("explosive drop should classify as strong impulse, got %s", analysis.Regime)
	}
	if analysis.TrendDirection != DirectionDown {
		t.Errorf("impulse direction should be down, got %s", analysis.TrendDirection)
	}
}

// TestDetectTrendingUp verifies a sustained climb without impulse or range
// classifies as trending up. The window needs 100+ points so all three
// moving averages are distinct and stacked, and the last point sits just
// below the recent high so the move does not read as a breakout.
func TestDetectTrendingUp(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 110)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.5
	}
	prices[109] = prices[108] - 0.2

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != TrendingUp {
		t.Fatalf("steady climb should classify as trending up, got %s", analysis.Regime)
	}
	if analysis.TrendDirection != DirectionUp {
		t.Errorf("trend direction should be up, got %s", analysis.TrendDirection)
	}
}

// TestDetectBreakoutUp verifies a single candle clearing the prior band
// classifies as a breakout when momentum is not accelerating.
func TestDetectBreakoutUp(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 56)
	for i := 0; i < 55; i++ {
		prices[i] = 50000
	}
	prices[55] = 50900 // +1.8% above the prior band, flat before

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != Breakout {
		t.Fatalf("candle above the prior band should classify as breakout, got %s", analysis.Regime)
	}
	if analysis.TrendDirection != DirectionUp {
		t.Errorf("breakout direction should be up, got %s", analysis.TrendDirection)
	}
	if analysis.Confidence <= 70 {
		t.Errorf("breakout confidence should exceed 70, got %.0f", analysis.Confidence)
	}
	if analysis.Strength <= 0.5 {
		t.Errorf("1.8%% breakout strength should exceed 0.5, got %.2f", analysis.Strength)
	}
}

// TestDetectBreakoutDown verifies the mirrored downside crossing.
func TestDetectBreakoutDown(t *testing.T) {
	detector := NewDetector()

	prices := make([]float64, 56)
	for i := 0; i < 55; i++ {
		prices[i] = 50000
	}
	prices[55] = 49100

	analysis := detector.Detect(makeHistory(prices))

	if analysis.Regime != Breakout {
		t.Fatalf("candle below the prior band should classify as breakout, got %s", analysis.Regime)
	}
	if analysis.TrendDirection != DirectionDown {
		t.Errorf("breakout direction should be down, got %s", analysis.TrendDirection)
	}
}
