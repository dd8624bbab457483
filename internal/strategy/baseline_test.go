package strategy

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

func flatPrices(n int, value float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = value
	}
	return prices
}

// TestMomentumFiresOnJump verifies a sharp move after a flat stretch
// produces a long momentum signal.
func TestMomentumFiresOnJump(t *testing.T) {
	gen := NewBaselineGenerator()

	prices := append(flatPrices(20, 100), 104) // +4% jump
	signals := gen.Generate("bitcoin", makeHistory(prices), []Type{TypeMomentum})

	if len(signals) != 1 {
		t.Fatalf("expected one momentum signal, got %d", len(signals))
	}
	s := signals[0]
	if s.Side != SideLong {
		t.Errorf("jump should produce a long, got %s", s.Side)
	}
	if s.Strategy != TypeMomentum || s.Tier != TierBaseline {
		t.Errorf("unexpected strategy/tier: %s/%s", s.Strategy, s.Tier)
	}
	if s.Confidence != 70 { // 50 + 4*5
		t.Errorf("confidence should be 70, got %.0f", s.Confidence)
	}
	if s.HasProfitEstimate() {
		t.Error("baseline signals should not carry a profit estimate")
	}
}

// TestMomentumQuietMarket verifies no signal on a flat series.
func TestMomentumQuietMarket(t *testing.T) {
	gen := NewBaselineGenerator()

	signals := gen.Generate("bitcoin", makeHistory(flatPrices(30, 100)), []Type{TypeMomentum})
	if len(signals) != 0 {
		t.Errorf("flat market should produce no signals, got %d", len(signals))
	}
}

// TestRSIOversoldLong verifies a strict decline produces a long with the
// maximum RSI confidence.
func TestRSIOversoldLong(t *testing.T) {
	gen := NewBaselineGenerator()

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}

	signals := gen.Generate("bitcoin", makeHistory(prices), []Type{TypeRSI})

	if len(signals) != 1 {
		t.Fatalf("expected one RSI signal, got %d", len(signals))
	}
	s := signals[0]
	if s.Side != SideLong {
		t.Errorf("oversold should produce a long, got %s", s.Side)
	}
	if s.Confidence != 85 { // RSI 0 -> 85 - 0
		t.Errorf("confidence for RSI 0 should be 85, got %.0f", s.Confidence)
	}
}

// TestRSIOverboughtShort verifies a strict climb produces a short.
func TestRSIOverboughtShort(t *testing.T) {
	gen := NewBaselineGenerator()

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	signals := gen.Generate("bitcoin", makeHistory(prices), []Type{TypeRSI})

	if len(signals) != 1 {
		t.Fatalf("expected one RSI signal, got %d", len(signals))
	}
	if signals[0].Side != SideShort {
		t.Errorf("overbought should produce a short, got %s", signals[0].Side)
	}
	if signals[0].Confidence != 70 { // RSI 100 -> 100 - 30
		t.Errorf("confidence for RSI 100 should be 70, got %.0f", signals[0].Confidence)
	}
}

// TestMeanReversionDeviation verifies a deep dip below SMA20 produces a
// long.
func TestMeanReversionDeviation(t *testing.T) {
	gen := NewBaselineGenerator()

	prices := append(flatPrices(20, 100), 95) // ~5% below the average
	signals := gen.Generate("bitcoin", makeHistory(prices), []Type{TypeMeanReversion})

	if len(signals) != 1 {
		t.Fatalf("expected one mean reversion signal, got %d", len(signals))
	}
	if signals[0].Side != SideLong {
		t.Errorf("dip should produce a long, got %s", signals[0].Side)
	}
}

// TestBreakoutNearHigh verifies a rising price near the window high
// produces a long with fixed confidence 75.
func TestBreakoutNearHigh(t *testing.T) {
	gen := NewBaselineGenerator()

	prices := flatPrices(20, 100)
	prices = append(prices, 99, 101) // above 0.98*high and rising

	signals := gen.Generate("bitcoin", makeHistory(prices), []Type{TypeBreakout})

	if len(signals) != 1 {
		t.Fatalf("expected one breakout signal, got %d", len(signals))
	}
	if signals[0].Side != SideLong || signals[0].Confidence != 75 {
		t.Errorf("expected long with confidence 75, got %s/%.0f", signals[0].Side, signals[0].Confidence)
	}
}

// TestGenerateMultipleTypes verifies only the requested types run.
func TestGenerateMultipleTypes(t *testing.T) {
	gen := NewBaselineGenerator()

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}

	// RSI would fire, but only momentum is requested.
	signals := gen.Generate("bitcoin", makeHistory(prices), []Type{TypeMomentum})
	if len(signals) != 0 {
		t.Errorf("momentum-only request should ignore RSI condition, got %d signals", len(signals))
	}
}
