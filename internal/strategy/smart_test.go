package strategy

import (
	"testing"

	"crypto-trading-engine/internal/fees"
	"crypto-trading-engine/internal/regime"
)

func newSmart() *SmartGenerator {
	return NewSmartGenerator(fees.NewCalculator(fees.DefaultSchedule()), regime.NewDetector())
}

// TestSmartShortWindow verifies no signals below 20 points.
func TestSmartShortWindow(t *testing.T) {
	gen := newSmart()

	signals := gen.Generate("bitcoin", makeHistory(flatPrices(19, 50000)))
	if signals != nil {
		t.Errorf("short window should produce nil, got %d signals", len(signals))
	}
}

// TestSmartImpulseEntry verifies an explosive accelerating move produces the
// maximum-conviction entry with top leverage and size.
func TestSmartImpulseEntry(t *testing.T) {
	gen := newSmart()

	prices := flatPrices(46, 50000)
	prices = append(prices, 49500, 49000, 52000, 56000) // dip then explosion

	signals := gen.Generate("bitcoin", makeHistory(prices))

	if len(signals) != 1 {
		t.Fatalf("expected one impulse signal, got %d", len(signals))
	}
	s := signals[0]
	if s.Side != SideLong || s.Tier != TierSmart {
		t.Errorf("expected smart long, got %s/%s", s.Side, s.Tier)
	}
	if s.Regime != regime.StrongImpulse {
		t.Errorf("signal regime should be strong impulse, got %s", s.Regime)
	}
	if s.OptimalLeverage != 20 || s.OptimalSize != 0.0025 {
		t.Errorf("impulse entry should carry 20x/0.0025, got %dx/%.4f", s.OptimalLeverage, s.OptimalSize)
	}
	if s.Urgency != 95 {
		t.Errorf("impulse urgency should be 95, got %.0f", s.Urgency)
	}
	if s.Confidence != 100 {
		t.Errorf("full-strength impulse confidence should be 100, got %.0f", s.Confidence)
	}
	if s.ExpectedProfit <= 0 || s.RiskReward < 1.5 {
		t.Errorf("impulse entry should be fee-positive with RR>=1.5, got %.4f/%.2f", s.ExpectedProfit, s.RiskReward)
	}
}

// TestSmartRangeReversion verifies a wide oscillating range with price near
// support produces a long reversion toward the range midpoint.
func TestSmartRangeReversion(t *testing.T) {
	gen := newSmart()

	cycle := []float64{50000, 50500, 51000, 51500, 52000, 51500, 51000, 50500}
	var prices []float64
	for len(prices) < 56 {
		prices = append(prices, cycle...)
	}
	prices = append(prices, 50800, 50600, 50400) // drifting toward support

	signals := gen.Generate("bitcoin", makeHistory(prices))

	if len(signals) != 1 {
		t.Fatalf("expected one range reversion signal, got %d", len(signals))
	}
	s := signals[0]
	if s.Side != SideLong || s.Strategy != TypeMeanReversion {
		t.Errorf("expected long mean reversion, got %s/%s", s.Side, s.Strategy)
	}
	if s.Regime != regime.Ranging {
		t.Errorf("signal regime should be ranging, got %s", s.Regime)
	}
	if s.OptimalLeverage != 4 || s.OptimalSize != 0.0015 {
		t.Errorf("range reversion should carry 4x/0.0015, got %dx/%.4f", s.OptimalLeverage, s.OptimalSize)
	}
	if s.Confidence != 80 || s.Urgency != 75 {
		t.Errorf("expected confidence 80 urgency 75, got %.0f/%.0f", s.Confidence, s.Urgency)
	}
}

// TestSmartTrendDirectEntry verifies a steep confident climb produces a
// direct trend entry once price is extended past the pullback zone.
func TestSmartTrendDirectEntry(t *testing.T) {
	gen := newSmart()

	prices := make([]float64, 110)
	for i := range prices {
		prices[i] = 50000 + float64(i)*400
	}
	prices[109] = prices[108] - 10 // just off the high, not a breakout candle

	signals := gen.Generate("bitcoin", makeHistory(prices))

	if len(signals) != 1 {
		t.Fatalf("expected one trend signal, got %d", len(signals))
	}
	s := signals[0]
	if s.Side != SideLong || s.Strategy != TypeMomentum {
		t.Errorf("expected long momentum entry, got %s/%s", s.Side, s.Strategy)
	}
	if s.Regime != regime.TrendingUp {
		t.Errorf("signal regime should be trending up, got %s", s.Regime)
	}
	if s.OptimalLeverage != 12 {
		t.Errorf("full-strength direct entry should carry 12x, got %dx", s.OptimalLeverage)
	}
	if s.Confidence != 85 || s.Urgency != 85 {
		t.Errorf("expected confidence 85 urgency 85, got %.0f/%.0f", s.Confidence, s.Urgency)
	}
}

// TestSmartBreakoutEntry verifies a candle clearing the prior band produces
// an immediate high-leverage breakout entry.
func TestSmartBreakoutEntry(t *testing.T) {
	gen := newSmart()

	prices := append(flatPrices(55, 50000), 50900)
	signals := gen.Generate("bitcoin", makeHistory(prices))

	if len(signals) != 1 {
		t.Fatalf("expected one breakout signal, got %d", len(signals))
	}
	s := signals[0]
	if s.Side != SideLong || s.Strategy != TypeBreakout {
		t.Errorf("expected long breakout, got %s/%s", s.Side, s.Strategy)
	}
	if s.Regime != regime.Breakout {
		t.Errorf("signal regime should be breakout, got %s", s.Regime)
	}
	if s.OptimalLeverage != 15 || s.OptimalSize != 0.002 {
		t.Errorf("1.8%% breakout should carry 15x/0.002, got %dx/%.4f", s.OptimalLeverage, s.OptimalSize)
	}
	if s.Urgency != 90 {
		t.Errorf("breakout urgency should be 90, got %.0f", s.Urgency)
	}
}

// TestSmartQuietDefault verifies the neutral default regime (no range
// bounds) produces nothing.
func TestSmartQuietDefault(t *testing.T) {
	gen := newSmart()

	signals := gen.Generate("bitcoin", makeHistory(flatPrices(30, 50000)))
	if len(signals) != 0 {
		t.Errorf("30 flat points should produce no smart signals, got %d", len(signals))
	}
}
