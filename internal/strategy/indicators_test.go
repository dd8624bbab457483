package strategy

import (
	"math"
	"testing"
)

// TestSMA verifies averaging over the period and the short-series fallback.
func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6}

	if got := SMA(prices, 3); got != 5 {
		t.Errorf("SMA(3) over last three should be 5, got %.2f", got)
	}
	if got := SMA(prices, 10); got != 3.5 {
		t.Errorf("SMA beyond series length should average everything, got %.2f", got)
	}
	if got := SMA(nil, 3); got != 0 {
		t.Errorf("empty series should return 0, got %.2f", got)
	}
}

// TestRSIExtremes verifies the oversold/overbought extremes and the neutral
// fallback for short series.
func TestRSIExtremes(t *testing.T) {
	rising := make([]float64, 15)
	falling := make([]float64, 15)
	for i := 0; i < 15; i++ {
		rising[i] = 100 + float64(i)
		falling[i] = 100 - float64(i)
	}

	if got := RSI(rising, 14); got != 100 {
		t.Errorf("strictly rising series should have RSI 100, got %.2f", got)
	}
	if got := RSI(falling, 14); got != 0 {
		t.Errorf("strictly falling series should have RSI 0, got %.2f", got)
	}
	if got := RSI(rising[:10], 14); got != 50 {
		t.Errorf("short series should return neutral 50, got %.2f", got)
	}
}

// TestRSIMidrange verifies a balanced series lands near 50.
func TestRSIMidrange(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 101
		}
	}

	got := RSI(prices, 14)
	if math.Abs(got-50) > 10 {
		t.Errorf("balanced series RSI should be near 50, got %.2f", got)
	}
}

// TestPercentChange verifies lookback arithmetic and out-of-range fallback.
func TestPercentChange(t *testing.T) {
	prices := []float64{100, 102, 104, 106, 108}

	if got := PercentChange(prices, 5); got != 8 {
		t.Errorf("change over the full window should be 8%%, got %.2f", got)
	}
	if got := PercentChange(prices, 10); got != 0 {
		t.Errorf("lookback beyond series should return 0, got %.2f", got)
	}
	if got := PercentChange(nil, 3); got != 0 {
		t.Errorf("empty series should return 0, got %.2f", got)
	}
}

// TestHighLow verifies window extremes.
func TestHighLow(t *testing.T) {
	prices := []float64{50, 200, 90, 110, 95}

	high, low := HighLow(prices, 3)
	if high != 110 || low != 90 {
		t.Errorf("window extremes should be 110/90, got %.0f/%.0f", high, low)
	}

	high, low = HighLow(prices, 10)
	if high != 200 || low != 50 {
		t.Errorf("full-series extremes should be 200/50, got %.0f/%.0f", high, low)
	}
}
