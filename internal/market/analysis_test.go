package market

import "testing"

func makeHistory(prices []float64) []PricePoint {
	history := make([]PricePoint, len(prices))
	for i, p := range prices {
		history[i] = PricePoint{Instrument: "bitcoin", Price: p, Timestamp: int64(i * 1000)}
	}
	return history
}

// TestAnalyzeShortWindowIsNeutral verifies windows below 20 points return
// the neutral analysis.
func TestAnalyzeShortWindowIsNeutral(t *testing.T) {
	analyzer := NewAnalyzer()

	prices := make([]float64, 19)
	for i := range prices {
		prices[i] = 100
	}

	analysis := analyzer.Analyze(makeHistory(prices))
	neutral := NeutralAnalysis()

	if analysis != neutral {
		t.Errorf("short window should yield neutral analysis, got %+v", analysis)
	}
}

// TestAnalyzeFlatSeries verifies a flat series has zero volatility and
// trend.
func TestAnalyzeFlatSeries(t *testing.T) {
	analyzer := NewAnalyzer()

	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
	}

	analysis := analyzer.Analyze(makeHistory(prices))

	if analysis.Volatility != 0 {
		t.Errorf("flat series volatility should be 0, got %.4f", analysis.Volatility)
	}
	if analysis.TrendStrength != 0 {
		t.Errorf("flat series trend strength should be 0, got %.4f", analysis.TrendStrength)
	}
	if analysis.RecentPerformance != 0 {
		t.Errorf("flat series recent performance should be 0, got %.4f", analysis.RecentPerformance)
	}
}

// TestAnalyzeUptrend verifies a steady climb registers positive trend and
// performance.
func TestAnalyzeUptrend(t *testing.T) {
	analyzer := NewAnalyzer()

	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)*2
	}

	analysis := analyzer.Analyze(makeHistory(prices))

	if analysis.TrendStrength <= 0 {
		t.Errorf("uptrend should have positive trend strength, got %.4f", analysis.TrendStrength)
	}
	if analysis.RecentPerformance <= 0 {
		t.Errorf("uptrend should have positive recent performance, got %.4f", analysis.RecentPerformance)
	}
	if analysis.Volatility <= 0 || analysis.Volatility > 1 {
		t.Errorf("volatility should be in (0,1], got %.4f", analysis.Volatility)
	}
}

// TestAnalyzeVolumeTracksVolatility verifies the synthesized volume rises
// with volatility.
func TestAnalyzeVolumeTracksVolatility(t *testing.T) {
	analyzer := NewAnalyzer()

	calm := make([]float64, 30)
	noisy := make([]float64, 30)
	for i := range calm {
		calm[i] = 100
		if i%2 == 0 {
			noisy[i] = 100
		} else {
			noisy[i] = 104
		}
	}

	calmAnalysis := analyzer.Analyze(makeHistory(calm))
	noisyAnalysis := analyzer.Analyze(makeHistory(noisy))

	if noisyAnalysis.Volume <= calmAnalysis.Volume {
		t.Errorf("noisy series volume %.4f should exceed calm %.4f", noisyAnalysis.Volume, calmAnalysis.Volume)
	}
}
