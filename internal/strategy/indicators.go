package strategy

// Indicator helpers over raw price series, oldest first.

// SMA averages the last period prices. Below period, it averages whatever
// is available.
func SMA(prices []float64, period int) float64 {
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

// RSI computes the Relative Strength Index from simple average gains and
// losses over the series (not Wilder's smoothed variant). Returns the
// neutral 50 below period+1 points and 100 when there are no losses.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	gains := 0.0
	losses := 0.0
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// PercentChange returns the percent change from the price lookback points
// back to the latest price. A lookback beyond the series start falls back
// to zero change.
func PercentChange(prices []float64, lookback int) float64 {
	if len(prices) == 0 {
		return 0
	}
	current := prices[len(prices)-1]
	idx := len(prices) - lookback
	if idx < 0 || idx >= len(prices) {
		return 0
	}
	past := prices[idx]
	return (current - past) / past * 100
}

// HighLow returns the highest and lowest prices over the last period points.
func HighLow(prices []float64, period int) (high, low float64) {
	slice := prices
	if len(prices) > period {
		slice = prices[len(prices)-period:]
	}
	high, low = slice[0], slice[0]
	for _, p := range slice[1:] {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low
}
