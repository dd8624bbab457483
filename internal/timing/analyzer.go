// Package timing finds recurring time-of-day patterns in price history and
// gates entries during historically dead hours.
package timing

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"crypto-trading-engine/internal/market"
)

// Pattern aggregates price behavior for one UTC weekday/hour bucket.
type Pattern struct {
	HourOfDay       int     `json:"hour_of_day"` // 0-23 UTC
	DayOfWeek       int     `json:"day_of_week"` // 0=Sunday, matching time.Weekday
	AverageMovement float64 `json:"average_movement"`
	SuccessRate     float64 `json:"success_rate"`
	Volatility      float64 `json:"volatility"`
}

// EntryPoint is a historically favorable weekday/hour to open positions.
type EntryPoint struct {
	HourOfDay        int     `json:"hour_of_day"`
	DayOfWeek        int     `json:"day_of_week"`
	ExpectedMovement float64 `json:"expected_movement"`
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
}

// Verdict is the answer to "should we trade right now".
type Verdict struct {
	IsGood     bool    `json:"is_good"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"` // 0-1
}

// HistoricalTimingAnalyzer buckets per-tick price movements by UTC weekday
// and hour and judges whether the current moment has historically produced
// tradable moves. With no data for the current bucket it stays permissive.
type HistoricalTimingAnalyzer struct {
	mu       sync.RWMutex
	patterns map[string][]Pattern

	now func() time.Time
}

// NewHistoricalTimingAnalyzer creates an analyzer with no learned patterns.
func NewHistoricalTimingAnalyzer() *HistoricalTimingAnalyzer {
	return &HistoricalTimingAnalyzer{
		patterns: make(map[string][]Pattern),
		now:      time.Now,
	}
}

type bucketStats struct {
	movements    []float64
	successes    int
	total        int
	volatilities []float64
}

// AnalyzePatterns rebuilds the weekday/hour buckets for an instrument from
// its price history. A tick counts as a success when its absolute move
// exceeds 1%. Histories below 100 points yield no patterns.
func (a *HistoricalTimingAnalyzer) AnalyzePatterns(instrument string, history []market.PricePoint) []Pattern {
	if len(history) < 100 {
		return nil
	}

	buckets := make(map[[2]int]*bucketStats)

	for i := 1; i < len(history); i++ {
		current := history[i]
		previous := history[i-1]

		t := time.UnixMilli(current.Timestamp).UTC()
		key := [2]int{int(t.Weekday()), t.Hour()}

		movement := (current.Price - previous.Price) / previous.Price

		b := buckets[key]
		if b == nil {
			b = &bucketStats{}
			buckets[key] = b
		}
		b.movements = append(b.movements, math.Abs(movement))
		b.total++
		if math.Abs(movement) > 0.01 {
			b.successes++
		}
		if len(b.movements) > 1 {
			b.volatilities = append(b.volatilities, stdDev(b.movements))
		}
	}

	patterns := make([]Pattern, 0, len(buckets))
	for key, b := range buckets {
		avgVolatility := 0.0
		if len(b.volatilities) > 0 {
			avgVolatility = mean(b.volatilities)
		}
		patterns = append(patterns, Pattern{
			DayOfWeek:       key[0],
			HourOfDay:       key[1],
			AverageMovement: mean(b.movements),
			SuccessRate:     float64(b.successes) / float64(b.total),
			Volatility:      avgVolatility,
		})
	}

	a.mu.Lock()
	a.patterns[instrument] = patterns
	a.mu.Unlock()
	return patterns
}

// BestEntryPoints returns the top five buckets with success rate above 50%
// and average movement above 0.5%, ranked by success discounted by
// volatility.
func (a *HistoricalTimingAnalyzer) BestEntryPoints(instrument string) []EntryPoint {
	a.mu.RLock()
	patterns := a.patterns[instrument]
	a.mu.RUnlock()

	var points []EntryPoint
	for _, p := range patterns {
		if p.SuccessRate <= 0.5 || p.AverageMovement <= 0.005 {
			continue
		}
		points = append(points, EntryPoint{
			HourOfDay:        p.HourOfDay,
			DayOfWeek:        p.DayOfWeek,
			ExpectedMovement: p.AverageMovement,
			Confidence:       p.SuccessRate * (1 - p.Volatility),
			Reason:           fmt.Sprintf("avg move %.2f%%, success %.0f%%", p.AverageMovement*100, p.SuccessRate*100),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Confidence > points[j].Confidence })
	if len(points) > 5 {
		points = points[:5]
	}
	return points
}

// IsGoodTimeToTrade judges the current UTC weekday/hour against the learned
// buckets. Unknown buckets are permissive: trading is allowed at neutral
// confidence 0.5.
func (a *HistoricalTimingAnalyzer) IsGoodTimeToTrade(instrument string) Verdict {
	now := a.now().UTC()
	day := int(now.Weekday())
	hour := now.Hour()

	a.mu.RLock()
	patterns := a.patterns[instrument]
	a.mu.RUnlock()

	var current *Pattern
	for i := range patterns {
		if patterns[i].DayOfWeek == day && patterns[i].HourOfDay == hour {
			current = &patterns[i]
			break
		}
	}

	if current == nil {
		return Verdict{
			IsGood:     true,
			Reason:     "no historical data for this time",
			Confidence: 0.5,
		}
	}

	isGood := current.SuccessRate > 0.55 && current.AverageMovement > 0.005
	verdict := Verdict{
		IsGood:     isGood,
		Confidence: current.SuccessRate * (1 - current.Volatility),
	}
	if isGood {
		verdict.Reason = fmt.Sprintf("historically favorable: %.0f%% success", current.SuccessRate*100)
	} else {
		verdict.Reason = fmt.Sprintf("historically unfavorable: %.0f%% success", current.SuccessRate*100)
	}
	return verdict
}

// CurrentPattern returns the bucket matching the current UTC weekday/hour,
// or false when none has been learned.
func (a *HistoricalTimingAnalyzer) CurrentPattern(instrument string) (Pattern, bool) {
	now := a.now().UTC()
	day := int(now.Weekday())
	hour := now.Hour()

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.patterns[instrument] {
		if p.DayOfWeek == day && p.HourOfDay == hour {
			return p, true
		}
	}
	return Pattern{}, false
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
