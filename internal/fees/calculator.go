// Package fees estimates trading costs for hypothetical round trips.
// The model is slippage-free: maker/taker percentage fees with an absolute
// floor, plus funding charged per completed 8-hour period.
package fees

import (
	"math"
)

// Schedule holds the fee rates applied to every trade.
// Effectively immutable for the lifetime of a session.
type Schedule struct {
	MakerPercent       float64 `json:"maker_percent"`        // e.g. 0.02 = 0.02%
	TakerPercent       float64 `json:"taker_percent"`        // e.g. 0.04 = 0.04%
	FundingRatePercent float64 `json:"funding_rate_percent"` // per 8h period
	MinFee             float64 `json:"min_fee"`              // absolute floor per open/close fee
}

// DefaultSchedule returns typical futures-exchange rates.
func DefaultSchedule() Schedule {
	return Schedule{
		MakerPercent:       0.02,
		TakerPercent:       0.04,
		FundingRatePercent: 0.01,
		MinFee:             0.1,
	}
}

// Calculation is the full cost breakdown of a hypothetical trade.
type Calculation struct {
	OpenFee        float64 `json:"open_fee"`
	CloseFee       float64 `json:"close_fee"`
	FundingFee     float64 `json:"funding_fee"`
	TotalFees      float64 `json:"total_fees"`
	NetPnl         float64 `json:"net_pnl"`
	BreakevenPrice float64 `json:"breakeven_price"`
}

// Calculator computes fees and net P&L for prospective trades.
type Calculator struct {
	schedule Schedule
}

// NewCalculator creates a calculator with the given schedule.
func NewCalculator(schedule Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// Schedule returns the active fee schedule.
func (c *Calculator) Schedule() Schedule {
	return c.schedule
}

// Calculate computes the cost breakdown for a round trip. isLong selects the
// P&L direction; isMaker selects the fee rate; hoursOpen drives funding
// (zero periods below 8h). Callers must supply positive price, quantity and
// leverage; validity is enforced at configuration time, not here.
func (c *Calculator) Calculate(entryPrice, exitPrice, quantity, leverage float64, isLong, isMaker bool, hoursOpen float64) Calculation {
	positionValue := quantity * entryPrice * leverage

	feeRate := c.schedule.TakerPercent
	if isMaker {
		feeRate = c.schedule.MakerPercent
	}
	openFee := math.Max(c.schedule.MinFee, positionValue*feeRate/100)
	closeFee := math.Max(c.schedule.MinFee, positionValue*feeRate/100)

	fundingPeriods := math.Floor(hoursOpen / 8)
	fundingFee := 0.0
	if fundingPeriods > 0 {
		fundingFee = positionValue * c.schedule.FundingRatePercent * fundingPeriods / 100
	}

	totalFees := openFee + closeFee + fundingFee

	priceDiff := exitPrice - entryPrice
	if !isLong {
		priceDiff = entryPrice - exitPrice
	}
	grossPnl := priceDiff * quantity * leverage
	netPnl := grossPnl - totalFees

	feeOffset := totalFees / (quantity * leverage)
	breakeven := entryPrice + feeOffset
	if !isLong {
		breakeven = entryPrice - feeOffset
	}

	return Calculation{
		OpenFee:        openFee,
		CloseFee:       closeFee,
		FundingFee:     fundingFee,
		TotalFees:      totalFees,
		NetPnl:         netPnl,
		BreakevenPrice: breakeven,
	}
}

// IsProfitable reports whether the round trip nets a positive P&L after
// taker fees and funding.
func (c *Calculator) IsProfitable(entryPrice, exitPrice, quantity, leverage float64, isLong bool, hoursOpen float64) bool {
	return c.Calculate(entryPrice, exitPrice, quantity, leverage, isLong, false, hoursOpen).NetPnl > 0
}

// MinProfitableMove returns the percentage price move needed for a trade at
// the given leverage to cover taker fees on both legs plus the desired
// minimum profit percentage.
func (c *Calculator) MinProfitableMove(entryPrice, leverage, minProfitPercent float64) float64 {
	if entryPrice <= 0 || leverage <= 0 {
		return 0
	}
	estimatedFees := c.schedule.TakerPercent * 2 / 100
	requiredGross := estimatedFees + minProfitPercent/100
	requiredPriceMove := requiredGross / leverage
	return requiredPriceMove / entryPrice * 100
}
