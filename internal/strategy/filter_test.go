package strategy

import (
	"testing"

	"crypto-trading-engine/internal/fees"
	"crypto-trading-engine/internal/market"
	"crypto-trading-engine/internal/risk"
)

func newFilter(capCfg risk.CapitalConfig) *ProfitabilityFilter {
	ledger := risk.NewCapitalLedger(capCfg)
	sizer := risk.NewAdaptiveLeverageSizer(risk.DefaultLeverageConfig(), ledger)
	return NewProfitabilityFilter(fees.NewCalculator(fees.DefaultSchedule()), market.NewAnalyzer(), sizer)
}

// TestFilterConfidenceGate verifies signals below the minimum confidence are
// dropped before any profitability math runs.
func TestFilterConfidenceGate(t *testing.T) {
	f := newFilter(risk.DefaultCapitalConfig())

	signals := []Signal{
		{ID: "a", Instrument: "bitcoin", Side: SideLong, Price: 50000, Tier: TierBaseline, Confidence: 50},
	}

	kept := f.Filter(signals, nil, 60)
	if len(kept) != 0 {
		t.Errorf("confidence 50 should not pass a gate of 60, got %d survivors", len(kept))
	}
}

// TestFilterBaselineSizedAndChecked verifies a baseline signal at a large
// price is sized via the adaptive sizer and survives the 1% move check.
func TestFilterBaselineSizedAndChecked(t *testing.T) {
	f := newFilter(risk.DefaultCapitalConfig())

	signals := []Signal{
		{ID: "a", Instrument: "bitcoin", Side: SideLong, Price: 50000, Tier: TierBaseline, Confidence: 80},
	}

	kept := f.Filter(signals, nil, 60)
	if len(kept) != 1 {
		t.Fatalf("fee-positive baseline signal should survive, got %d", len(kept))
	}
	if kept[0].ID != "a" {
		t.Errorf("survivor should be the input signal, got %s", kept[0].ID)
	}
}

// TestFilterRejectsFeeDominatedSize verifies a baseline signal whose clamped
// quantity cannot cover the minimum fee is rejected.
func TestFilterRejectsFeeDominatedSize(t *testing.T) {
	capCfg := risk.DefaultCapitalConfig()
	capCfg.MaxTradeSize = 0.0001 // position value far below the fee floor
	f := newFilter(capCfg)

	signals := []Signal{
		{ID: "a", Instrument: "bitcoin", Side: SideLong, Price: 100, Tier: TierBaseline, Confidence: 80},
	}

	kept := f.Filter(signals, nil, 60)
	if len(kept) != 0 {
		t.Errorf("fee-dominated signal should be rejected, got %d survivors", len(kept))
	}
}

// TestFilterTrustsPrecomputedEstimate verifies aggressive/smart signals are
// judged on their own estimate, positive kept and non-positive dropped.
func TestFilterTrustsPrecomputedEstimate(t *testing.T) {
	f := newFilter(risk.DefaultCapitalConfig())

	signals := []Signal{
		{ID: "good", Side: SideLong, Price: 100, Tier: TierAggressive, Confidence: 70, ExpectedProfit: 0.5},
		{ID: "bad", Side: SideLong, Price: 100, Tier: TierAggressive, Confidence: 70, ExpectedProfit: 0},
		{ID: "smart", Side: SideShort, Price: 100, Tier: TierSmart, Confidence: 90, ExpectedProfit: 1.2},
	}

	kept := f.Filter(signals, nil, 60)
	if len(kept) != 2 {
		t.Fatalf("expected two survivors, got %d", len(kept))
	}
	if kept[0].ID != "good" || kept[1].ID != "smart" {
		t.Errorf("survivors should preserve input order, got %s then %s", kept[0].ID, kept[1].ID)
	}
}
