// Package bot runs the trading engine: a serialized tick loop that pulls
// prices, generates and filters signals, gates entries on historical
// timing, sizes positions adaptively and manages their protective exits.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-trading-engine/config"
	"crypto-trading-engine/internal/events"
	"crypto-trading-engine/internal/fees"
	"crypto-trading-engine/internal/market"
	"crypto-trading-engine/internal/pricefeed"
	"crypto-trading-engine/internal/regime"
	"crypto-trading-engine/internal/risk"
	"crypto-trading-engine/internal/strategy"
	"crypto-trading-engine/internal/timing"
)

// TradingEngine orchestrates the decision pipeline. All trading state is
// mutated only from the tick goroutine; the mutex guards reads from other
// goroutines.
type TradingEngine struct {
	cfg    *config.Config
	logger zerolog.Logger
	bus    *events.Bus
	feed   *pricefeed.Client

	analyzer       *market.Analyzer
	detector       *regime.Detector
	feeCalc        *fees.Calculator
	ledger         *risk.CapitalLedger
	sizer          *risk.AdaptiveLeverageSizer
	protection     *risk.DynamicProtectionEngine
	timingAnalyzer *timing.HistoricalTimingAnalyzer

	baseline   *strategy.BaselineGenerator
	aggressive *strategy.AggressiveGenerator
	smart      *strategy.SmartGenerator
	filter     *strategy.ProfitabilityFilter

	history *market.HistoryStore

	mu         sync.RWMutex
	strategies map[string]*TradingStrategy
	positions  map[string]*Position
	signals    []strategy.Signal
	isRunning  bool
	lastUpdate time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTradingEngine wires the engine from configuration. One default
// momentum strategy is registered per configured instrument; callers can
// register more before Start.
func NewTradingEngine(cfg *config.Config, feed *pricefeed.Client, bus *events.Bus, logger zerolog.Logger) *TradingEngine {
	feeCalc := fees.NewCalculator(fees.Schedule{
		MakerPercent:       cfg.FeesConfig.MakerPercent,
		TakerPercent:       cfg.FeesConfig.TakerPercent,
		FundingRatePercent: cfg.FeesConfig.FundingRatePercent,
		MinFee:             cfg.FeesConfig.MinFee,
	})
	ledger := risk.NewCapitalLedger(risk.CapitalConfig{
		InitialCapital:  cfg.CapitalConfig.InitialCapital,
		MaxRiskPerTrade: cfg.CapitalConfig.MaxRiskPerTrade,
		MinTradeSize:    cfg.CapitalConfig.MinTradeSize,
		MaxTradeSize:    cfg.CapitalConfig.MaxTradeSize,
		Compounding:     cfg.CapitalConfig.Compounding,
	})
	sizer := risk.NewAdaptiveLeverageSizer(risk.LeverageConfig{
		MinLeverage:           cfg.LeverageConfig.MinLeverage,
		MaxLeverage:           cfg.LeverageConfig.MaxLeverage,
		BaseLeverage:          cfg.LeverageConfig.BaseLeverage,
		VolatilityMultiplier:  cfg.LeverageConfig.VolatilityMultiplier,
		ConfidenceMultiplier:  cfg.LeverageConfig.ConfidenceMultiplier,
		PerformanceMultiplier: cfg.LeverageConfig.PerformanceMultiplier,
	}, ledger)

	analyzer := market.NewAnalyzer()
	detector := regime.NewDetector()

	e := &TradingEngine{
		cfg:            cfg,
		logger:         logger.With().Str("component", "engine").Logger(),
		bus:            bus,
		feed:           feed,
		analyzer:       analyzer,
		detector:       detector,
		feeCalc:        feeCalc,
		ledger:         ledger,
		sizer:          sizer,
		protection:     risk.NewDynamicProtectionEngine(),
		timingAnalyzer: timing.NewHistoricalTimingAnalyzer(),
		baseline:       strategy.NewBaselineGenerator(),
		aggressive:     strategy.NewAggressiveGenerator(feeCalc),
		smart:          strategy.NewSmartGenerator(feeCalc, detector),
		filter:         strategy.NewProfitabilityFilter(feeCalc, analyzer, sizer),
		history:        market.NewHistoryStore(cfg.TradingConfig.HistorySize),
		strategies:     make(map[string]*TradingStrategy),
		positions:      make(map[string]*Position),
	}

	for _, instrument := range cfg.TradingConfig.Instruments {
		e.RegisterStrategy(&TradingStrategy{
			ID:            uuid.NewString(),
			Name:          instrument + " momentum",
			Instrument:    instrument,
			Type:          strategy.TypeMomentum,
			Enabled:       true,
			MinConfidence: cfg.TradingConfig.MinConfidence,
		})
	}

	return e
}

// Ledger exposes the capital ledger for status consumers.
func (e *TradingEngine) Ledger() *risk.CapitalLedger {
	return e.ledger
}

// TimingAnalyzer exposes the timing analyzer for entry-point reporting.
func (e *TradingEngine) TimingAnalyzer() *timing.HistoricalTimingAnalyzer {
	return e.timingAnalyzer
}

// RegisterStrategy adds or replaces a strategy registry entry.
func (e *TradingEngine) RegisterStrategy(s *TradingStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	e.strategies[s.ID] = s
	e.logger.Info().Str("strategy", s.Name).Str("instrument", s.Instrument).Msg("strategy registered")
}

// EnableStrategy toggles a strategy on. Returns false if unknown.
func (e *TradingEngine) EnableStrategy(id string) bool {
	return e.setStrategyEnabled(id, true)
}

// DisableStrategy toggles a strategy off. Returns false if unknown.
func (e *TradingEngine) DisableStrategy(id string) bool {
	return e.setStrategyEnabled(id, false)
}

func (e *TradingEngine) setStrategyEnabled(id string, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.strategies[id]
	if !ok {
		return false
	}
	s.Enabled = enabled
	return true
}

// Start launches the tick loop. Safe to call once; a second call while
// running is a no-op.
func (e *TradingEngine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(ctx)

	e.bus.Publish(events.Event{Type: events.EventEngineStarted, Data: map[string]interface{}{
		"instruments": e.cfg.TradingConfig.Instruments,
	}})
	e.logger.Info().
		Int("tick_interval_secs", e.cfg.TradingConfig.TickIntervalSecs).
		Strs("instruments", e.cfg.TradingConfig.Instruments).
		Msg("engine started")
}

// Stop halts the tick loop and waits for the in-flight tick to finish.
func (e *TradingEngine) Stop() {
	e.mu.Lock()
	if !e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()

	e.bus.Publish(events.Event{Type: events.EventEngineStopped, Data: map[string]interface{}{}})
	e.logger.Info().Msg("engine stopped")
}

// IsRunning reports whether the tick loop is active.
func (e *TradingEngine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isRunning
}

// run is the only goroutine that mutates trading state. An immediate first
// tick runs before the ticker cadence starts.
func (e *TradingEngine) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.TradingConfig.TickInterval())
	defer ticker.Stop()

	e.tick()
	for {
		select {
		case <-ticker.C:
			e.tick()
		case <-ctx.Done():
			return
		}
	}
}

// tick executes one full decision cycle.
func (e *TradingEngine) tick() {
	prices := e.updatePrices()
	e.generateAndAct(prices)
	e.maintainPositions(prices)

	e.mu.Lock()
	e.lastUpdate = time.Now()
	e.mu.Unlock()
}

// updatePrices fetches quotes for all instruments, appends fresh ones to
// their histories, and returns the usable prices for this tick. Degraded
// default quotes leave the history untouched so indicators never see
// fabricated zeros.
func (e *TradingEngine) updatePrices() map[string]float64 {
	instruments := e.cfg.TradingConfig.Instruments
	quotes := e.feed.GetQuotes(instruments)

	prices := make(map[string]float64, len(quotes))
	now := time.Now().UnixMilli()
	for instrument, quote := range quotes {
		if quote.Source == pricefeed.SourceDefault || quote.Price <= 0 {
			e.logger.Debug().Str("instrument", instrument).Msg("no usable price this tick")
			continue
		}
		prices[instrument] = quote.Price
		e.history.Add(instrument, quote.Price, now)
		e.bus.PublishPriceUpdate(instrument, quote.Price)
	}
	return prices
}

// generateAndAct runs the three signal tiers for every enabled strategy,
// filters for profitability, applies the timing gate and opens positions.
func (e *TradingEngine) generateAndAct(prices map[string]float64) {
	e.mu.RLock()
	enabled := make([]*TradingStrategy, 0, len(e.strategies))
	for _, s := range e.strategies {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	e.mu.RUnlock()

	for _, strat := range enabled {
		if _, ok := prices[strat.Instrument]; !ok {
			continue
		}

		history := e.history.History(strat.Instrument)

		smartSignals := e.smart.Generate(strat.Instrument, history)
		aggressiveSignals := e.aggressive.Generate(strat.Instrument, history)
		baseSignals := e.baseline.Generate(strat.Instrument, history, []strategy.Type{strat.Type})

		combined := make([]strategy.Signal, 0, len(smartSignals)+len(aggressiveSignals)+len(baseSignals))
		combined = append(combined, smartSignals...)
		combined = append(combined, aggressiveSignals...)
		combined = append(combined, baseSignals...)

		profitable := e.filter.Filter(combined, history, strat.MinConfidence)
		if len(profitable) == 0 {
			continue
		}

		e.bufferSignals(profitable)
		for _, s := range profitable {
			e.bus.PublishSignal(s.Instrument, string(s.Side), string(s.Strategy), s.Reason, s.Price, s.Confidence)
		}

		e.timingAnalyzer.AnalyzePatterns(strat.Instrument, history)
		verdict := e.timingAnalyzer.IsGoodTimeToTrade(strat.Instrument)
		if !verdict.IsGood && verdict.Confidence < 0.4 {
			e.logger.Debug().
				Str("instrument", strat.Instrument).
				Str("reason", verdict.Reason).
				Msg("timing gate blocked entries")
			continue
		}

		e.openFromSignals(strat, profitable, history)
	}
}

// openFromSignals opens at most one position per instrument per tick, using
// the first (highest-priority) signal that survives sizing.
func (e *TradingEngine) openFromSignals(strat *TradingStrategy, signals []strategy.Signal, history []market.PricePoint) {
	e.mu.RLock()
	openCount := 0
	hasPosition := false
	for _, p := range e.positions {
		if p.Status != PositionOpen {
			continue
		}
		openCount++
		if p.Instrument == strat.Instrument {
			hasPosition = true
		}
	}
	e.mu.RUnlock()

	if openCount >= e.cfg.TradingConfig.MaxOpenPositions || hasPosition {
		return
	}

	for _, s := range signals {
		if e.openPosition(strat, s, history) {
			return
		}
	}
}

// openPosition sizes and opens one position. Smart signals use their
// pre-computed leverage and size; everything else is sized adaptively.
// Profitability is re-checked at the final quantity, since the filter's
// probe quantity can differ from the sized one.
func (e *TradingEngine) openPosition(strat *TradingStrategy, s strategy.Signal, history []market.PricePoint) bool {
	analysis := e.analyzer.Analyze(history)
	analysis.Confidence = s.Confidence

	var leverage int
	var quantity, capitalAllocated float64
	if s.HasOptimalValues() {
		leverage = s.OptimalLeverage
		quantity = s.OptimalSize
		capitalAllocated = quantity * s.Price / float64(leverage)
	} else {
		leverage = e.sizer.CalculateOptimalLeverage(s.Confidence, analysis)
		size := e.sizer.CalculateTradeSize(s.Confidence, analysis, s.Price, leverage)
		quantity = size.Quantity
		capitalAllocated = size.CapitalAllocated
	}

	exitPrice := s.Price * 0.99
	if s.Side.IsLong() {
		exitPrice = s.Price * 1.01
	}
	if !e.feeCalc.IsProfitable(s.Price, exitPrice, quantity, float64(leverage), s.Side.IsLong(), 0) {
		e.logger.Debug().
			Str("instrument", s.Instrument).
			Float64("quantity", quantity).
			Msg("signal unprofitable at sized quantity")
		return false
	}

	levels := e.protection.CalculateDynamicLevels(s.Side.IsLong(), s.Price, s.Price, analysis, history)

	position := &Position{
		ID:               uuid.NewString(),
		Instrument:       s.Instrument,
		Side:             s.Side,
		EntryPrice:       s.Price,
		CurrentPrice:     s.Price,
		Quantity:         quantity,
		Leverage:         leverage,
		CapitalAllocated: capitalAllocated,
		Levels:           levels,
		Status:           PositionOpen,
		StrategyName:     strat.Name,
		SignalID:         s.ID,
		CreatedAt:        time.Now(),
	}

	e.mu.Lock()
	e.positions[position.ID] = position
	e.mu.Unlock()

	e.bus.PublishPositionOpened(s.Instrument, string(s.Side), s.Price, quantity, leverage)
	e.logger.Info().
		Str("instrument", s.Instrument).
		Str("side", string(s.Side)).
		Float64("entry_price", s.Price).
		Float64("quantity", quantity).
		Int("leverage", leverage).
		Float64("stop_loss", levels.StopLoss).
		Float64("take_profit", levels.TakeProfit).
		Msg("position opened")
	return true
}

// maintainPositions refreshes P&L and protection levels for open positions
// and closes any that breach a level.
func (e *TradingEngine) maintainPositions(prices map[string]float64) {
	e.mu.RLock()
	open := make([]*Position, 0, len(e.positions))
	for _, p := range e.positions {
		if p.Status == PositionOpen {
			open = append(open, p)
		}
	}
	e.mu.RUnlock()

	now := time.Now()
	for _, p := range open {
		currentPrice, ok := prices[p.Instrument]
		if !ok {
			continue
		}

		history := e.history.History(p.Instrument)

		analysis := e.analyzer.Analyze(history)
		levels := e.protection.CalculateDynamicLevels(p.Side.IsLong(), p.EntryPrice, currentPrice, analysis, history)

		priceDiff := currentPrice - p.EntryPrice
		if !p.Side.IsLong() {
			priceDiff = p.EntryPrice - currentPrice
		}
		pnl := priceDiff * p.Quantity * float64(p.Leverage)
		pnlPercent := priceDiff / p.EntryPrice * 100 * float64(p.Leverage)

		e.mu.Lock()
		p.CurrentPrice = currentPrice
		p.Levels = levels
		p.Pnl = pnl
		p.PnlPercent = pnlPercent
		e.mu.Unlock()

		if shouldClose, reason := e.protection.ShouldClose(p.Side.IsLong(), currentPrice, levels); shouldClose {
			e.closePosition(p, currentPrice, reason, now)
		}
	}
}

// closePosition realizes a position: fees come out of the gross P&L and the
// net result flows into the capital ledger.
func (e *TradingEngine) closePosition(p *Position, exitPrice float64, reason risk.CloseReason, now time.Time) {
	calc := e.feeCalc.Calculate(
		p.EntryPrice, exitPrice, p.Quantity, float64(p.Leverage),
		p.Side.IsLong(), false, p.HoursOpen(now),
	)

	e.mu.Lock()
	p.Status = PositionClosed
	p.ClosedAt = now
	p.CloseReason = reason
	p.CurrentPrice = exitPrice
	p.NetPnl = calc.NetPnl
	e.mu.Unlock()

	e.ledger.UpdateCapital(calc.NetPnl)
	stats := e.ledger.Stats()

	e.bus.PublishPositionClosed(p.Instrument, string(reason), p.EntryPrice, exitPrice, p.Quantity, calc.NetPnl)
	e.bus.PublishCapitalUpdate(stats.CurrentCapital, stats.TotalReturn)

	e.logger.Info().
		Str("instrument", p.Instrument).
		Str("reason", string(reason)).
		Float64("entry_price", p.EntryPrice).
		Float64("exit_price", exitPrice).
		Float64("net_pnl", calc.NetPnl).
		Float64("total_fees", calc.TotalFees).
		Float64("capital", stats.CurrentCapital).
		Msg("position closed")
}

// bufferSignals appends to the signal ring, keeping only the most recent
// entries up to the configured buffer size.
func (e *TradingEngine) bufferSignals(signals []strategy.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signals = append(e.signals, signals...)
	if limit := e.cfg.TradingConfig.SignalBufferSize; len(e.signals) > limit {
		e.signals = e.signals[len(e.signals)-limit:]
	}
}

// Signals returns a copy of the buffered signals, oldest first.
func (e *TradingEngine) Signals() []strategy.Signal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]strategy.Signal, len(e.signals))
	copy(out, e.signals)
	return out
}

// Positions returns a snapshot of all positions.
func (e *TradingEngine) Positions() []Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, *p)
	}
	return out
}

// Strategies returns a snapshot of the strategy registry.
func (e *TradingEngine) Strategies() []TradingStrategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]TradingStrategy, 0, len(e.strategies))
	for _, s := range e.strategies {
		out = append(out, *s)
	}
	return out
}

// Status aggregates the engine state. Total P&L sums every position's
// latest P&L; the percentage is the average across positions.
func (e *TradingEngine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := Status{
		IsRunning:      e.isRunning,
		CurrentCapital: e.ledger.AvailableCapital(),
		SignalCount:    len(e.signals),
		LastUpdate:     e.lastUpdate,
	}
	for _, s := range e.strategies {
		if s.Enabled {
			status.ActiveStrategies++
		}
	}
	totalPercent := 0.0
	for _, p := range e.positions {
		if p.Status == PositionOpen {
			status.ActivePositions++
		}
		status.TotalPnl += p.Pnl
		totalPercent += p.PnlPercent
	}
	if len(e.positions) > 0 {
		status.TotalPnlPercent = totalPercent / float64(len(e.positions))
	}
	return status
}
