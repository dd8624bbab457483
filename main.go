package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-trading-engine/config"
	"crypto-trading-engine/internal/bot"
	"crypto-trading-engine/internal/events"
	"crypto-trading-engine/internal/logging"
	"crypto-trading-engine/internal/pricefeed"
)

// streamSymbols maps exchange ticker symbols to the instrument ids used by
// the price feed.
var streamSymbols = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"SOLUSDT": "solana",
	"XRPUSDT": "ripple",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   cfg.LoggingConfig.Level,
		Output:  cfg.LoggingConfig.Output,
		Console: cfg.LoggingConfig.Console,
	})
	logger.Info().Msg("logging initialized")

	eventBus := events.NewBus()
	eventBus.Subscribe(events.EventError, func(ev events.Event) {
		logger.Warn().Interface("data", ev.Data).Msg("engine error event")
	})

	feed := pricefeed.NewClient(pricefeed.Config{
		BaseURL:    cfg.FeedConfig.BaseURL,
		CacheTTL:   time.Duration(cfg.FeedConfig.CacheTTLSecs) * time.Second,
		Timeout:    time.Duration(cfg.FeedConfig.TimeoutSecs) * time.Second,
		VsCurrency: cfg.FeedConfig.VsCurrency,
	}, logger)

	var stream *pricefeed.Stream
	if cfg.FeedConfig.StreamEnabled && cfg.FeedConfig.StreamURL != "" {
		stream = pricefeed.NewStream(cfg.FeedConfig.StreamURL, streamSymbols, feed, logger)
		stream.Start()
	}

	engine := bot.NewTradingEngine(cfg, feed, eventBus, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	engine.Stop()
	if stream != nil {
		stream.Stop()
	}

	stats := engine.Ledger().Stats()
	logger.Info().
		Float64("final_capital", stats.CurrentCapital).
		Float64("total_return", stats.TotalReturn).
		Float64("total_return_percent", stats.TotalReturnPercent).
		Msg("shutdown complete")
}
