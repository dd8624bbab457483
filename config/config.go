package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TradingConfig    TradingConfig    `json:"trading"`
	FeesConfig       FeesConfig       `json:"fees"`
	CapitalConfig    CapitalConfig    `json:"capital"`
	LeverageConfig   LeverageConfig   `json:"leverage"`
	FeedConfig       FeedConfig       `json:"feed"`
	LoggingConfig    LoggingConfig    `json:"logging"`
}

// TradingConfig drives the engine tick loop and signal gates.
type TradingConfig struct {
	Instruments      []string `json:"instruments"`
	TickIntervalSecs int      `json:"tick_interval_secs"`
	MaxOpenPositions int      `json:"max_open_positions"`
	MinConfidence    float64  `json:"min_confidence"`    // 0-100
	SignalBufferSize int      `json:"signal_buffer_size"`
	HistorySize      int      `json:"history_size"` // price points retained per instrument
}

// FeesConfig holds the exchange fee schedule.
type FeesConfig struct {
	MakerPercent       float64 `json:"maker_percent"`
	TakerPercent       float64 `json:"taker_percent"`
	FundingRatePercent float64 `json:"funding_rate_percent"` // per 8h period
	MinFee             float64 `json:"min_fee"`
}

// CapitalConfig holds the capital ledger settings.
type CapitalConfig struct {
	InitialCapital  float64 `json:"initial_capital"`
	MaxRiskPerTrade float64 `json:"max_risk_per_trade"` // percent
	MinTradeSize    float64 `json:"min_trade_size"`
	MaxTradeSize    float64 `json:"max_trade_size"`
	Compounding     bool    `json:"compounding"`
}

// LeverageConfig bounds the adaptive leverage calculation.
type LeverageConfig struct {
	MinLeverage           int     `json:"min_leverage"`
	MaxLeverage           int     `json:"max_leverage"`
	BaseLeverage          int     `json:"base_leverage"`
	VolatilityMultiplier  float64 `json:"volatility_multiplier"`
	ConfidenceMultiplier  float64 `json:"confidence_multiplier"`
	PerformanceMultiplier float64 `json:"performance_multiplier"`
}

// FeedConfig holds the price feed settings.
type FeedConfig struct {
	BaseURL        string `json:"base_url"`
	CacheTTLSecs   int    `json:"cache_ttl_secs"`
	TimeoutSecs    int    `json:"timeout_secs"`
	StreamEnabled  bool   `json:"stream_enabled"`
	StreamURL      string `json:"stream_url"`
	VsCurrency     string `json:"vs_currency"`
}

type LoggingConfig struct {
	Level   string `json:"level"`   // debug, info, warn, error
	Output  string `json:"output"`  // stdout, stderr, or file path
	Console bool   `json:"console"` // human-readable instead of JSON
}

func Load() (*Config, error) {
	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.TradingConfig.Instruments) == 0 {
		cfg.TradingConfig.Instruments = []string{"bitcoin", "ethereum", "solana", "ripple"}
	}
	if cfg.TradingConfig.TickIntervalSecs == 0 {
		cfg.TradingConfig.TickIntervalSecs = 5
	}
	if cfg.TradingConfig.MaxOpenPositions == 0 {
		cfg.TradingConfig.MaxOpenPositions = 5
	}
	if cfg.TradingConfig.MinConfidence == 0 {
		cfg.TradingConfig.MinConfidence = 60
	}
	if cfg.TradingConfig.SignalBufferSize == 0 {
		cfg.TradingConfig.SignalBufferSize = 150
	}
	if cfg.TradingConfig.HistorySize == 0 {
		cfg.TradingConfig.HistorySize = 200
	}

	if cfg.FeesConfig.MakerPercent == 0 {
		cfg.FeesConfig.MakerPercent = 0.02
	}
	if cfg.FeesConfig.TakerPercent == 0 {
		cfg.FeesConfig.TakerPercent = 0.04
	}
	if cfg.FeesConfig.FundingRatePercent == 0 {
		cfg.FeesConfig.FundingRatePercent = 0.01
	}
	if cfg.FeesConfig.MinFee == 0 {
		cfg.FeesConfig.MinFee = 0.1
	}

	if cfg.CapitalConfig.InitialCapital == 0 {
		cfg.CapitalConfig.InitialCapital = 10
		cfg.CapitalConfig.Compounding = true
	}
	if cfg.CapitalConfig.MaxRiskPerTrade == 0 {
		cfg.CapitalConfig.MaxRiskPerTrade = 3
	}
	if cfg.CapitalConfig.MinTradeSize == 0 {
		cfg.CapitalConfig.MinTradeSize = 0.0001
	}
	if cfg.CapitalConfig.MaxTradeSize == 0 {
		cfg.CapitalConfig.MaxTradeSize = 0.02
	}

	if cfg.LeverageConfig.MinLeverage == 0 {
		cfg.LeverageConfig.MinLeverage = 3
	}
	if cfg.LeverageConfig.MaxLeverage == 0 {
		cfg.LeverageConfig.MaxLeverage = 20
	}
	if cfg.LeverageConfig.BaseLeverage == 0 {
		cfg.LeverageConfig.BaseLeverage = 8
	}
	if cfg.LeverageConfig.VolatilityMultiplier == 0 {
		cfg.LeverageConfig.VolatilityMultiplier = 0.25
	}
	if cfg.LeverageConfig.ConfidenceMultiplier == 0 {
		cfg.LeverageConfig.ConfidenceMultiplier = 0.5
	}
	if cfg.LeverageConfig.PerformanceMultiplier == 0 {
		cfg.LeverageConfig.PerformanceMultiplier = 0.25
	}

	if cfg.FeedConfig.BaseURL == "" {
		cfg.FeedConfig.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.FeedConfig.CacheTTLSecs == 0 {
		cfg.FeedConfig.CacheTTLSecs = 5
	}
	if cfg.FeedConfig.TimeoutSecs == 0 {
		cfg.FeedConfig.TimeoutSecs = 10
	}
	if cfg.FeedConfig.VsCurrency == "" {
		cfg.FeedConfig.VsCurrency = "usd"
	}

	if cfg.LoggingConfig.Level == "" {
		cfg.LoggingConfig.Level = "info"
	}
	if cfg.LoggingConfig.Output == "" {
		cfg.LoggingConfig.Output = "stdout"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADING_INSTRUMENTS"); v != "" {
		cfg.TradingConfig.Instruments = strings.Split(v, ",")
	}
	cfg.TradingConfig.TickIntervalSecs = getEnvIntOrDefault("TRADING_TICK_INTERVAL_SECS", cfg.TradingConfig.TickIntervalSecs)
	cfg.TradingConfig.MaxOpenPositions = getEnvIntOrDefault("TRADING_MAX_OPEN_POSITIONS", cfg.TradingConfig.MaxOpenPositions)
	cfg.TradingConfig.MinConfidence = getEnvFloatOrDefault("TRADING_MIN_CONFIDENCE", cfg.TradingConfig.MinConfidence)

	cfg.CapitalConfig.InitialCapital = getEnvFloatOrDefault("CAPITAL_INITIAL", cfg.CapitalConfig.InitialCapital)
	if v := os.Getenv("CAPITAL_COMPOUNDING"); v != "" {
		cfg.CapitalConfig.Compounding = v == "true"
	}

	cfg.FeedConfig.BaseURL = getEnvOrDefault("FEED_BASE_URL", cfg.FeedConfig.BaseURL)
	if v := os.Getenv("FEED_STREAM_ENABLED"); v != "" {
		cfg.FeedConfig.StreamEnabled = v == "true"
	}
	cfg.FeedConfig.StreamURL = getEnvOrDefault("FEED_STREAM_URL", cfg.FeedConfig.StreamURL)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", cfg.LoggingConfig.Output)
	if v := os.Getenv("LOG_CONSOLE"); v != "" {
		cfg.LoggingConfig.Console = v == "true"
	}
}

// Validate rejects configurations the engine cannot run with. Invalid
// numeric inputs fail here, at startup, rather than inside the tick loop.
func (c *Config) Validate() error {
	if len(c.TradingConfig.Instruments) == 0 {
		return fmt.Errorf("config: at least one instrument is required")
	}
	if c.TradingConfig.TickIntervalSecs <= 0 {
		return fmt.Errorf("config: tick interval must be positive, got %d", c.TradingConfig.TickIntervalSecs)
	}
	if c.TradingConfig.MinConfidence < 0 || c.TradingConfig.MinConfidence > 100 {
		return fmt.Errorf("config: min confidence must be in [0,100], got %.2f", c.TradingConfig.MinConfidence)
	}
	if c.FeesConfig.MakerPercent < 0 || c.FeesConfig.TakerPercent < 0 || c.FeesConfig.FundingRatePercent < 0 || c.FeesConfig.MinFee < 0 {
		return fmt.Errorf("config: fee rates must be non-negative")
	}
	if c.CapitalConfig.InitialCapital <= 0 {
		return fmt.Errorf("config: initial capital must be positive, got %.2f", c.CapitalConfig.InitialCapital)
	}
	if c.CapitalConfig.MinTradeSize <= 0 || c.CapitalConfig.MaxTradeSize < c.CapitalConfig.MinTradeSize {
		return fmt.Errorf("config: trade size bounds invalid: min %.6f max %.6f", c.CapitalConfig.MinTradeSize, c.CapitalConfig.MaxTradeSize)
	}
	if c.LeverageConfig.MinLeverage < 1 || c.LeverageConfig.MaxLeverage < c.LeverageConfig.MinLeverage {
		return fmt.Errorf("config: leverage bounds invalid: min %d max %d", c.LeverageConfig.MinLeverage, c.LeverageConfig.MaxLeverage)
	}
	if c.FeedConfig.TimeoutSecs <= 0 {
		return fmt.Errorf("config: feed timeout must be positive, got %d", c.FeedConfig.TimeoutSecs)
	}
	return nil
}

// TickInterval returns the engine tick interval as a duration.
func (c *TradingConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalSecs) * time.Second
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// GenerateSampleConfig creates a sample configuration file with defaults.
func GenerateSampleConfig(filename string) error {
	cfg := &Config{}
	applyDefaults(cfg)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
