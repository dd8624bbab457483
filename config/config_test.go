package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultsValidate verifies a zero config becomes a runnable one.
func TestDefaultsValidate(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if len(cfg.TradingConfig.Instruments) != 4 {
		t.Errorf("expected four default instruments, got %d", len(cfg.TradingConfig.Instruments))
	}
	if cfg.TradingConfig.TickIntervalSecs != 5 || cfg.TradingConfig.MinConfidence != 60 {
		t.Errorf("unexpected trading defaults: %+v", cfg.TradingConfig)
	}
	if cfg.CapitalConfig.InitialCapital != 10 || !cfg.CapitalConfig.Compounding {
		t.Errorf("unexpected capital defaults: %+v", cfg.CapitalConfig)
	}
	if cfg.FeesConfig.TakerPercent != 0.04 || cfg.FeesConfig.MinFee != 0.1 {
		t.Errorf("unexpected fee defaults: %+v", cfg.FeesConfig)
	}
}

// TestEnvOverrides verifies environment variables win over defaults.
func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRADING_INSTRUMENTS", "bitcoin,dogecoin")
	t.Setenv("TRADING_TICK_INTERVAL_SECS", "10")
	t.Setenv("CAPITAL_INITIAL", "250")
	t.Setenv("CAPITAL_COMPOUNDING", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if len(cfg.TradingConfig.Instruments) != 2 || cfg.TradingConfig.Instruments[1] != "dogecoin" {
		t.Errorf("instrument override not applied: %v", cfg.TradingConfig.Instruments)
	}
	if cfg.TradingConfig.TickIntervalSecs != 10 {
		t.Errorf("tick interval override not applied: %d", cfg.TradingConfig.TickIntervalSecs)
	}
	if cfg.CapitalConfig.InitialCapital != 250 || cfg.CapitalConfig.Compounding {
		t.Errorf("capital overrides not applied: %+v", cfg.CapitalConfig)
	}
	if cfg.LoggingConfig.Level != "debug" {
		t.Errorf("log level override not applied: %s", cfg.LoggingConfig.Level)
	}
}

// TestValidateRejectsBadValues verifies each fail-fast check.
func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no instruments", func(c *Config) { c.TradingConfig.Instruments = nil }},
		{"negative tick", func(c *Config) { c.TradingConfig.TickIntervalSecs = -1 }},
		{"confidence out of range", func(c *Config) { c.TradingConfig.MinConfidence = 120 }},
		{"negative fees", func(c *Config) { c.FeesConfig.TakerPercent = -0.1 }},
		{"zero capital", func(c *Config) { c.CapitalConfig.InitialCapital = -5 }},
		{"inverted trade sizes", func(c *Config) { c.CapitalConfig.MaxTradeSize = c.CapitalConfig.MinTradeSize / 2 }},
		{"inverted leverage", func(c *Config) { c.LeverageConfig.MaxLeverage = 1 }},
		{"zero feed timeout", func(c *Config) { c.FeedConfig.TimeoutSecs = -1 }},
	}

	for _, tc := range cases {
		cfg := &Config{}
		applyDefaults(cfg)
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

// TestTickInterval verifies the duration conversion.
func TestTickInterval(t *testing.T) {
	tc := TradingConfig{TickIntervalSecs: 5}
	if tc.TickInterval() != 5*time.Second {
		t.Errorf("expected 5s, got %v", tc.TickInterval())
	}
}

// TestGenerateSampleConfig verifies the sample file round-trips to a valid
// config.
func TestGenerateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := GenerateSampleConfig(path); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config should be valid JSON: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config should validate: %v", err)
	}
}
