package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete trader configuration.
type Config struct {
	Trading   TradingConfig   `yaml:"trading"`
	Signals   SignalsConfig   `yaml:"signals"`
	Storage   StorageConfig   `yaml:"storage"`
	Lock      LockConfig      `yaml:"lock"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Predictor PredictorConfig `yaml:"predictor"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Log       LogConfig       `yaml:"log"`
}

// TradingConfig holds the risk profile. Everything here is sweepable for
// backtesting — none of it is hard-coded in the engine.
type TradingConfig struct {
	InitialBalance  float64  `yaml:"initial_balance"`
	MaxPositionSize float64  `yaml:"max_position_size"` // fraction of wallet per trade
	StopLossPct     float64  `yaml:"stop_loss_pct"`
	TakeProfitPct   float64  `yaml:"take_profit_pct"`
	MinConfidence   float64  `yaml:"min_confidence"`
	MinTradeValue   float64  `yaml:"min_trade_value"`
	LookbackDays    int      `yaml:"lookback_days"`
	IntervalSeconds int      `yaml:"interval_seconds"`
	CryptoSymbols   []string `yaml:"crypto_symbols"`
	ForexPairs      []string `yaml:"forex_pairs"`
}

// SignalsConfig tunes the evaluator thresholds and the confidence model.
type SignalsConfig struct {
	CryptoEntryThreshold   float64 `yaml:"crypto_entry_threshold"`
	ForexEntryThreshold    float64 `yaml:"forex_entry_threshold"`
	CryptoDeclineThreshold float64 `yaml:"crypto_decline_threshold"`
	ForexDeclineThreshold  float64 `yaml:"forex_decline_threshold"`
	CryptoConfidenceMult   float64 `yaml:"crypto_confidence_mult"`
	ForexConfidenceMult    float64 `yaml:"forex_confidence_mult"`
}

// StorageConfig controls where the ledger lives.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// LockConfig selects the session lease backend.
type LockConfig struct {
	Backend    string `yaml:"backend"` // sqlite | redis
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// FeedsConfig configures the market data sources.
type FeedsConfig struct {
	ForexBase string `yaml:"forex_base"`
}

// PredictorConfig points at the prediction service.
type PredictorConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TelegramConfig enables the Telegram notifier when a token is set.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file and the .env file if present. Env values override
// the YAML for the keys that map to them.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// Interval returns the cycle interval as a time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Trading.IntervalSeconds) * time.Second
}

// Lookback returns the replay window as a time.Duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Trading.LookbackDays) * 24 * time.Hour
}

// LeaseTTL returns the session lease TTL.
func (c *Config) LeaseTTL() time.Duration {
	return time.Duration(c.Lock.TTLSeconds) * time.Second
}

// PredictorTimeout returns the per-call prediction service timeout.
func (c *Config) PredictorTimeout() time.Duration {
	return time.Duration(c.Predictor.TimeoutSeconds) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("INITIAL_WALLET_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.InitialBalance = f
		}
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Trading.InitialBalance <= 0 {
		cfg.Trading.InitialBalance = 50
	}
	if cfg.Trading.MaxPositionSize <= 0 {
		cfg.Trading.MaxPositionSize = 0.2
	}
	if cfg.Trading.StopLossPct <= 0 {
		cfg.Trading.StopLossPct = 0.05
	}
	if cfg.Trading.TakeProfitPct <= 0 {
		cfg.Trading.TakeProfitPct = 0.10
	}
	if cfg.Trading.MinConfidence <= 0 {
		cfg.Trading.MinConfidence = 0.6
	}
	if cfg.Trading.MinTradeValue <= 0 {
		cfg.Trading.MinTradeValue = 1
	}
	if cfg.Trading.LookbackDays <= 0 {
		cfg.Trading.LookbackDays = 30
	}
	if cfg.Trading.IntervalSeconds <= 0 {
		cfg.Trading.IntervalSeconds = 300
	}
	if len(cfg.Trading.CryptoSymbols) == 0 {
		cfg.Trading.CryptoSymbols = []string{"BTC", "ETH", "ADA", "SOL", "LINK", "AVAX"}
	}
	if len(cfg.Trading.ForexPairs) == 0 {
		cfg.Trading.ForexPairs = []string{"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD"}
	}
	if cfg.Signals.CryptoEntryThreshold <= 0 {
		cfg.Signals.CryptoEntryThreshold = 0.02
	}
	if cfg.Signals.ForexEntryThreshold <= 0 {
		cfg.Signals.ForexEntryThreshold = 0.001
	}
	if cfg.Signals.CryptoDeclineThreshold <= 0 {
		cfg.Signals.CryptoDeclineThreshold = 0.01
	}
	if cfg.Signals.ForexDeclineThreshold <= 0 {
		cfg.Signals.ForexDeclineThreshold = 0.0005
	}
	if cfg.Signals.CryptoConfidenceMult <= 0 {
		cfg.Signals.CryptoConfidenceMult = 10
	}
	if cfg.Signals.ForexConfidenceMult <= 0 {
		cfg.Signals.ForexConfidenceMult = 20
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "aitrader.db"
	}
	if cfg.Lock.Backend == "" {
		cfg.Lock.Backend = "sqlite"
	}
	if cfg.Lock.TTLSeconds <= 0 {
		cfg.Lock.TTLSeconds = 120
	}
	if cfg.Predictor.TimeoutSeconds <= 0 {
		cfg.Predictor.TimeoutSeconds = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
