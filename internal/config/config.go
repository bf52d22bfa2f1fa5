// Package config defines the scanner's configuration: defaults, optional
// TOML file, and SCANNER_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration. Fields come from Defaults, then an
// optional TOML file, then SCANNER_* environment variables.
type Config struct {
	CacheFile        string  `toml:"cache_file"`
	AlertLog         string  `toml:"alert_log"`
	SoundFile        string  `toml:"sound_file"`
	StalenessDays    int     `toml:"staleness_days"`
	PercentThreshold float64 `toml:"percent_threshold"`
	TotalPages       int     `toml:"total_pages"`
	PlaySound        bool    `toml:"play_sound"`
	Verbose          bool    `toml:"verbose"`
	Source           string  `toml:"source"`
	LogLevel         string  `toml:"log_level"`

	Skinport SkinportConfig `toml:"skinport"`
	CSDeals  CSDealsConfig  `toml:"csdeals"`
	Push     PushConfig     `toml:"push"`
	Sheets   SheetsConfig   `toml:"sheets"`
}

// SkinportConfig holds the browse query parameters for the Skinport source.
type SkinportConfig struct {
	SortBy   string `toml:"sort_by"`
	Order    string `toml:"order"`
	PriceMin int    `toml:"price_min"`
	PriceMax int    `toml:"price_max"`
}

// CSDealsConfig holds the CS.Deals source parameters. Prices are in EUR;
// FixedRate pins the USD to EUR conversion, 0 means resolve it live.
type CSDealsConfig struct {
	MinPrice  float64 `toml:"min_price"`
	MaxPrice  float64 `toml:"max_price"`
	FixedRate float64 `toml:"fixed_rate"`
}

// PushConfig holds the ntfy-style push sink parameters.
type PushConfig struct {
	Enabled  bool   `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	Topic    string `toml:"topic"`
	Priority string `toml:"priority"`
}

// SheetsConfig holds the Google Sheets sink parameters.
type SheetsConfig struct {
	Enabled         bool   `toml:"enabled"`
	CredentialsFile string `toml:"credentials_file"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	WriteRange      string `toml:"write_range"`
}

func Defaults() Config {
	return Config{
		CacheFile:        "steam_prices.json",
		AlertLog:         "deals.txt",
		SoundFile:        "alert.mp3",
		StalenessDays:    3,
		PercentThreshold: 25,
		TotalPages:       20,
		PlaySound:        true,
		Source:           "skinport",
		LogLevel:         "info",
		Skinport: SkinportConfig{
			SortBy:   "date",
			Order:    "desc",
			PriceMin: 200,
			PriceMax: 10000,
		},
		CSDeals: CSDealsConfig{
			MinPrice: 2,
			MaxPrice: 100,
		},
		Push: PushConfig{
			Priority: "high",
		},
		Sheets: SheetsConfig{
			WriteRange: "Deals!A:I",
		},
	}
}

// Load merges the optional TOML file at path over the defaults and applies
// SCANNER_* environment overrides. An empty path skips the file. The result
// is not validated; call Validate after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.CacheFile, "SCANNER_CACHE_FILE")
	setStr(&cfg.AlertLog, "SCANNER_ALERT_LOG")
	setStr(&cfg.SoundFile, "SCANNER_SOUND_FILE")
	setInt(&cfg.StalenessDays, "SCANNER_STALENESS_DAYS")
	setFloat64(&cfg.PercentThreshold, "SCANNER_PERCENT_THRESHOLD")
	setInt(&cfg.TotalPages, "SCANNER_TOTAL_PAGES")
	setBool(&cfg.PlaySound, "SCANNER_PLAY_SOUND")
	setBool(&cfg.Verbose, "SCANNER_VERBOSE")
	setStr(&cfg.Source, "SCANNER_SOURCE")
	setStr(&cfg.LogLevel, "SCANNER_LOG_LEVEL")

	setStr(&cfg.Skinport.SortBy, "SCANNER_SKINPORT_SORT_BY")
	setStr(&cfg.Skinport.Order, "SCANNER_SKINPORT_ORDER")
	setInt(&cfg.Skinport.PriceMin, "SCANNER_SKINPORT_PRICE_MIN")
	setInt(&cfg.Skinport.PriceMax, "SCANNER_SKINPORT_PRICE_MAX")

	setFloat64(&cfg.CSDeals.MinPrice, "SCANNER_CSDEALS_MIN_PRICE")
	setFloat64(&cfg.CSDeals.MaxPrice, "SCANNER_CSDEALS_MAX_PRICE")
	setFloat64(&cfg.CSDeals.FixedRate, "SCANNER_CSDEALS_FIXED_RATE")

	setBool(&cfg.Push.Enabled, "SCANNER_PUSH_ENABLED")
	setStr(&cfg.Push.BaseURL, "SCANNER_PUSH_BASE_URL")
	setStr(&cfg.Push.Topic, "SCANNER_PUSH_TOPIC")
	setStr(&cfg.Push.Priority, "SCANNER_PUSH_PRIORITY")

	setBool(&cfg.Sheets.Enabled, "SCANNER_SHEETS_ENABLED")
	setStr(&cfg.Sheets.CredentialsFile, "SCANNER_SHEETS_CREDENTIALS_FILE")
	setStr(&cfg.Sheets.SpreadsheetID, "SCANNER_SHEETS_SPREADSHEET_ID")
	setStr(&cfg.Sheets.WriteRange, "SCANNER_SHEETS_WRITE_RANGE")
}

// Validate checks the merged configuration for values the scanner cannot run
// with.
func (c *Config) Validate() error {
	if c.CacheFile == "" {
		return fmt.Errorf("cache_file must not be empty")
	}
	if c.StalenessDays <= 0 {
		return fmt.Errorf("staleness_days must be positive, got %d", c.StalenessDays)
	}
	if c.PercentThreshold <= 0 {
		return fmt.Errorf("percent_threshold must be positive, got %g", c.PercentThreshold)
	}
	if c.TotalPages < 0 {
		return fmt.Errorf("total_pages must not be negative, got %d", c.TotalPages)
	}
	switch c.Source {
	case "skinport", "csdeals":
	default:
		return fmt.Errorf("unknown source %q (want skinport or csdeals)", c.Source)
	}
	if c.Push.Enabled && (c.Push.BaseURL == "" || c.Push.Topic == "") {
		return fmt.Errorf("push sink enabled but base_url or topic is empty")
	}
	if c.Sheets.Enabled && (c.Sheets.CredentialsFile == "" || c.Sheets.SpreadsheetID == "") {
		return fmt.Errorf("sheets sink enabled but credentials_file or spreadsheet_id is empty")
	}
	return nil
}

// StalenessWindow converts the configured day count to a duration.
func (c *Config) StalenessWindow() time.Duration {
	return time.Duration(c.StalenessDays) * 24 * time.Hour
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
