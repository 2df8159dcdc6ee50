package app

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/klabast/wb-services/tomme-kalender/internal/matcher"
	"github.com/klabast/wb-services/tomme-kalender/internal/property"
	"github.com/klabast/wb-services/tomme-kalender/internal/schedule"
)

// Constants
const (
	DefaultPort = 8080
	DefaultYear = 2025

	// Error messages
	ErrInvalidYear         = "Invalid year"
	ErrUnsupportedYear     = "Unsupported year"
	ErrMissingAddress      = "Missing address"
	ErrInvalidFormat       = "Invalid format"
	ErrInternalServer      = "Internal server error"
	ErrFailedToGenerateICS = "Failed to generate calendar"
	ErrDatasetNotLoaded    = "Dataset not loaded"

	// ICS constants
	ICSProductID = "-//Tommekalender//NO"
	ICSTimezone  = "Europe/Oslo"
	ICSDomain    = "tommekalender"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	Port int `mapstructure:"port"`

	DataFile     string `mapstructure:"data_file"`
	DataEncoding string `mapstructure:"data_encoding"`
	CSVDelimiter string `mapstructure:"csv_delimiter"`
	NameColumn   string `mapstructure:"name_column"`
	RouteColumn  string `mapstructure:"route_column"`
	StreamColumn string `mapstructure:"stream_column"`
	DatabaseURL  string `mapstructure:"database_url"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	ReloadCron string `mapstructure:"reload_cron"`

	DefaultYear    int `mapstructure:"default_year"`
	MatchThreshold int `mapstructure:"match_threshold"`
	MatchLimit     int `mapstructure:"match_limit"`

	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("data_file", "data/eiendommer.csv")
	v.SetDefault("data_encoding", property.EncodingLatin1)
	v.SetDefault("csv_delimiter", ";")
	v.SetDefault("name_column", "Eiendomsnavn")
	v.SetDefault("route_column", "Rutekode")
	v.SetDefault("stream_column", "Avfallstype")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", "24h")
	v.SetDefault("reload_cron", "")
	v.SetDefault("default_year", DefaultYear)
	v.SetDefault("match_threshold", matcher.DefaultThreshold)
	v.SetDefault("match_limit", matcher.DefaultLimit)
	v.SetDefault("log_level", "info")
	v.SetDefault("environment", "development")
}

// LoadConfig reads configuration from the environment and a .env file (if present)
func LoadConfig() (*Config, error) {
	// godotenv.Load does not override variables that are already set
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		return fmt.Errorf("MATCH_THRESHOLD must be between 0 and 100, got %d", c.MatchThreshold)
	}
	if c.MatchLimit < 1 {
		return fmt.Errorf("MATCH_LIMIT must be at least 1, got %d", c.MatchLimit)
	}
	if err := schedule.ValidateYear(c.DefaultYear); err != nil {
		return fmt.Errorf("DEFAULT_YEAR: %w", err)
	}
	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		return fmt.Errorf("CSV_DELIMITER must be a single character, got %q", c.CSVDelimiter)
	}
	if c.DatabaseURL == "" && c.DataFile == "" {
		return fmt.Errorf("either DATA_FILE or DATABASE_URL must be set")
	}
	return nil
}

// Delimiter returns CSVDelimiter as a rune
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}
