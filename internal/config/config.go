package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"price-loader/internal/logging"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	Rates     RatesConfig     `mapstructure:"rates"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// IngestionConfig governs the incremental CSV load.
type IngestionConfig struct {
	DataDir        string `mapstructure:"data_dir"`
	CheckpointName string `mapstructure:"checkpoint_name"`
	ChunkSize      int    `mapstructure:"chunk_size"`
}

// RatesConfig captures reference-rate API connectivity.
type RatesConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	BaseCurrency   string        `mapstructure:"base_currency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	ChunkSize      int           `mapstructure:"chunk_size"`
}

// WatchConfig tunes the periodic re-ingestion loop.
type WatchConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRICELOADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Rates.BaseCurrency = strings.ToUpper(cfg.Rates.BaseCurrency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "priceloader")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("ingestion.data_dir", "data")
	v.SetDefault("ingestion.checkpoint_name", "item_prices_ingestion")
	v.SetDefault("ingestion.chunk_size", 100)

	v.SetDefault("rates.base_url", "https://api.vatcomply.com")
	v.SetDefault("rates.base_currency", "NOK")
	v.SetDefault("rates.request_timeout", "10s")
	v.SetDefault("rates.user_agent", "priceloader/1.0")
	v.SetDefault("rates.chunk_size", 50)

	v.SetDefault("watch.interval", "15m")
	v.SetDefault("watch.align_to_interval", true)
	v.SetDefault("watch.startup_delay", "0s")

	v.SetDefault("export.max_data_points", 100000)

	// Registered with an empty default so the key is visible to Unmarshal;
	// viper's AutomaticEnv only resolves keys it already knows about.
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Ingestion.CheckpointName == "" {
		return fmt.Errorf("ingestion.checkpoint_name is required")
	}
	if c.Ingestion.ChunkSize <= 0 {
		return fmt.Errorf("ingestion.chunk_size must be greater than zero")
	}
	if !currencyCodePattern.MatchString(c.Rates.BaseCurrency) {
		return fmt.Errorf("rates.base_currency must be a 3-letter currency code")
	}
	if c.Rates.ChunkSize <= 0 {
		return fmt.Errorf("rates.chunk_size must be greater than zero")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
