package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML scalars like "30s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds all application configuration.
type Config struct {
	Paths struct {
		DataDir     string `yaml:"data_dir"`
		MetadataDir string `yaml:"metadata_dir"`
		LogDir      string `yaml:"log_dir"`
	} `yaml:"paths"`
	Source struct {
		BaseURL           string        `yaml:"base_url"`
		MarketWatchPath   string        `yaml:"market_watch_path"`
		CompanyPath       string        `yaml:"company_path"`
		HistoricalPath    string        `yaml:"historical_path"`
		RequestTimeout    Duration `yaml:"request_timeout"`
		MaxRetries        int      `yaml:"max_retries"`
		RetryDelay        Duration `yaml:"retry_delay"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
	} `yaml:"source"`
	Reconcile struct {
		NameLengthFloor int `yaml:"name_length_floor"`
		WordLengthFloor int `yaml:"word_length_floor"`
	} `yaml:"reconcile"`
	Synthetic struct {
		StartDate  string  `yaml:"start_date"`
		Drift      float64 `yaml:"drift"`
		Volatility float64 `yaml:"volatility"`
	} `yaml:"synthetic"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	MaxTickers int  `yaml:"max_tickers"`
	Mock       bool `yaml:"mock"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PSX_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("PSX_DATA_DIR"); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := os.Getenv("PSX_METADATA_DIR"); v != "" {
		cfg.Paths.MetadataDir = v
	}
	if v := os.Getenv("PSX_LOG_DIR"); v != "" {
		cfg.Paths.LogDir = v
	}
	if v := os.Getenv("PSX_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PSX_MOCK"); v != "" {
		cfg.Mock = v == "true" || v == "1"
	}
	if v := os.Getenv("PSX_MAX_TICKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTickers = n
		}
	}

	// Defaults
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "data"
	}
	if cfg.Paths.MetadataDir == "" {
		cfg.Paths.MetadataDir = "metadata"
	}
	if cfg.Paths.LogDir == "" {
		cfg.Paths.LogDir = "logs"
	}
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "https://dps.psx.com.pk"
	}
	if cfg.Source.MarketWatchPath == "" {
		cfg.Source.MarketWatchPath = "/market-watch"
	}
	if cfg.Source.CompanyPath == "" {
		cfg.Source.CompanyPath = "/company/"
	}
	if cfg.Source.HistoricalPath == "" {
		cfg.Source.HistoricalPath = "/company/%s/historical"
	}
	if cfg.Source.RequestTimeout == 0 {
		cfg.Source.RequestTimeout = Duration(30 * time.Second)
	}
	if cfg.Source.MaxRetries == 0 {
		cfg.Source.MaxRetries = 3
	}
	if cfg.Source.RetryDelay == 0 {
		cfg.Source.RetryDelay = Duration(2 * time.Second)
	}
	if cfg.Source.RequestsPerSecond == 0 {
		cfg.Source.RequestsPerSecond = 2
	}
	if cfg.Reconcile.NameLengthFloor == 0 {
		cfg.Reconcile.NameLengthFloor = 10
	}
	if cfg.Reconcile.WordLengthFloor == 0 {
		cfg.Reconcile.WordLengthFloor = 3
	}
	if cfg.Synthetic.StartDate == "" {
		cfg.Synthetic.StartDate = "2014-01-01"
	}
	if cfg.Synthetic.Drift == 0 {
		cfg.Synthetic.Drift = 0.0002
	}
	if cfg.Synthetic.Volatility == 0 {
		cfg.Synthetic.Volatility = 0.02
	}

	return cfg, nil
}

// Validate checks that all required fields are set and coherent.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Source.MaxRetries < 1 {
		return fmt.Errorf("source.max_retries must be at least 1")
	}
	if c.Synthetic.Volatility <= 0 {
		return fmt.Errorf("synthetic.volatility must be positive")
	}
	if _, err := time.Parse("2006-01-02", c.Synthetic.StartDate); err != nil {
		return fmt.Errorf("synthetic.start_date: %w", err)
	}
	if c.MaxTickers < 0 {
		return fmt.Errorf("max_tickers must not be negative")
	}
	return nil
}
