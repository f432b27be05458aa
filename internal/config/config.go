package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
}

// ServerConfig contains HTTP server configuration for the dashboard.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout" envconfig:"PIPELINE_TIMEOUT" default:"30m"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DataConfig controls dataset selection and cleaning parameters.
type DataConfig struct {
	// UseSample forces the bundled sample dataset even when processed
	// data is available.
	UseSample bool `yaml:"use_sample" envconfig:"USE_SAMPLE" default:"false"`
	// OutlierPercentile is the cap applied to quantity and price during
	// cleaning. Records above this percentile are dropped.
	OutlierPercentile float64 `yaml:"outlier_percentile" envconfig:"OUTLIER_PERCENTILE" default:"0.99" validate:"gt=0,lte=1"`
	// HomeCountry is the market split anchor in geographic reports.
	HomeCountry string `yaml:"home_country" envconfig:"HOME_COUNTRY" default:"United Kingdom"`
}

// SecurityConfig contains request-level protections for the dashboard.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// Load loads configuration from environment variables and, when present,
// the config.yaml next to the executable. Environment takes precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("RETAIL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence:
// zero-valued env fields fall back to the file values).
func mergeConfigs(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.IdleTimeout == 0 {
		envCfg.Server.IdleTimeout = fileCfg.Server.IdleTimeout
	}
	if envCfg.Server.ShutdownTimeout == 0 {
		envCfg.Server.ShutdownTimeout = fileCfg.Server.ShutdownTimeout
	}
	if envCfg.Logging.Level == "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if envCfg.Logging.Output == "" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if envCfg.Logging.FilePath == "" {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}
	if envCfg.Data.OutlierPercentile == 0 {
		envCfg.Data.OutlierPercentile = fileCfg.Data.OutlierPercentile
	}
	if envCfg.Data.HomeCountry == "" {
		envCfg.Data.HomeCountry = fileCfg.Data.HomeCountry
	}

	return envCfg
}

// Validate checks the configuration against the struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the expected config file location next to
// the executable, falling back to the working directory.
func getConfigFilePath() string {
	if exeDir, err := executableDir(); err == nil {
		return exeDir + string(os.PathSeparator) + "config.yaml"
	}
	return "config.yaml"
}
