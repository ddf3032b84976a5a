package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	DataForSEO DataForSEOConfig `yaml:"dataforseo" mapstructure:"dataforseo"`
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the audit store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// DataForSEOConfig holds ranking-data provider credentials and request defaults.
type DataForSEOConfig struct {
	Login                  string  `yaml:"login" mapstructure:"login"`
	Password               string  `yaml:"password" mapstructure:"password"`
	BaseURL                string  `yaml:"base_url" mapstructure:"base_url"`
	LocationCode           int     `yaml:"location_code" mapstructure:"location_code"`
	LanguageCode           string  `yaml:"language_code" mapstructure:"language_code"`
	IgnoreSynonyms         bool    `yaml:"ignore_synonyms" mapstructure:"ignore_synonyms"`
	IncludeClickstreamData bool    `yaml:"include_clickstream_data" mapstructure:"include_clickstream_data"`
	Limit                  int     `yaml:"limit" mapstructure:"limit"`
	RateLimit              float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs            int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnalysisConfig configures the gap analyzer.
type AnalysisConfig struct {
	MaxConcurrentFetches int `yaml:"max_concurrent_fetches" mapstructure:"max_concurrent_fetches"`
	FetchTimeoutSecs     int `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
}

// RetryConfig configures retries of transient provider failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the provider circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "content-gap.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("dataforseo.base_url", "https://api.dataforseo.com/v3")
	v.SetDefault("dataforseo.location_code", 2840)
	v.SetDefault("dataforseo.language_code", "en")
	v.SetDefault("dataforseo.ignore_synonyms", false)
	v.SetDefault("dataforseo.include_clickstream_data", false)
	v.SetDefault("dataforseo.limit", 200)
	v.SetDefault("dataforseo.rate_limit", 2.0)
	v.SetDefault("dataforseo.timeout_secs", 60)
	v.SetDefault("analysis.max_concurrent_fetches", 4)
	v.SetDefault("analysis.fetch_timeout_secs", 90)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)

	// Credentials are only set through the file or environment, but viper
	// needs a key to bind them from AutomaticEnv during Unmarshal.
	v.SetDefault("dataforseo.login", "")
	v.SetDefault("dataforseo.password", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks settings required to talk to the provider.
func (c *Config) Validate() error {
	if c.DataForSEO.Login == "" || c.DataForSEO.Password == "" {
		return eris.New("config: dataforseo login and password are required (GAP_DATAFORSEO_LOGIN, GAP_DATAFORSEO_PASSWORD)")
	}
	if c.Analysis.MaxConcurrentFetches < 1 {
		return eris.Errorf("config: analysis.max_concurrent_fetches must be at least 1, got %d", c.Analysis.MaxConcurrentFetches)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
