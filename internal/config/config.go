package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// App
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Local store
	DBPath string `mapstructure:"DB_PATH"`

	// Remote API
	APIBaseURL         string `mapstructure:"API_BASE_URL"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// Sync circuit breaker
	CBFailureThreshold int `mapstructure:"CB_FAILURE_THRESHOLD"`
	CBSuccessThreshold int `mapstructure:"CB_SUCCESS_THRESHOLD"`
	CBOpenTimeoutSecs  int `mapstructure:"CB_OPEN_TIMEOUT_SECONDS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PATH", "washpos.db")
	viper.SetDefault("API_BASE_URL", "http://localhost:3001/api")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("CB_FAILURE_THRESHOLD", 5)
	viper.SetDefault("CB_SUCCESS_THRESHOLD", 2)
	viper.SetDefault("CB_OPEN_TIMEOUT_SECONDS", 60)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
