package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Elasticity Elasticity `mapstructure:"elasticity"`
	Scenario   Scenario   `mapstructure:"scenario"`
	Competitor Competitor `mapstructure:"competitor"`
	Logger     Logger     `mapstructure:"logger"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
}

// Elasticity holds the tunables of the estimation pipeline.
type Elasticity struct {
	MinSamples         int     `mapstructure:"min_samples"`
	ZeroQuantityPolicy string  `mapstructure:"zero_quantity_policy"` // "drop" or "floor"
	QuantityFloor      float64 `mapstructure:"quantity_floor"`
	BootstrapIters     int     `mapstructure:"bootstrap_iterations"`
	BootstrapSeed      int64   `mapstructure:"bootstrap_seed"` // 0 means time-seeded
	MaxConcurrent      int     `mapstructure:"max_concurrent"`
	InelasticPriceCap  float64 `mapstructure:"inelastic_price_cap"` // max raise over current price, e.g. 0.5
}

// Scenario holds the what-if simulation limits.
type Scenario struct {
	MaxIncreasePercent float64 `mapstructure:"max_increase_percent"`
	MaxDecreasePercent float64 `mapstructure:"max_decrease_percent"`
	DefaultDays        int     `mapstructure:"default_days"`
	BaselineDays       int     `mapstructure:"baseline_days"`
}

// Competitor holds the configuration for the competitor price feed.
type Competitor struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the HTTP server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("elasticity.min_samples", 10)
	viper.SetDefault("elasticity.zero_quantity_policy", "drop")
	viper.SetDefault("elasticity.quantity_floor", 0.5)
	viper.SetDefault("elasticity.bootstrap_iterations", 100)
	viper.SetDefault("elasticity.bootstrap_seed", 0)
	viper.SetDefault("elasticity.max_concurrent", 4)
	viper.SetDefault("elasticity.inelastic_price_cap", 0.5)
	viper.SetDefault("scenario.max_increase_percent", 20)
	viper.SetDefault("scenario.max_decrease_percent", 30)
	viper.SetDefault("scenario.default_days", 30)
	viper.SetDefault("scenario.baseline_days", 90)
	viper.SetDefault("competitor.rate_limit", 10) // requests per second
	viper.SetDefault("competitor.rate_limit_burst", 5)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "elasticrev.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
