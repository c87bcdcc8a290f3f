package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds the tunables of the recommendation engine. The weight
// pairs/triples are expected to sum to 1 but this is not enforced; the
// defaults reproduce the production heuristic.
type EngineConfig struct {
	MaxFeatures      int           `mapstructure:"max_features" validate:"gt=0"`
	ContentWeight    float64       `mapstructure:"content_weight" validate:"gte=0,lte=1"`
	PriceWeight      float64       `mapstructure:"price_weight" validate:"gte=0,lte=1"`
	ProfileContent   float64       `mapstructure:"profile_content_weight" validate:"gte=0,lte=1"`
	ProfilePrice     float64       `mapstructure:"profile_price_weight" validate:"gte=0,lte=1"`
	ProfilePopular   float64       `mapstructure:"profile_popularity_weight" validate:"gte=0,lte=1"`
	LikeThreshold    float64       `mapstructure:"like_threshold" validate:"gte=0,lte=5"`
	TrendingPoolSize int           `mapstructure:"trending_pool_size" validate:"gt=0"`
	ResultCacheTTL   time.Duration `mapstructure:"result_cache_ttl"`
	RetrainSchedule  string        `mapstructure:"retrain_schedule"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults; an empty URL disables the warm result cache
	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Engine defaults
	viper.SetDefault("engine.max_features", 5000)
	viper.SetDefault("engine.content_weight", 0.85)
	viper.SetDefault("engine.price_weight", 0.15)
	viper.SetDefault("engine.profile_content_weight", 0.6)
	viper.SetDefault("engine.profile_price_weight", 0.3)
	viper.SetDefault("engine.profile_popularity_weight", 0.1)
	viper.SetDefault("engine.like_threshold", 4.0)
	viper.SetDefault("engine.trending_pool_size", 100)
	viper.SetDefault("engine.result_cache_ttl", "15m")
	viper.SetDefault("engine.retrain_schedule", "")
}
