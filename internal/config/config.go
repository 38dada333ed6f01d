package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Server struct {
		// AdminToken guards the taxonomy administration endpoints.
		AdminToken string `mapstructure:"admin_token"`
	} `mapstructure:"server"`

	Vision struct {
		Provider string `mapstructure:"provider"` // "azure", "openai", or "gemini"

		Azure struct {
			Endpoint string `mapstructure:"endpoint"`
			Key      string `mapstructure:"key"`
			Features string `mapstructure:"features"`
		} `mapstructure:"azure"`

		OpenAI struct {
			APIKey string `mapstructure:"api_key"`
			Model  string `mapstructure:"model"`
		} `mapstructure:"openai"`

		Gemini struct {
			APIKey string `mapstructure:"api_key"`
			Model  string `mapstructure:"model"`
		} `mapstructure:"gemini"`
	} `mapstructure:"vision"`

	Match struct {
		// Threshold is the minimum combined score for a match; inclusive
		// lower bound. Tunable without a code change.
		Threshold float64 `mapstructure:"threshold"`
		// CacheTTL bounds taxonomy snapshot staleness.
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"match"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("vision.provider", "azure")
	viper.SetDefault("vision.azure.features", "Tags")
	viper.SetDefault("match.threshold", 0.6)
	viper.SetDefault("match.cache_ttl", 5*time.Minute)

	viper.AutomaticEnv()
	viper.BindEnv("database.dsn", "DATABASE_DSN")
	viper.BindEnv("server.admin_token", "FARMSTAND_ADMIN_TOKEN")
	viper.BindEnv("vision.azure.endpoint", "AZURE_VISION_ENDPOINT")
	viper.BindEnv("vision.azure.key", "AZURE_VISION_KEY")
	viper.BindEnv("vision.openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("vision.gemini.api_key", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
