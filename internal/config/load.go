package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, with dots replaced
// by underscores: server.port becomes HINDI_SRS_SERVER_PORT.
const envPrefix = "HINDI_SRS"

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables, applies defaults, and validates
// the result. Environment variables win over the file. Returns a populated
// Config or an error if a required setting is missing or out of range.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key with viper. Keys without a meaningful
// default get a zero value so AutomaticEnv can still bind them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_requests_per_minute", 30)

	v.SetDefault("srs.target_retention", 0.9)
	v.SetDefault("srs.max_new_cards_per_session", 10)
	v.SetDefault("srs.max_reviews_per_session", 20)
	v.SetDefault("srs.fuzzy_match_threshold", 0.85)

	v.SetDefault("session.ttl_minutes", 120)
}
