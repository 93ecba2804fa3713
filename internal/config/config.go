package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains the Gemini integration settings for the fuzzy answer
// judge. An empty API key disables the judge; grading then falls back to
// exact matching.
type LLMConfig struct {
	GeminiAPIKey         string `mapstructure:"gemini_api_key"`
	ModelName            string `mapstructure:"model_name"`
	MaxRequestsPerMinute int    `mapstructure:"max_requests_per_minute" validate:"gt=0"`
}

// SRSConfig contains the scheduling and grading knobs.
type SRSConfig struct {
	TargetRetention       float64 `mapstructure:"target_retention" validate:"gt=0,lt=1"`
	MaxNewCardsPerSession int     `mapstructure:"max_new_cards_per_session" validate:"gte=0"`
	MaxReviewsPerSession  int     `mapstructure:"max_reviews_per_session" validate:"gt=0"`
	FuzzyMatchThreshold   float64 `mapstructure:"fuzzy_match_threshold" validate:"gt=0,lte=1"`
}

// SessionConfig contains review session lifecycle settings.
type SessionConfig struct {
	// TTLMinutes is how long an idle session is kept before the registry
	// reaps it.
	TTLMinutes int `mapstructure:"ttl_minutes" validate:"gt=0"`
}
