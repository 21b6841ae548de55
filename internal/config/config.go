package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"        validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Task      TaskConfig      `mapstructure:"task"       validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication and authorization settings.
type AuthConfig struct {
	// JWTSecret signs access tokens; HMAC requires a sufficiently long key.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access token lifetime in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// BcryptCost is the work factor for password hashing.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// LLMConfig contains settings for the external generation service.
type LLMConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string `mapstructure:"api_key" validate:"required"`

	// ModelName selects the generation model.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// GenerationTimeoutSeconds is the hard SLA for a generation request,
	// retries included.
	GenerationTimeoutSeconds int `mapstructure:"generation_timeout_seconds" validate:"required,gt=0"`

	// MaxAttempts is the total attempt budget per generation request.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1"`

	// RetryBaseDelayMs is the backoff before the first retry, in
	// milliseconds; subsequent retries double it.
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" validate:"required,gt=0"`
}

// RateLimitConfig bounds outbound calls to the generation service.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained per-key rate.
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"required,gt=0"`

	// Burst is the per-key burst allowance.
	Burst int `mapstructure:"burst" validate:"required,gt=0"`

	// BucketTTLSeconds is how long an idle per-key bucket survives before
	// it is evicted.
	BucketTTLSeconds int `mapstructure:"bucket_ttl_seconds" validate:"required,gt=0"`
}

// TaskConfig sizes the background job pipeline.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
}
