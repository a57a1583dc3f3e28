package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the careercoach server.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	AI          AIConfig
	ResultCache ResultCacheConfig
	Blob        BlobConfig
	Events      EventsConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	URL               string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	HealthCheckPeriod time.Duration
}

type RedisConfig struct {
	URL        string
	SessionTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	MaxRetries       int
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig
	Breaker          BreakerConfig
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	FastModel   string
	SpeechModel string
	Voice       string
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	SpeechModel string
	Voice       string
}

type BreakerConfig struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type ResultCacheConfig struct {
	StoreTimeout time.Duration
}

type BlobConfig struct {
	Provider  string
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
	"mock":   true,
}

var validBlobProviders = map[string]bool{
	"none":  true,
	"minio": true,
	"s3":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("CAREERCOACH_PORT", 8080),
			Env:                envString("CAREERCOACH_ENV", "development"),
			LogLevel:           envLogLevel("LOG_LEVEL", slog.LevelInfo),
			CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Database: DatabaseConfig{
			URL:               os.Getenv("DATABASE_URL"),
			MaxOpenConns:      envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:      envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:   envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			HealthCheckPeriod: envDuration("DATABASE_HEALTH_CHECK_PERIOD", time.Minute),
		},
		Redis: RedisConfig{
			URL:        os.Getenv("REDIS_URL"),
			SessionTTL: envDuration("SESSION_TTL", time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  envDuration("JWT_TTL", 24*time.Hour),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			MaxRetries:       envInt("AI_MAX_RETRIES", 2),
			Gemini: GeminiConfig{
				APIKey:      os.Getenv("GEMINI_API_KEY"),
				Model:       envString("GEMINI_MODEL", "gemini-3-pro-preview"),
				FastModel:   envString("GEMINI_FAST_MODEL", "gemini-3-flash-preview"),
				SpeechModel: envString("GEMINI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
				Voice:       envString("GEMINI_VOICE", "Kore"),
			},
			OpenAI: OpenAIConfig{
				APIKey:      os.Getenv("OPENAI_API_KEY"),
				BaseURL:     os.Getenv("OPENAI_BASE_URL"),
				Model:       envString("OPENAI_MODEL", "gpt-4o"),
				SpeechModel: envString("OPENAI_SPEECH_MODEL", "tts-1"),
				Voice:       envString("OPENAI_VOICE", "alloy"),
			},
			Breaker: BreakerConfig{
				FailureThreshold: uint32(envInt("AI_BREAKER_FAILURES", 5)),
				OpenTimeout:      envDuration("AI_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			},
		},
		ResultCache: ResultCacheConfig{
			StoreTimeout: envDuration("RESULT_CACHE_STORE_TIMEOUT", 10*time.Second),
		},
		Blob: BlobConfig{
			Provider:  envString("BLOB_PROVIDER", "none"),
			Endpoint:  os.Getenv("BLOB_ENDPOINT"),
			Region:    envString("BLOB_REGION", "auto"),
			Bucket:    envString("BLOB_BUCKET", "resumes"),
			AccessKey: os.Getenv("BLOB_ACCESS_KEY"),
			SecretKey: os.Getenv("BLOB_SECRET_KEY"),
			UseSSL:    envBool("BLOB_USE_SSL", true),
		},
		Events: EventsConfig{
			RabbitMQURL: os.Getenv("RABBITMQ_URL"),
			Exchange:    envString("RABBITMQ_EXCHANGE", "career_events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAI re-reads only the AI section. Used when credentials are rotated at runtime.
func LoadAI() (AIConfig, error) {
	cfg, err := Load()
	if err != nil {
		return AIConfig{}, err
	}
	return cfg.AI, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	if err := c.AI.validate(); err != nil {
		return err
	}

	if !validBlobProviders[c.Blob.Provider] {
		return fmt.Errorf("BLOB_PROVIDER must be one of none, minio, s3; got %q", c.Blob.Provider)
	}
	if c.Blob.Provider != "none" {
		if c.Blob.Endpoint == "" {
			return fmt.Errorf("BLOB_ENDPOINT is required when BLOB_PROVIDER is %s", c.Blob.Provider)
		}
		if c.Blob.AccessKey == "" || c.Blob.SecretKey == "" {
			return fmt.Errorf("BLOB_ACCESS_KEY and BLOB_SECRET_KEY are required when BLOB_PROVIDER is %s", c.Blob.Provider)
		}
	}

	if c.Events.RabbitMQURL != "" &&
		!strings.HasPrefix(c.Events.RabbitMQURL, "amqp://") && !strings.HasPrefix(c.Events.RabbitMQURL, "amqps://") {
		return fmt.Errorf("RABBITMQ_URL must start with amqp:// or amqps://, got %q", c.Events.RabbitMQURL)
	}

	return nil
}

func (c AIConfig) validate() error {
	if c.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, openai, mock; got %q", c.Provider)
	}

	if c.Provider == "gemini" && c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}
	if c.Provider == "openai" && c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envLogLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return lvl
}
