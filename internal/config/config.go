/*
Package config loads the service configuration from the environment.
A .env file in the working directory is read first when present.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Supported values for AI_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Supported values for STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds every tunable of the service.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// AIProvider selects the hosted model backend.
	AIProvider       string        `env:"AI_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AIRequestTimeout time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"30s"`
	AIMaxAttempts    int           `env:"AI_MAX_ATTEMPTS" envDefault:"1"`

	// StorageDriver selects where favorites and progress are persisted.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/lumi.db"`
	DatabaseURL   string `env:"DATABASE_URL"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	StateCacheSize   int     `env:"STATE_CACHE_SIZE" envDefault:"1024"`
	MaxUploadBytes   int64   `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	AnalyzeRateLimit float64 `env:"ANALYZE_RATE_LIMIT" envDefault:"1"`

	// DateLayout formats ProgressEntry.Date.
	DateLayout string `env:"DATE_LAYOUT" envDefault:"1/2/2006"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	// Missing .env is fine; real deployments use the process environment.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	switch c.AIProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=%s", ProviderGemini)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=%s", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}

	switch c.StorageDriver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.AIMaxAttempts < 1 {
		return fmt.Errorf("AI_MAX_ATTEMPTS must be at least 1")
	}
	if c.StateCacheSize < 1 {
		return fmt.Errorf("STATE_CACHE_SIZE must be at least 1")
	}
	return nil
}
