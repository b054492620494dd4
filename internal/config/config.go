package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8000"`

	// Empty DSN means no database; the server starts in degraded mode and
	// chat works without persisted history.
	DBDSN string `env:"DB_DSN"`

	// Identity service
	IdentityMode       string `env:"IDENTITY_MODE" envDefault:"remote"` // remote | jwt
	IdentityServiceURL string `env:"IDENTITY_SERVICE_URL"`
	IdentityServiceKey string `env:"IDENTITY_SERVICE_KEY"`
	JWTSecret          string `env:"JWT_SECRET"`

	// Completion provider
	AIProvider    string `env:"AI_PROVIDER" envDefault:"openai"` // openai | openai-chat
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Optional redis cache for identity verification results
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	TokenCacheTTL time.Duration `env:"TOKEN_CACHE_TTL" envDefault:"60s"`

	// Optional rabbitmq turn-event publishing
	RabbitURL   string `env:"RABBIT_URL"`
	RabbitQueue string `env:"RABBIT_QUEUE" envDefault:"chat_turns"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
