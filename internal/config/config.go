package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/catalog/pkg/config"
	"github.com/Skotchmaster/catalog/pkg/tokens"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	TokenIssuer      string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CleanupInterval  time.Duration
	CleanupRetention time.Duration
}

// Load reads .env (if present) and the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("notice: %s not loaded: %v, using process environment", envFile, err)
		}
	}

	cfg := &Config{
		ServiceName: config.EnvDefault("SERVICE_NAME", "catalog"),
		ServerPort:  config.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    config.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(config.EnvDefault("JWT_REFRESH_SECRET", os.Getenv("JWT_SECRET"))),
		AccessTTL:        config.EnvDurationDefault("ACCESS_TTL", tokens.DefaultAccessTTL),
		RefreshTTL:       config.EnvDurationDefault("REFRESH_TTL", tokens.DefaultRefreshTTL),
		TokenIssuer:      config.EnvDefault("TOKEN_ISSUER", tokens.DefaultIssuer),

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "items"),

		CleanupInterval:  config.EnvDurationDefault("TOKEN_CLEANUP_INTERVAL", time.Hour),
		CleanupRetention: config.EnvDurationDefault("TOKEN_CLEANUP_RETENTION", 30*24*time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	return errors.Join(
		config.NonEmpty(c.DatabaseURL, "DATABASE_URL"),
		config.NonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET"),
	)
}

func (c *Config) TokenConfig() tokens.Config {
	return tokens.Config{
		AccessSecret:  c.JWTAccessSecret,
		RefreshSecret: c.JWTRefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
		Issuer:        c.TokenIssuer,
	}
}
