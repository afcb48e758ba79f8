package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const devJWTSecret = "dev_secret"

type Config struct {
	Port    string
	Env     string
	Store   string
	MongoDB MongoConfig
	Redis   RedisConfig
	Admin   AdminConfig

	JWTSecret       string
	IssueDailyLimit int
	CORSOrigins     []string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Address     string
	Password    string
	DB          int
	IssuePrefix string
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg := &Config{
		Port:  getEnv("PORT", "5000"),
		Env:   getEnv("GO_ENV", "development"),
		Store: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoDB: MongoConfig{
			URI:      os.Getenv("MONGODB_URI"),
			Database: getEnv("MONGODB_DATABASE", "publicseva"),
		},
		Redis: RedisConfig{
			Address:     os.Getenv("REDIS_ADDRESS"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			IssuePrefix: getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
		},
		Admin: AdminConfig{
			Name:     os.Getenv("ADMIN_NAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.Redis.DB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.IssueDailyLimit, err = getEnvAsInt("ISSUE_DAILY_LIMIT", 10); err != nil {
		return nil, err
	}

	switch cfg.Store {
	case "mongo":
		if cfg.MongoDB.URI == "" {
			return nil, fmt.Errorf("please define the MONGODB_URI environment variable")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Warn().Msg("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
