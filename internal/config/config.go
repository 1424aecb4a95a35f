package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DBDriver    string // "postgres" or "sqlite"
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	AMQPURL     string // empty disables the change-event mirror
}

const defaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=greencare port=5432 sslmode=disable"

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultPostgresDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		AMQPURL:     getEnv("AMQP_URL", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		log.Fatalf("[FATAL] unknown DB_DRIVER %q (postgres or sqlite)", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultPostgresDSN {
		log.Println("[WARN] DATABASE_DSN is the default value, set your own Postgres connection for production")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
