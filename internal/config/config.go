package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration
type Config struct {
	HTTPPort  string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisPass string
	AMQPURI   string
	JWTSecret string

	AutoSaveInterval time.Duration
}

// Load reads configuration from the environment, with a best-effort .env file
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "debatehub"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:        getEnv("REDIS_PASSWORD", ""),
		AMQPURI:          getEnv("AMQP_URI", ""),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		AutoSaveInterval: getEnvDuration("AUTOSAVE_INTERVAL_SEC", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallbackSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
		log.Printf("Invalid %s value %q, using default", key, v)
	}
	return time.Duration(fallbackSec) * time.Second
}
