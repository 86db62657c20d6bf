package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string

	// API Configuration
	APIPort string
	APIHost string

	// JWT (optional; empty disables auth on admin routes)
	JWTSecret string

	// Shopify OAuth app
	ShopifyClientID     string
	ShopifyClientSecret string

	// Nuvemshop OAuth app
	NuvemshopClientID     string
	NuvemshopClientSecret string

	// Scheduler
	SyncIntervalMinutes int

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:           getEnv("DATABASE_URL", "sqlite://catalogsync.db"),
		KafkaBrokers:          getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "catalog-events"),
		APIPort:               getEnv("API_PORT", "8080"),
		APIHost:               getEnv("API_HOST", "0.0.0.0"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		ShopifyClientID:       getEnv("SHOPIFY_CLIENT_ID", ""),
		ShopifyClientSecret:   getEnv("SHOPIFY_CLIENT_SECRET", ""),
		NuvemshopClientID:     getEnv("NUVEMSHOP_CLIENT_ID", ""),
		NuvemshopClientSecret: getEnv("NUVEMSHOP_CLIENT_SECRET", ""),
		SyncIntervalMinutes:   getEnvAsInt("SYNC_INTERVAL_MINUTES", 30),
		Env:                   getEnv("ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
