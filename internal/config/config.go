package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort          string
	MongoURI          string
	MongoDBName       string
	RedisAddr         string
	RedisPassword     string
	KafkaBrokers      []string
	KafkaTopic        string
	KafkaGroupID      string
	JWTSecret         string
	PaymentGatewayURL string
	PaymentTimeout    time.Duration
	RequestTimeout    time.Duration
}

// Load reads configuration from the environment, seeded by a .env file when
// one exists.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "checkout-finalized"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "orders-consumer"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		PaymentGatewayURL: getEnv("PAYMENT_GATEWAY_URL", "http://localhost:9090"),
		PaymentTimeout:    getDuration("PAYMENT_TIMEOUT", 10*time.Second),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
