package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Payment    PaymentConfig
	Sweeper    SweeperConfig
	Reconciler ReconcilerConfig
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type PaymentConfig struct {
	// BaseURL of the hosted-checkout provider API.
	BaseURL string
	// APIKey sent as a bearer token on session creation.
	APIKey string
	// WebhookSecret is the shared HMAC key for inbound notifications.
	WebhookSecret string
	// SessionTTL is how long a hosted checkout session stays payable.
	SessionTTL time.Duration
}

type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
}

type ReconcilerConfig struct {
	Interval time.Duration
	Lookback time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server:     ServerConfig{Addr: getEnv("SERVER_ADDR", ":8080")},
		Database:   GetDatabaseConfig(),
		Redis:      GetRedisConfig(),
		Payment:    GetPaymentConfig(),
		Sweeper:    GetSweeperConfig(),
		Reconciler: GetReconcilerConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // test DB runs on 5433
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // test Redis runs on 6380
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:     ServerConfig{Addr: ":0"},
		Database:   *testConfig,
		Redis:      testRedisConfig,
		Payment:    PaymentConfig{WebhookSecret: "test-webhook-secret", SessionTTL: 30 * time.Minute},
		Sweeper:    SweeperConfig{Interval: time.Second, BatchSize: 100},
		Reconciler: ReconcilerConfig{Interval: time.Minute, Lookback: 24 * time.Hour},
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetPaymentConfig() PaymentConfig {
	return PaymentConfig{
		BaseURL:       getEnv("PAYMENT_BASE_URL", "https://api.payments.example.com"),
		APIKey:        getEnv("PAYMENT_API_KEY", ""),
		WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		SessionTTL:    getDurationEnv("PAYMENT_SESSION_TTL", 30*time.Minute),
	}
}

func GetSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:  getDurationEnv("SWEEPER_INTERVAL", 30*time.Second),
		BatchSize: getIntEnv("SWEEPER_BATCH_SIZE", 100),
	}
}

func GetReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		Interval: getDurationEnv("RECONCILER_INTERVAL", time.Hour),
		Lookback: getDurationEnv("RECONCILER_LOOKBACK", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
