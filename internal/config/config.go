package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data backends
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DataBackend  string
	SeedDemoData bool
	MongoURI     string
	MongoDBName  string

	SQLDriver      string
	SQLDSN         string
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	NoteCacheTTL  time.Duration

	KafkaBrokers  []string
	SettingsTopic string

	CartServiceAddr string
	ResolveWorkers  int
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8086"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendMemory)),
		SeedDemoData: getEnv("SEED_DEMO_DATA", "false") == "true",
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:  getEnv("MONGO_DB_NAME", "pickupdb"),

		SQLDriver:      getEnv("SQL_DRIVER", "sqlite"),
		SQLDSN:         getEnv("SQL_DSN", "file:catalog.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		NoteCacheTTL:  getDuration("NOTE_CACHE_TTL", 15*time.Minute),

		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		SettingsTopic: getEnv("SETTINGS_TOPIC", "settings-changed"),

		CartServiceAddr: getEnv("CART_SERVICE_ADDR", "localhost:50052"),
		ResolveWorkers:  getInt("RESOLVE_WORKERS", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
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
