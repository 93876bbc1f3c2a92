package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the server and the worker.
type Config struct {
	Port      string
	RedisAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	BatchCacheTTL      time.Duration
	TrackRatePerMinute int64
	IngestRatePerSec   float64
	WorkerConcurrency  int

	// IPSalt keys the hash stored instead of visitor IPs on masking sites.
	IPSalt string

	// FirebaseEnabled mirrors pixel verifications to Firestore.
	FirebaseEnabled bool
	// KMSKeyID encrypts site ingest secrets. Empty disables ingest auth.
	KMSKeyID string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "proofpop"),

		IPSalt:          os.Getenv("IP_HASH_SALT"),
		FirebaseEnabled: os.Getenv("FIREBASE_PROJECT_ID") != "",
		KMSKeyID:        os.Getenv("AWS_KMS_KEY_ID"),
	}

	var err error
	if cfg.BatchCacheTTL, err = getDuration("BATCH_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	limit, err := getInt("TRACK_RATE_PER_MINUTE", 120)
	if err != nil {
		return nil, err
	}
	cfg.TrackRatePerMinute = int64(limit)
	if cfg.WorkerConcurrency, err = getInt("WORKER_CONCURRENCY", 10); err != nil {
		return nil, err
	}
	perSec, err := getInt("INGEST_RATE_PER_SECOND", 20)
	if err != nil {
		return nil, err
	}
	cfg.IngestRatePerSec = float64(perSec)

	return cfg, nil
}

// Validate checks the variables the database connection cannot do without.
func (c *Config) Validate() error {
	missing := []string{}
	for name, value := range map[string]string{
		"DB_HOST":     c.DBHost,
		"DB_USER":     c.DBUser,
		"DB_PASSWORD": c.DBPassword,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slog.Error("Missing required database environment variables", "required_vars", missing)
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// DatabaseDSN is the lib/pq connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
