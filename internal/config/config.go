package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "TellerBank"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultKafkaTopic      = "account-events"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultLookupRateLimit = 10
	defaultRedisPoolSize   = 10
	defaultRedisTimeout    = 3 * time.Second
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	redisTimeoutSecEnvVar  = "REDIS_TIMEOUT_SECONDS"
	redisTimeoutDurEnvVar  = "REDIS_TIMEOUT"

	defaultAPIURL      = "http://localhost:8080/api/v1"
	defaultSessionFile = "loggedin"
	defaultHTTPTimeout = 10 * time.Second
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	RedisPoolSize   int
	RedisTimeout    time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	LookupRateLimit int
}

// ClientConfig holds settings shared by the command-line clients.
type ClientConfig struct {
	APIURL      string
	SessionFile string
	HTTPTimeout time.Duration
}

// Load reads an optional .env file and then the environment. Outside
// development DATABASE_URL and REDIS_URL are mandatory.
func Load() (Config, error) {
	loadDotEnv()

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", defaultKafkaTopic),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if cfg.RedisTimeout, err = durationEnv(redisTimeoutSecEnvVar, redisTimeoutDurEnvVar, defaultRedisTimeout); err != nil {
		return Config{}, err
	}
	if cfg.LookupRateLimit, err = positiveIntEnv("LOOKUP_RATE_LIMIT", defaultLookupRateLimit); err != nil {
		return Config{}, err
	}
	if cfg.RedisPoolSize, err = positiveIntEnv("REDIS_POOL_SIZE", defaultRedisPoolSize); err != nil {
		return Config{}, err
	}

	if !cfg.IsDevelopment() {
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL must be set")
		}
	}

	return cfg, nil
}

// LoadClient reads the settings used by the bank and console binaries.
func LoadClient() (ClientConfig, error) {
	loadDotEnv()

	cfg := ClientConfig{
		APIURL:      strings.TrimRight(getEnv("BANK_API_URL", defaultAPIURL), "/"),
		SessionFile: getEnv("BANK_SESSION_FILE", defaultSessionFile),
		HTTPTimeout: defaultHTTPTimeout,
	}
	if v := os.Getenv("BANK_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid BANK_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c Config) IsDevelopment() bool {
	switch c.AppEnv {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// loadDotEnv applies .env when present; a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

// durationEnv prefers the integer seconds variable over the duration string one.
func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func positiveIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
