package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scheduler modes.
const (
	SchedulerModeThreshold = "threshold"
	SchedulerModeFixed     = "fixed"
)

// User store backends.
const (
	UserStorePostgres = "postgres"
	UserStoreDynamoDB = "dynamodb"
	UserStoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Messenger platform credentials
	MessengerAppSecret       string
	MessengerVerifyToken     string
	MessengerPageAccessToken string
	GraphAPIBase             string
	GraphAPITimeout          time.Duration
	WebhookTimeout           time.Duration

	// Persistence
	UserStore           string
	DatabaseURL         string
	DynamoUsersTable    string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Profile cache
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	ProfileCacheTTL time.Duration

	// Reminders
	SchedulerEnabled    bool
	SchedulerMode       string
	SchedulerTimezone   string
	KeepAliveEnabled    bool
	ReminderConcurrency int
	ReminderSendTimeout time.Duration
	ReminderRunTimeout  time.Duration

	AdminJWTSecret string
	AdminRateLimit float64
	AdminBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MessengerAppSecret:       getEnv("MESSENGER_APP_SECRET", ""),
		MessengerVerifyToken:     getEnv("MESSENGER_VERIFY_TOKEN", ""),
		MessengerPageAccessToken: getEnv("MESSENGER_PAGE_ACCESS_TOKEN", ""),
		GraphAPIBase:             getEnv("GRAPH_API_BASE", "https://graph.facebook.com/v18.0"),
		GraphAPITimeout:          getEnvAsDuration("GRAPH_API_TIMEOUT", 10*time.Second),
		WebhookTimeout:           getEnvAsDuration("WEBHOOK_TIMEOUT", 20*time.Second),

		UserStore:           strings.ToLower(strings.TrimSpace(getEnv("USER_STORE", ""))),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DynamoUsersTable:    getEnv("DYNAMO_USERS_TABLE", "waterbot_users"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:       getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		ProfileCacheTTL: getEnvAsDuration("PROFILE_CACHE_TTL", 24*time.Hour),

		SchedulerEnabled:    getEnvAsBool("SCHEDULER_ENABLED", true),
		SchedulerMode:       strings.ToLower(strings.TrimSpace(getEnv("SCHEDULER_MODE", SchedulerModeThreshold))),
		SchedulerTimezone:   getEnv("SCHEDULER_TZ", "Local"),
		KeepAliveEnabled:    getEnvAsBool("KEEPALIVE_ENABLED", true),
		ReminderConcurrency: getEnvAsInt("REMINDER_CONCURRENCY", 4),
		ReminderSendTimeout: getEnvAsDuration("REMINDER_SEND_TIMEOUT", 15*time.Second),
		ReminderRunTimeout:  getEnvAsDuration("REMINDER_RUN_TIMEOUT", 10*time.Minute),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		AdminRateLimit: getEnvAsFloat("ADMIN_RATE_LIMIT", 5),
		AdminBurst:     getEnvAsInt("ADMIN_RATE_BURST", 10),
	}

	if cfg.UserStore == "" {
		// No explicit backend: use Postgres when a DSN is present.
		if cfg.DatabaseURL != "" {
			cfg.UserStore = UserStorePostgres
		} else {
			cfg.UserStore = UserStoreMemory
		}
	}
	return cfg
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.MessengerAppSecret == "" {
		errs = append(errs, errors.New("MESSENGER_APP_SECRET is required"))
	}
	if c.MessengerVerifyToken == "" {
		errs = append(errs, errors.New("MESSENGER_VERIFY_TOKEN is required"))
	}
	if c.MessengerPageAccessToken == "" {
		errs = append(errs, errors.New("MESSENGER_PAGE_ACCESS_TOKEN is required"))
	}
	switch c.SchedulerMode {
	case SchedulerModeThreshold, SchedulerModeFixed:
	default:
		errs = append(errs, errors.New("SCHEDULER_MODE must be threshold or fixed"))
	}
	switch c.UserStore {
	case UserStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres user store"))
		}
	case UserStoreDynamoDB:
		if c.DynamoUsersTable == "" {
			errs = append(errs, errors.New("DYNAMO_USERS_TABLE is required for the dynamodb user store"))
		}
	case UserStoreMemory:
	default:
		errs = append(errs, errors.New("USER_STORE must be postgres, dynamodb or memory"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves SchedulerTimezone; "Local" and "" mean the server zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.SchedulerTimezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
