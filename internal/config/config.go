package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	MetricsAddr string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Provider  ProviderConfig
	Reconcile ReconcileConfig
}

type ProviderConfig struct {
	Name       string
	APIKey     string
	AccountID  string
	BaseURL    string
	PageSize   int
	MaxRetries int
	RetryWait  time.Duration
	HTTPTimeout time.Duration
}

type ReconcileConfig struct {
	Lookback    time.Duration
	RunTimeout  time.Duration
	RunInterval time.Duration
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "paysync"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		MetricsAddr: getenv("METRICS_ADDR", ":9464"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		Provider: ProviderConfig{
			Name:       strings.ToLower(getenv("PAYMENT_PROVIDER", "stripe")),
			APIKey:     strings.TrimSpace(getenv("STRIPE_API_KEY", "")),
			AccountID:  strings.TrimSpace(getenv("STRIPE_ACCOUNT_ID", "")),
			BaseURL:    strings.TrimRight(getenv("STRIPE_API_BASE_URL", "https://api.stripe.com"), "/"),
			PageSize:   getenvInt("PROVIDER_PAGE_SIZE", 100),
			MaxRetries: getenvInt("PROVIDER_MAX_RETRIES", 3),
			RetryWait:  getenvDuration("PROVIDER_RETRY_WAIT", 500*time.Millisecond),
			HTTPTimeout: getenvDuration("PROVIDER_HTTP_TIMEOUT", 15*time.Second),
		},
		Reconcile: ReconcileConfig{
			Lookback:    getenvDuration("RECONCILE_LOOKBACK", 24*time.Hour),
			RunTimeout:  getenvDuration("RECONCILE_RUN_TIMEOUT", 10*time.Minute),
			RunInterval: getenvDuration("SCHEDULER_RUN_INTERVAL", time.Hour),
			WindowStart: getenvTime("RECONCILE_WINDOW_START"),
			WindowEnd:   getenvTime("RECONCILE_WINDOW_END"),
		},
	}

	return cfg
}

// HasProviderCredential reports whether the provider API key is configured.
func (c Config) HasProviderCredential() bool {
	return c.Provider.APIKey != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvTime(key string) *time.Time {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}
