package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Security   SecurityConfig
	Simulation SimulationConfig
	Analytics  AnalyticsConfig
	Storage    StorageConfig
	Cache      CacheConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

type SimulationConfig struct {
	BaseTransactions     int
	Customers            int
	Seed                 int64
	B2BShare             float64
	AssignmentPolicy     string
	DefaultDemand        float64
	DefaultPriceIncrease float64
	RunOnStartup         bool
}

type AnalyticsConfig struct {
	ChurnThresholdDays  int
	ForecastWeeks       int
	ForecastWindowWeeks int
}

type StorageConfig struct {
	Driver string
	DSN    string
	Dir    string
	S3     S3Config
}

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
	Key      string
	Secret   string
	Prefix   string
}

type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
}

func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, fills variables that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
		Simulation: SimulationConfig{
			BaseTransactions:     getEnvInt("SIM_BASE_TRANSACTIONS", 5000),
			Customers:            getEnvInt("SIM_CUSTOMERS", 50),
			Seed:                 int64(getEnvInt("SIM_SEED", 42)),
			B2BShare:             getEnvFloat("SIM_B2B_SHARE", 0.3),
			AssignmentPolicy:     getEnvString("SIM_ASSIGNMENT_POLICY", "invoice-only"),
			DefaultDemand:        getEnvFloat("SIM_DEFAULT_DEMAND", 1.0),
			DefaultPriceIncrease: getEnvFloat("SIM_DEFAULT_PRICE_INCREASE", 0),
			RunOnStartup:         getEnvBool("SIM_RUN_ON_STARTUP", true),
		},
		Analytics: AnalyticsConfig{
			ChurnThresholdDays:  getEnvInt("CHURN_THRESHOLD_DAYS", 90),
			ForecastWeeks:       getEnvInt("FORECAST_WEEKS", 4),
			ForecastWindowWeeks: getEnvInt("FORECAST_WINDOW_WEEKS", 8),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnvString("STORE_DRIVER", "sqlite")),
			DSN:    getEnvString("STORE_DSN", "hardware_store.db"),
			Dir:    getEnvString("STORE_DIR", "data"),
			S3: S3Config{
				Bucket:   getEnvString("S3_BUCKET", ""),
				Region:   getEnvString("S3_REGION", "us-east-1"),
				Endpoint: getEnvString("S3_ENDPOINT", ""),
				Key:      getEnvString("S3_KEY", ""),
				Secret:   getEnvString("S3_SECRET", ""),
				Prefix:   getEnvString("S3_PREFIX", "hardware-store/"),
			},
		},
		Cache: CacheConfig{
			RedisAddr:     getEnvString("REDIS_ADDR", ""),
			RedisPassword: getEnvString("REDIS_PASSWORD", ""),
			TTL:           getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if err := c.Simulation.validate(); err != nil {
		return err
	}

	if c.Analytics.ChurnThresholdDays < 0 {
		return fmt.Errorf("churn threshold must not be negative, got %d", c.Analytics.ChurnThresholdDays)
	}

	if c.Analytics.ForecastWeeks < 1 || c.Analytics.ForecastWindowWeeks < 1 {
		return fmt.Errorf("forecast horizon and window must be at least one week")
	}

	validDrivers := []string{"sqlite", "postgres", "mysql", "sqlserver", "file", "s3"}
	if !slices.Contains(validDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid store driver %q, must be one of: %s", c.Storage.Driver, strings.Join(validDrivers, ", "))
	}

	if c.Storage.Driver == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for the s3 store driver")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	return nil
}

func (s SimulationConfig) validate() error {
	if s.BaseTransactions <= 0 {
		return fmt.Errorf("base transaction count must be positive, got %d", s.BaseTransactions)
	}
	if s.Customers <= 0 {
		return fmt.Errorf("customer count must be positive, got %d", s.Customers)
	}
	if s.B2BShare < 0 || s.B2BShare > 1 {
		return fmt.Errorf("b2b share must be within [0, 1], got %v", s.B2BShare)
	}
	if s.AssignmentPolicy != "invoice-only" && s.AssignmentPolicy != "always" {
		return fmt.Errorf("invalid assignment policy %q, must be invoice-only or always", s.AssignmentPolicy)
	}
	if s.DefaultDemand < 0.5 || s.DefaultDemand > 2.0 {
		return fmt.Errorf("default demand factor must be within [0.5, 2.0], got %v", s.DefaultDemand)
	}
	if s.DefaultPriceIncrease < 0 || s.DefaultPriceIncrease > 0.5 {
		return fmt.Errorf("default price increase must be within [0, 0.5], got %v", s.DefaultPriceIncrease)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
