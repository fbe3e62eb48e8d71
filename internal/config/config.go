package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evyataryagoni/issflyover/internal/fetcher"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
// Values come from defaults, then the optional YAML file, then the environment
type Config struct {
	// Server configuration
	Port      string `yaml:"port" validate:"required,numeric"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error disabled"`
	LogPretty bool   `yaml:"log_pretty"`
	LogFile   string `yaml:"log_file"` // Optional, in addition to stdout

	// Upstream services
	IPLookupURL    string        `yaml:"ip_lookup_url" validate:"required,url"`
	GeoLookupURL   string        `yaml:"geo_lookup_url" validate:"required,url"`
	FlyoverURL     string        `yaml:"flyover_url" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"` // 0 disables the timeout
	UserAgent      string        `yaml:"user_agent"`

	// Geolocation backend: "http" uses GeoLookupURL, the rest are offline tables
	GeoBackend    string `yaml:"geo_backend" validate:"oneof=http csv mysql redis mmdb"`
	DatastorePath string `yaml:"datastore_path" validate:"required_if=GeoBackend csv"`
	MySQLDSN      string `yaml:"mysql_dsn" validate:"required_if=GeoBackend mysql"`
	MMDBPath      string `yaml:"mmdb_path" validate:"required_if=GeoBackend mmdb"`

	// Redis configuration (geo backend and rate limiter)
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`

	// Rate limiting of inbound API requests: RateLimit requests per RateLimitWindow
	RateLimitType   string        `yaml:"rate_limiter_type" validate:"oneof=none memory redis"`
	RateLimit       int           `yaml:"rate_limit" validate:"gte=1"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window" validate:"gt=0"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:     "3000",
		LogLevel: "info",

		IPLookupURL:    fetcher.DefaultIPLookupURL,
		GeoLookupURL:   fetcher.DefaultGeoLookupURL,
		FlyoverURL:     fetcher.DefaultFlyoverURL,
		RequestTimeout: 30 * time.Second,
		UserAgent:      fetcher.DefaultUserAgent,

		GeoBackend:    "http",
		DatastorePath: "./data/ip_coordinates.csv",

		RedisAddr: "localhost:6379",

		RateLimitType:   "none",
		RateLimit:       10,
		RateLimitWindow: time.Second,
	}
}

// Load reads configuration for the server
//
// Order of precedence (last wins):
//  1. Defaults
//  2. YAML file named by CONFIG_FILE, if set
//  3. Environment variables (a .env file is loaded into the environment first)
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	// In production/Docker, environment variables are set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load without the .env step; path may be empty
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.loadFromEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromEnv overrides fields whose variables are set
func (c *Config) loadFromEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvAsBool("LOG_PRETTY", c.LogPretty)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	c.IPLookupURL = getEnv("IP_LOOKUP_URL", c.IPLookupURL)
	c.GeoLookupURL = getEnv("GEO_LOOKUP_URL", c.GeoLookupURL)
	c.FlyoverURL = getEnv("FLYOVER_URL", c.FlyoverURL)
	c.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)

	c.GeoBackend = getEnv("GEO_BACKEND", c.GeoBackend)
	c.DatastorePath = getEnv("DATASTORE_PATH", c.DatastorePath)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.MMDBPath = getEnv("MMDB_PATH", c.MMDBPath)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvAsInt("REDIS_DB", c.RedisDB)

	c.RateLimitType = getEnv("RATE_LIMITER_TYPE", c.RateLimitType)
	c.RateLimit = getEnvAsInt("RATE_LIMIT", c.RateLimit)
	c.RateLimitWindow = getEnvAsDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow)
}

// normalize lowercases the enum-like fields so validation is case-insensitive
func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.GeoBackend = strings.ToLower(strings.TrimSpace(c.GeoBackend))
	c.RateLimitType = strings.ToLower(strings.TrimSpace(c.RateLimitType))
}

// Validate checks the struct tags and reports every failing field
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		problems = append(problems, fmt.Sprintf("%s failed '%s' (value %q)", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
// Accepts strconv.ParseBool forms (1, t, true, 0, f, false, ...) plus yes/no and on/off
// Returns default if not set or invalid
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch valueStr {
	case "":
		return defaultValue
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads an environment variable as a duration
// Accepts Go duration strings ("30s", "1m") or a bare number of seconds
// Returns default if not set or invalid
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}

	if seconds, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}

	return defaultValue
}
