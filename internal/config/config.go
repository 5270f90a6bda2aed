package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Redis     RedisConfig
	OpenFGA   OpenFGAConfig
	Stripe    StripeConfig
	Storage   StorageConfig
	Google    GoogleConfig
	Telemetry TelemetryConfig
	Ministry  MinistryConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
	AllowOrigins string
	PublicURL    string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the key/value connection string understood by lib/pq and pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the connection string in URL form, as golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type SessionConfig struct {
	Secret       string
	TokenTTL     time.Duration
	CookieSecure bool
	Table        string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OpenFGAConfig struct {
	Enabled              bool
	APIURL               string
	APIToken             string
	StoreID              string
	AuthorizationModelID string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type StorageConfig struct {
	Type      string // "local" or "s3"
	LocalPath string
	S3Bucket  string
	S3Region  string
	S3Prefix  string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	ExporterURL    string
	SamplingRatio  float64
}

type MinistryConfig struct {
	Timezone          string
	CurrencySymbol    string
	ReminderLeadTime  time.Duration
	MemberEmailDomain string
}

func NewConfig() *Config {
	environment := getEnv("SERVER_ENVIRONMENT", "development")

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnv("SERVER_PORT", "3001"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			Environment:  environment,
			AllowOrigins: getEnv("SERVER_ALLOW_ORIGINS", "http://localhost:3000"),
			PublicURL:    getEnv("SERVER_PUBLIC_URL", "http://localhost:3001"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "password"),
			Name:         getEnv("DB_NAME", "ministry"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", ""),
			TokenTTL:     getEnvDuration("SESSION_TOKEN_TTL", 24*time.Hour),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", environment == "production"),
			Table:        getEnv("SESSION_TABLE", "sessions"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		OpenFGA: OpenFGAConfig{
			Enabled:              getEnvBool("OPENFGA_ENABLED", false),
			APIURL:               getEnv("OPENFGA_API_URL", "http://localhost:8080"),
			APIToken:             getEnv("OPENFGA_API_TOKEN", ""),
			StoreID:              getEnv("OPENFGA_STORE_ID", ""),
			AuthorizationModelID: getEnv("OPENFGA_AUTHORIZATION_MODEL_ID", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      strings.ToLower(getEnv("STRIPE_CURRENCY", "php")),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./data/uploads"),
			S3Bucket:  getEnv("STORAGE_S3_BUCKET", ""),
			S3Region:  getEnv("STORAGE_S3_REGION", "us-east-1"),
			S3Prefix:  getEnv("STORAGE_S3_PREFIX", "ministry"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3001/api/auth/google/callback"),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnvBool("TELEMETRY_ENABLED", false),
			ServiceName:    getEnv("TELEMETRY_SERVICE_NAME", "ministry"),
			ServiceVersion: getEnv("TELEMETRY_SERVICE_VERSION", "dev"),
			Environment:    environment,
			ExporterURL:    getEnv("TELEMETRY_EXPORTER_URL", "localhost:4317"),
			SamplingRatio:  getEnvFloat("TELEMETRY_SAMPLING_RATIO", 1.0),
		},
		Ministry: MinistryConfig{
			Timezone:          getEnv("MINISTRY_TIMEZONE", "Asia/Manila"),
			CurrencySymbol:    getEnv("MINISTRY_CURRENCY_SYMBOL", "₱"),
			ReminderLeadTime:  getEnvDuration("MINISTRY_REMINDER_LEAD_TIME", 24*time.Hour),
			MemberEmailDomain: getEnv("MINISTRY_MEMBER_EMAIL_DOMAIN", "ministry.local"),
		},
	}
}

// Load reads an optional .env file before building the configuration from the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
		slog.Debug("Loaded environment file", "file", f)
	}

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	ErrMissingSessionSecret = errors.New("SESSION_SECRET is required in production")
	ErrInvalidStorageType   = errors.New("STORAGE_TYPE must be local or s3")
	ErrMissingS3Bucket      = errors.New("STORAGE_S3_BUCKET is required for s3 storage")
	ErrInvalidTimezone      = errors.New("MINISTRY_TIMEZONE is not a known location")
)

func (c *Config) Validate() error {
	if c.IsProduction() && len(c.Session.Secret) < 32 {
		return ErrMissingSessionSecret
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return ErrMissingS3Bucket
		}
	default:
		return ErrInvalidStorageType
	}
	if _, err := time.LoadLocation(c.Ministry.Timezone); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Ministry.Timezone)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location returns the parish timezone; it falls back to UTC when the name cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ministry.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
