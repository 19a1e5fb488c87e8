package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Environment        string
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration

	DatabaseURL         string
	DatabaseMaxOpen     int
	DatabaseMaxIdle     int
	DatabaseMaxLifetime time.Duration
	AutoMigrate         bool
	SeedOnStart         bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ProfileTTL    time.Duration

	IdentityBaseURL     string
	IdentityTokenURL    string
	IdentityAPIKey      string
	IdentityTokenSecret string

	MailAPIURL    string
	MailAPIKey    string
	MailFromEmail string
	MailFromName  string

	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StoragePathStyle bool
	MaxUploadSize    int64

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
	MetricsEnabled   bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:        getEnv("APP_ENV", EnvDevelopment),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabaseMaxOpen:     getInt("DATABASE_MAX_OPEN_CONNS", 25),
		DatabaseMaxIdle:     getInt("DATABASE_MAX_IDLE_CONNS", 5),
		DatabaseMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		AutoMigrate:         getBool("DATABASE_AUTO_MIGRATE", true),
		SeedOnStart:         getBool("DATABASE_SEED_ON_START", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		ProfileTTL:    getDuration("PROFILE_CACHE_TTL", 10*time.Minute),

		IdentityBaseURL:     getEnv("IDENTITY_BASE_URL", ""),
		IdentityTokenURL:    getEnv("IDENTITY_TOKEN_URL", ""),
		IdentityAPIKey:      strings.TrimSpace(os.Getenv("IDENTITY_API_KEY")),
		IdentityTokenSecret: strings.TrimSpace(os.Getenv("IDENTITY_TOKEN_SECRET")),

		MailAPIURL:    getEnv("MAIL_API_URL", ""),
		MailAPIKey:    strings.TrimSpace(os.Getenv("MAIL_API_KEY")),
		MailFromEmail: getEnv("MAIL_FROM_EMAIL", ""),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Enrollment Office"),

		StorageEndpoint:  getEnv("S3_ENDPOINT", ""),
		StorageRegion:    getEnv("S3_REGION", "us-east-1"),
		StorageAccessKey: os.Getenv("S3_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("S3_SECRET_KEY"),
		StorageBucket:    getEnv("S3_BUCKET", ""),
		StoragePathStyle: getBool("S3_FORCE_PATH_STYLE", true),
		MaxUploadSize:    getInt64("MAX_UPLOAD_SIZE", 10*1024*1024),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 10),
		MetricsEnabled:   getBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.IdentityBaseURL == "" {
		return fmt.Errorf("IDENTITY_BASE_URL is required")
	}

	if c.IdentityAPIKey == "" {
		return fmt.Errorf("IDENTITY_API_KEY is required")
	}

	if c.IdentityTokenSecret == "" {
		return fmt.Errorf("IDENTITY_TOKEN_SECRET is required")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.ProfileTTL <= 0 {
		return fmt.Errorf("PROFILE_CACHE_TTL must be positive")
	}

	if c.IsProduction() && c.SeedOnStart {
		return fmt.Errorf("DATABASE_SEED_ON_START cannot be enabled in production")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
