package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
	BackendRedis    = "redis"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MongoDBConfig holds settings for the document-store backend.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the redis session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SMSConfig holds credentials for the Twilio-compatible SMS gateway.
// An empty AccountSID or AuthToken leaves the gateway unconfigured.
type SMSConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// AuthConfig holds session settings.
type AuthConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

// AlertsConfig holds scheduler settings for low-stock digests.
type AlertsConfig struct {
	DigestCron string
	Timezone   string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	LogLevel       string
	StorageBackend string
	SessionBackend string
	Database       DatabaseConfig
	MongoDB        MongoDBConfig
	Redis          RedisConfig
	MinIO          MinIOConfig
	SMS            SMSConfig
	Auth           AuthConfig
	Alerts         AlertsConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	storage := getEnv("STORAGE_BACKEND", BackendPostgres)
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StorageBackend: storage,
		// sessions live next to the data unless redis is asked for explicitly
		SessionBackend: getEnv("SESSION_BACKEND", storage),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MongoDB: MongoDBConfig{
			URI:    getEnv("MONGODB_URI", ""),
			DBName: getEnv("MONGODB_DB_NAME", "smartinventory"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		SMS: SMSConfig{
			BaseURL:    getEnv("SMS_BASE_URL", "https://api.twilio.com/2010-04-01"),
			AccountSID: getEnv("SMS_ACCOUNT_SID", ""),
			AuthToken:  getEnv("SMS_AUTH_TOKEN", ""),
			From:       getEnv("SMS_FROM", ""),
			Timeout:    getEnvDuration("SMS_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		Alerts: AlertsConfig{
			DigestCron: getEnv("ALERT_DIGEST_CRON", "0 8 * * *"),
			Timezone:   getEnv("TIMEZONE", "UTC"),
		},
	}
}

// Validate checks the backend selection and the settings each selected backend needs.
func (c *AppConfig) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME must be provided for the postgres backend")
		}
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI must be provided for the mongodb backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.SessionBackend {
	case BackendPostgres, BackendMongoDB:
		if c.SessionBackend != c.StorageBackend {
			return fmt.Errorf("SESSION_BACKEND %q requires STORAGE_BACKEND %q", c.SessionBackend, c.SessionBackend)
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR must be provided for the redis session backend")
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// SMSConfigured reports whether gateway credentials are present.
func (c SMSConfig) SMSConfigured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
