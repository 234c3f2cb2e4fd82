package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	MinIO     MinIOConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	PublicDir    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects the record backend.
type StorageConfig struct {
	Backend    string // file|memory|sqlite|mongo|redis
	DataDir    string
	SQLitePath string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	OIDCIssuer    string
	OIDCClientID  string
	AllowInsecure bool
}

// Enabled reports whether writes require a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || a.OIDCIssuer != "" || a.AllowInsecure
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var backends = map[string]bool{"file": true, "memory": true, "sqlite": true, "mongo": true, "redis": true}

// LoadConfig loads configuration from environment variables, an optional
// .env file and an optional YAML file named by CONFIG_FILE.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("READ_TIMEOUT", 30)
	v.SetDefault("WRITE_TIMEOUT", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_BACKEND", "file")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("SQLITE_PATH", "data/rfi.db")
	v.SetDefault("MONGODB_DATABASE", "rfi")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "rfi:")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("AUTH_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("MINIO_BUCKET", "rfi-snapshots")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			Environment:  v.GetString("ENVIRONMENT"),
			PublicDir:    v.GetString("PUBLIC_DIR"),
			ReadTimeout:  time.Duration(v.GetInt("READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("WRITE_TIMEOUT")) * time.Second,
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(v.GetString("STORAGE_BACKEND")),
			DataDir:    v.GetString("DATA_DIR"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("AUTH_JWT_SECRET"),
			TokenTTL:      time.Duration(v.GetInt("AUTH_TOKEN_TTL_MINUTES")) * time.Minute,
			OIDCIssuer:    v.GetString("AUTH_OIDC_ISSUER"),
			OIDCClientID:  v.GetString("AUTH_OIDC_CLIENT_ID"),
			AllowInsecure: strings.EqualFold(strings.TrimSpace(v.GetString("ALLOW_INSECURE_TOKEN")), "true"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if !backends[c.Storage.Backend] {
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	switch c.Storage.Backend {
	case "mongo":
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("STORAGE_BACKEND=mongo requires MONGODB_URI"))
		}
	case "redis":
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("STORAGE_BACKEND=redis requires REDIS_HOST"))
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("STORAGE_BACKEND=sqlite requires SQLITE_PATH"))
		}
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
		}
		if c.RateLimit.UseRedis && c.Redis.Host == "" {
			errs = append(errs, errors.New("RATE_LIMIT_USE_REDIS requires REDIS_HOST"))
		}
	}
	if c.Auth.OIDCIssuer != "" && c.Auth.OIDCClientID == "" {
		errs = append(errs, errors.New("AUTH_OIDC_ISSUER requires AUTH_OIDC_CLIENT_ID"))
	}
	return errors.Join(errs...)
}
