package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Store     StoreConfig
	Dataset   DatasetConfig
	Redis     RedisConfig
	Bootstrap BootstrapConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// StoreConfig holds the credential store location
type StoreConfig struct {
	Path string // sqlite file path
}

// DatasetConfig describes where the transaction snapshot comes from and how
// it is cached and refreshed.
type DatasetConfig struct {
	// Source kind: "s3" or "file"
	Source string
	// S3 settings
	Bucket     string
	Key        string
	MappingKey string // optional category-mapping object, empty = none
	Region     string
	// File settings (used when Source == "file")
	Path        string
	MappingPath string

	CacheTTL      time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	// RetentionDays limits the snapshot to the most recent N days.
	// Zero keeps everything.
	RetentionDays int
	// RefreshSchedule is a cron expression for background refresh.
	// Empty disables the scheduler.
	RefreshSchedule string
}

// RedisConfig holds optional Redis settings for the token revocation store.
// When Host is empty the in-memory store is used.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// BootstrapConfig holds the initial super admin credentials, created on
// first run when the credential store is empty.
type BootstrapConfig struct {
	Username string
	Password string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DASH_ prefix (e.g. DASH_JWT_SECRET)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("DASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Store: StoreConfig{
			Path: v.GetString("store.path"),
		},
		Dataset: DatasetConfig{
			Source:          v.GetString("dataset.source"),
			Bucket:          v.GetString("dataset.bucket"),
			Key:             v.GetString("dataset.key"),
			MappingKey:      v.GetString("dataset.mapping_key"),
			Region:          v.GetString("dataset.region"),
			Path:            v.GetString("dataset.path"),
			MappingPath:     v.GetString("dataset.mapping_path"),
			CacheTTL:        v.GetDuration("dataset.cache_ttl"),
			RetryAttempts:   v.GetInt("dataset.retry_attempts"),
			RetryBackoff:    v.GetDuration("dataset.retry_backoff"),
			RetentionDays:   v.GetInt("dataset.retention_days"),
			RefreshSchedule: v.GetString("dataset.refresh_schedule"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Bootstrap: BootstrapConfig{
			Username: v.GetString("bootstrap.username"),
			Password: v.GetString("bootstrap.password"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "live-dashboard"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 8 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "live-dashboard"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "dashboard.db"
	}
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = "file"
	}
	if cfg.Dataset.CacheTTL == 0 {
		cfg.Dataset.CacheTTL = 5 * time.Minute
	}
	if cfg.Dataset.RetryAttempts == 0 {
		cfg.Dataset.RetryAttempts = 3
	}
	if cfg.Dataset.RetryBackoff == 0 {
		cfg.Dataset.RetryBackoff = 2 * time.Second
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Bootstrap.Username == "" {
		cfg.Bootstrap.Username = "superadmin"
	}
}

func (c *Config) validate() error {
	switch c.Dataset.Source {
	case "s3":
		if c.Dataset.Bucket == "" || c.Dataset.Key == "" {
			return fmt.Errorf("dataset.bucket and dataset.key are required for the s3 source")
		}
	case "file":
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required for the file source")
		}
	default:
		return fmt.Errorf("dataset.source must be \"s3\" or \"file\", got %q", c.Dataset.Source)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Bootstrap.Password == "" {
			return fmt.Errorf("bootstrap.password is required in production")
		}
	}

	return nil
}
