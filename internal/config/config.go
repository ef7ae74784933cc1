package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Session  SessionConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
}

type AppConfig struct {
	Port           string
	OwnerCacheSize int
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	DSN      string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

type AuthConfig struct {
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
}

type SessionConfig struct {
	Store      string // memory or redis
	Expiration time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL   string // Empty disables recipe events
	Queue string
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load reads the configuration from the environment, after loading an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(NewViper())
}

// NewViper returns a viper instance with defaults applied and environment
// variables bound.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("OWNER_CACHE_SIZE", 1024)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "db01")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "website")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_EXPIRATION", "24h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_QUEUE", "recipe_events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:           v.GetString("APP_PORT"),
			OwnerCacheSize: v.GetInt("OWNER_CACHE_SIZE"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:      v.GetString("DATABASE_DSN"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
		},
		Auth: AuthConfig{
			SecretKey:  v.GetString("SECRET_KEY"),
			TokenTTL:   v.GetDuration("TOKEN_TTL"),
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Session: SessionConfig{
			Store:      strings.ToLower(v.GetString("SESSION_STORE")),
			Expiration: v.GetDuration("SESSION_EXPIRATION"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Auth.SecretKey == "" && !c.Log.Development {
		return fmt.Errorf("SECRET_KEY is required outside development")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.App.OwnerCacheSize <= 0 {
		return fmt.Errorf("OWNER_CACHE_SIZE must be positive")
	}
	return nil
}

// ConnectionString returns DSN if set, otherwise a postgres URL assembled
// from the individual DB_* settings.
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return "recipebox.db"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	return u.String()
}
