package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AppPort    string
	AppVersion string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	JWTSecret  string
	BcryptCost int

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	AuthRateLimit  int
	AuthRateWindow time.Duration

	RequestTimeout time.Duration

	LogLevel string
	LogJSON  bool
}

// Load reads the configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:        getenv("APP_PORT", "8080"),
		AppVersion:     getenv("APP_VERSION", "dev"),
		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  getenv("MONGO_DATABASE", "taskdb"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		BcryptCost:     positiveInt("BCRYPT_COST", 12),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        nonNegativeInt("REDIS_DB", 0),
		AuthRateLimit:  positiveInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: time.Duration(positiveInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		RequestTimeout: time.Duration(positiveInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogJSON:        os.Getenv("LOG_JSON") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings required by the selected driver are present.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("JWT_SECRET is not set")
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return oops.Code("CONFIG_INVALID").Errorf("MONGO_URI is not set")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL is not set")
		}
	case DriverMemory:
	default:
		return oops.Code("CONFIG_INVALID").
			With("driver", c.StoreDriver).
			Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
