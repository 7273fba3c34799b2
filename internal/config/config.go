package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration required by the API process.
// Values come from env, optionally seeded from a .env file in the working directory.
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Store    StoreConfig
	Payments PaymentsConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Stats    StatsConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type AuthConfig struct {
	// TokenSecret signs every access token. Rotating it invalidates all outstanding tokens.
	TokenSecret string
	TokenTTL    time.Duration
}

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

type StoreConfig struct {
	Driver   string
	MongoURI string
	Database string
}

type PaymentsConfig struct {
	StripeSecretKey string
	Currency        string
}

// PostgresConfig is optional. When Host is empty the audit trail stays in memory.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional. When Host is empty stats are not cached.
type RedisConfig struct {
	Host string
	Port int
}

type StatsConfig struct {
	CacheTTL time.Duration
}

func Load() (Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.App.Port, parseErrs = optionalInt(parseErrs, "APP_PORT", 5000)

	c.Auth.TokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	c.Auth.TokenTTL, parseErrs = optionalDuration(parseErrs, "ACCESS_TOKEN_TTL", 0)

	c.Store.Driver = strings.TrimSpace(os.Getenv("STORE_DRIVER"))
	c.Store.MongoURI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	c.Store.Database = strings.TrimSpace(os.Getenv("MONGO_DB"))

	c.Payments.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	c.Payments.Currency = strings.ToLower(strings.TrimSpace(os.Getenv("PAYMENT_CURRENCY")))

	c.Postgres.Host = strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	c.Postgres.Port, parseErrs = optionalInt(parseErrs, "POSTGRES_PORT", 5432)
	c.Postgres.User = strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	c.Postgres.Password = os.Getenv("POSTGRES_PASSWORD")
	c.Postgres.Name = strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	c.Postgres.SSLMode = strings.TrimSpace(os.Getenv("POSTGRES_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port, parseErrs = optionalInt(parseErrs, "REDIS_PORT", 6379)

	c.Stats.CacheTTL, parseErrs = optionalDuration(parseErrs, "STATS_CACHE_TTL", 0)

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate applies defaults in place and reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = time.Hour
	}

	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverMongo
	}
	switch c.Store.Driver {
	case StoreDriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
	case StoreDriverMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("STORE_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of mongo, memory, got %q", c.Store.Driver))
	}
	if c.Store.Database == "" {
		c.Store.Database = "studentDb"
	}

	if c.Payments.Currency == "" {
		c.Payments.Currency = "usd"
	}
	if c.IsProduction() && c.Payments.StripeSecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required in production"))
	}

	if c.PostgresEnabled() {
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Errorf("POSTGRES_PORT must be a valid port, got %d", c.Postgres.Port))
		}
		if c.Postgres.User == "" {
			errs = append(errs, errors.New("POSTGRES_USER is required when POSTGRES_HOST is set"))
		}
		if c.Postgres.Name == "" {
			errs = append(errs, errors.New("POSTGRES_DB is required when POSTGRES_HOST is set"))
		}
		if c.Postgres.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("POSTGRES_SSLMODE is required in production"))
			} else {
				c.Postgres.SSLMode = "disable"
			}
		}
		if c.Postgres.SSLMode != "" && !isValidSSLMode(c.Postgres.SSLMode) {
			errs = append(errs, fmt.Errorf("POSTGRES_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.Postgres.SSLMode))
		}
	}

	if c.RedisEnabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Stats.CacheTTL <= 0 {
		c.Stats.CacheTTL = 30 * time.Second
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) PostgresEnabled() bool { return c.Postgres.Host != "" }

func (c Config) RedisEnabled() bool { return c.Redis.Host != "" }

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.User,
		quoteDSNValue(c.Postgres.Password),
		c.Postgres.Name,
		c.Postgres.SSLMode,
	)
}

// quoteDSNValue single-quotes a keyword/value DSN value so empty or spaced passwords parse.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func optionalInt(errs []error, key string, fallback int) (int, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be an integer, got %q", key, v))
	}
	return n, errs
}

func optionalDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be a duration, got %q", key, v))
	}
	return d, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
