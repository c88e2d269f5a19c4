package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EmailProviderLog    = "log"
	EmailProviderResend = "resend"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite file (default: authcodes.db)
	DatabaseURL    string // Postgres DSN, required for postgres
	PepperFile     string // Code fingerprint pepper, created on first start outside prod (default: pepper)
	Pepper         string // Overrides PepperFile. Prod needs this or an existing PepperFile.

	CodeTTL      time.Duration // Lifetime of newly issued codes (default: 5m)
	StoreTimeout time.Duration // Per-call store timeout (default: 30s)

	CleanupInterval         time.Duration // default: 6h in prod, 5m otherwise
	CleanupRunImmediately   bool          // default: true
	CleanupExpiredRetention time.Duration // default: 0
	CleanupUsedRetention    time.Duration // default: 24h

	// Optional. When empty, scheduled cleanup runs without a distributed lock.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional outside prod. When empty, admin routes are unauthenticated.
	AdminJWTSecret string
	AdminJWTIssuer string

	EmailProvider    string // log or resend (default: log)
	ResendAPIKey     string
	EmailFrom        string
	AppName          string
	AppBaseURL       string
	ConfirmationPath string
	ResetPath        string
}

// env name -> default. Keys without a default are still bound.
var configKeys = map[string]any{
	"ENV":                       "dev",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
	"PORT":                      8080,
	"SHUTDOWN_GRACE_PERIOD":     "10s",
	"DATABASE_DRIVER":           DriverSQLite,
	"DATABASE_FILE":             "authcodes.db",
	"DATABASE_URL":              "",
	"PEPPER_FILE":               "pepper",
	"PEPPER":                    "",
	"CODE_TTL":                  "5m",
	"STORE_TIMEOUT":             "30s",
	"CLEANUP_INTERVAL":          "",
	"CLEANUP_RUN_IMMEDIATELY":   true,
	"CLEANUP_EXPIRED_RETENTION": "0s",
	"CLEANUP_USED_RETENTION":    "24h",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"ADMIN_JWT_SECRET":          "",
	"ADMIN_JWT_ISSUER":          "goalkeeper-authcodes",
	"EMAIL_PROVIDER":            EmailProviderLog,
	"RESEND_API_KEY":            "",
	"EMAIL_FROM":                "",
	"APP_NAME":                  "Goalkeeper Finder",
	"APP_BASE_URL":              "http://localhost:3000",
	"CONFIRMATION_PATH":         "/auth/confirm",
	"RESET_PATH":                "/auth/reset",
}

// LoadConfig reads settings from the environment, overlaid on an optional
// config file named by CONFIG_FILE.
func LoadConfig() (Config, error) {
	vip := viper.New()

	for key, def := range configKeys {
		vip.SetDefault(key, def)
		_ = vip.BindEnv(key)
	}
	_ = vip.BindEnv("CONFIG_FILE")

	if path := vip.GetString("CONFIG_FILE"); path != "" {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(vip)
}

func fromViper(vip *viper.Viper) (Config, error) {
	cfg := Config{
		Env:       strings.ToLower(vip.GetString("ENV")),
		LogLevel:  vip.GetString("LOG_LEVEL"),
		LogFormat: vip.GetString("LOG_FORMAT"),
		Port:      vip.GetInt("PORT"),

		DatabaseDriver: strings.ToLower(vip.GetString("DATABASE_DRIVER")),
		DatabaseFile:   vip.GetString("DATABASE_FILE"),
		DatabaseURL:    vip.GetString("DATABASE_URL"),
		PepperFile:     vip.GetString("PEPPER_FILE"),
		Pepper:         strings.TrimSpace(vip.GetString("PEPPER")),

		CleanupRunImmediately: vip.GetBool("CLEANUP_RUN_IMMEDIATELY"),

		RedisAddr:     vip.GetString("REDIS_ADDR"),
		RedisPassword: vip.GetString("REDIS_PASSWORD"),
		RedisDB:       vip.GetInt("REDIS_DB"),

		AdminJWTSecret: vip.GetString("ADMIN_JWT_SECRET"),
		AdminJWTIssuer: vip.GetString("ADMIN_JWT_ISSUER"),

		EmailProvider:    strings.ToLower(vip.GetString("EMAIL_PROVIDER")),
		ResendAPIKey:     vip.GetString("RESEND_API_KEY"),
		EmailFrom:        vip.GetString("EMAIL_FROM"),
		AppName:          vip.GetString("APP_NAME"),
		AppBaseURL:       vip.GetString("APP_BASE_URL"),
		ConfirmationPath: vip.GetString("CONFIRMATION_PATH"),
		ResetPath:        vip.GetString("RESET_PATH"),
	}

	defaultInterval := 5 * time.Minute
	if cfg.Env == "prod" {
		defaultInterval = 6 * time.Hour
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"SHUTDOWN_GRACE_PERIOD", &cfg.ShutdownGracePeriod, 10 * time.Second},
		{"CODE_TTL", &cfg.CodeTTL, 5 * time.Minute},
		{"STORE_TIMEOUT", &cfg.StoreTimeout, 30 * time.Second},
		{"CLEANUP_INTERVAL", &cfg.CleanupInterval, defaultInterval},
		{"CLEANUP_EXPIRED_RETENTION", &cfg.CleanupExpiredRetention, 0},
		{"CLEANUP_USED_RETENTION", &cfg.CleanupUsedRetention, 24 * time.Hour},
	}
	for _, d := range durations {
		if *d.dst, err = parseDuration(vip.GetString(d.key), d.def); err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseDuration accepts Go duration syntax ("90s", "6h") or a bare integer
// number of minutes. Empty input yields def.
func parseDuration(value string, def time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}
	return 0, fmt.Errorf("invalid duration %q", value)
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.EmailProvider {
	case EmailProviderLog:
	case EmailProviderResend:
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for the resend provider"))
		}
		if c.EmailFrom == "" {
			errs = append(errs, errors.New("EMAIL_FROM is required for the resend provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}

	if c.Env == "prod" && c.AdminJWTSecret == "" {
		errs = append(errs, errors.New("ADMIN_JWT_SECRET is required in prod"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.CodeTTL <= 0 {
		errs = append(errs, errors.New("CODE_TTL must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}
