package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Backend selects the record-store implementation.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env            string   `mapstructure:"env"`             // current application environment (local, dev, production etc)
	HTTPPort       int      `mapstructure:"http_port"`       // port the API listens on
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS origins for browser clients
	Store          Store    `mapstructure:"store"`           // record-store section
	Scan           Scan     `mapstructure:"scan"`            // due-scan section
	Auth           Auth     `mapstructure:"-"`               // bearer auth, loaded from environment
	TelegramToken  string   `mapstructure:"-"`               // optional push delivery token, loaded from environment
}

// Store selects and configures the record-store backend.
type Store struct {
	Backend     string `mapstructure:"backend"`     // supabase | postgres | sqlite
	SupabaseURL string `mapstructure:"-"`           // project URL, loaded from environment
	SupabaseKey string `mapstructure:"-"`           // service key, loaded from environment
	DatabaseURL string `mapstructure:"-"`           // postgres DSN, loaded from environment
	SQLitePath  string `mapstructure:"sqlite_path"` // file path for the sqlite backend
}

// Scan configures the daily due-scan.
type Scan struct {
	Hour        int           `mapstructure:"hour"`        // hour of day (UTC) the scan fires
	Workers     int           `mapstructure:"workers"`     // bounded worker pool size
	Timeout     time.Duration `mapstructure:"timeout"`     // cap on one whole scan run
	Deduplicate bool          `mapstructure:"deduplicate"` // skip (user, rule) pairs already notified today
}

// Auth configures the bearer-token middleware.
type Auth struct {
	JWTSecret string
	Bypass    bool
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("http_port", 8080)
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("store.backend", BackendSupabase)
	v.SetDefault("store.sqlite_path", "data/lexibot.db")
	v.SetDefault("scan.hour", 9)
	v.SetDefault("scan.workers", 4)
	v.SetDefault("scan.timeout", "5m")
	v.SetDefault("scan.deduplicate", false)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("supabase_url", "SUPABASE_URL")
	_ = v.BindEnv("supabase_key", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("bypass_auth", "BYPASS_AUTH")
	_ = v.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.Store.SupabaseURL = v.GetString("supabase_url")
	cfg.Store.SupabaseKey = v.GetString("supabase_key")
	cfg.Store.DatabaseURL = v.GetString("database_url")
	cfg.Auth.JWTSecret = v.GetString("jwt_secret")
	cfg.Auth.Bypass = v.GetBool("bypass_auth")
	cfg.TelegramToken = v.GetString("telegram_bot_token")

	switch cfg.Store.Backend {
	case BackendSupabase:
		if cfg.Store.SupabaseURL == "" || cfg.Store.SupabaseKey == "" {
			return nil, fmt.Errorf("%w: SUPABASE_URL and SUPABASE_SERVICE_KEY", ErrMissingEnvironmentVariables)
		}
	case BackendPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
	case BackendSQLite:
		// file path has a default
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if !cfg.Auth.Bypass && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET (or set BYPASS_AUTH=true)", ErrMissingEnvironmentVariables)
	}

	return &cfg, nil
}
