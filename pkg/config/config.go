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

// Config is the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Solver   SolverConfig   `mapstructure:"solver"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig selects Postgres when URL is set, SQLite at Path otherwise
type DatabaseConfig struct {
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`
}

// AuthConfig holds admin and API key secrets
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	APIMasterSecret string        `mapstructure:"api_master_secret"`
	AdminUsername   string        `mapstructure:"admin_username"`
	AdminPassword   string        `mapstructure:"admin_password"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
}

// RedisConfig enables per-key daily rate limits when Addr is set
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SolverConfig holds roster generation limits and defaults
type SolverConfig struct {
	DefaultAttempts    int `mapstructure:"default_attempts"`
	MaxAttempts        int `mapstructure:"max_attempts"`
	MaxDates           int `mapstructure:"max_dates"`
	DefaultMinRestDays int `mapstructure:"default_min_rest_days"`
	DefaultMinDuties   int `mapstructure:"default_min_duties"`
}

// DefaultSolver returns the solver settings used when nothing overrides them
func DefaultSolver() SolverConfig {
	return SolverConfig{
		DefaultAttempts:    1,
		MaxAttempts:        50,
		MaxDates:           366,
		DefaultMinRestDays: 3,
		DefaultMinDuties:   4,
	}
}

// envFiles are tried in order; the first one found is loaded
var envFiles = []string{".env", "../.env", "../../.env"}

// Load reads configuration with precedence environment > config file >
// defaults. A .env file, when present, is loaded into the environment
// first.
func Load(path string) (*Config, error) {
	for _, p := range envFiles {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	v := viper.New()

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")

	v.SetDefault("db.url", "")
	v.SetDefault("db.path", "api_keys.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.api_master_secret", "")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "admin123")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	solver := DefaultSolver()
	v.SetDefault("solver.default_attempts", solver.DefaultAttempts)
	v.SetDefault("solver.max_attempts", solver.MaxAttempts)
	v.SetDefault("solver.max_dates", solver.MaxDates)
	v.SetDefault("solver.default_min_rest_days", solver.DefaultMinRestDays)
	v.SetDefault("solver.default_min_duties", solver.DefaultMinDuties)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used before the ROSTER_ prefix existed
	_ = v.BindEnv("db.url", "ROSTER_DB_URL", "DATABASE_URL")
	_ = v.BindEnv("db.path", "ROSTER_DB_PATH", "DATA_PATH")
	_ = v.BindEnv("server.port", "ROSTER_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.mode", "ROSTER_SERVER_MODE", "GIN_MODE")
	_ = v.BindEnv("auth.jwt_secret", "ROSTER_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.api_master_secret", "ROSTER_AUTH_API_MASTER_SECRET", "API_MASTER_SECRET")
	_ = v.BindEnv("auth.admin_username", "ROSTER_AUTH_ADMIN_USERNAME", "ADMIN_USERNAME")
	_ = v.BindEnv("auth.admin_password", "ROSTER_AUTH_ADMIN_PASSWORD", "ADMIN_PASSWORD")
	_ = v.BindEnv("redis.addr", "ROSTER_REDIS_ADDR", "REDIS_ADDR")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot run without
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	if c.Server.Mode == "release" && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters in release mode")
	}
	if c.Solver.MaxAttempts < 1 {
		return fmt.Errorf("invalid config: solver.max_attempts must be at least 1")
	}
	if c.Solver.DefaultAttempts < 1 || c.Solver.DefaultAttempts > c.Solver.MaxAttempts {
		return fmt.Errorf("invalid config: solver.default_attempts must be between 1 and solver.max_attempts")
	}
	if c.Solver.MaxDates < 1 {
		return fmt.Errorf("invalid config: solver.max_dates must be at least 1")
	}
	if c.Solver.DefaultMinRestDays < 0 {
		return fmt.Errorf("invalid config: solver.default_min_rest_days must not be negative")
	}
	return nil
}
