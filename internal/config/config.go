package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a postgres URL usable by both the pgx and lib/pq drivers.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type Config struct {
	Port     string
	LogLevel string

	DB    DBConfig
	Redis RedisConfig

	UserID       string
	PasswordHash string
	Password     string
	JWTSecret    string
	JWTIssuer    string
	TokenTTL     time.Duration

	RemoteSync           bool
	LocalDBPath          string
	HabitMode            domain.HabitMode
	WeekStart            domain.WeekStart
	StreakAnchor         domain.StreakAnchor
	SaveDebounce         time.Duration
	ConnectivityInterval time.Duration
}

// New reads the environment, loading .env first when one is present.
func New() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "pgx"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "kanso_user"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "kanso_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		UserID:       os.Getenv("TRACKER_USER_ID"),
		PasswordHash: os.Getenv("TRACKER_PASSWORD_HASH"),
		Password:     os.Getenv("TRACKER_PASSWORD"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTIssuer:    getEnv("JWT_ISSUER", "kanso-tracker"),
		LocalDBPath:  getEnv("TRACKER_LOCAL_DB", "data/tracker.db"),
	}

	var err error
	if cfg.Redis.Enabled, err = getBool("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RemoteSync, err = getBool("TRACKER_REMOTE_SYNC", false); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SaveDebounce, err = getDuration("TRACKER_SAVE_DEBOUNCE", time.Second); err != nil {
		return nil, err
	}
	if cfg.ConnectivityInterval, err = getDuration("TRACKER_CONNECTIVITY_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HabitMode, err = domain.ParseHabitMode(os.Getenv("TRACKER_HABIT_MODE")); err != nil {
		return nil, fmt.Errorf("config: TRACKER_HABIT_MODE: %w", err)
	}
	if cfg.WeekStart, err = domain.ParseWeekStart(os.Getenv("TRACKER_WEEK_START")); err != nil {
		return nil, fmt.Errorf("config: TRACKER_WEEK_START: %w", err)
	}
	if cfg.StreakAnchor, err = domain.ParseStreakAnchor(os.Getenv("TRACKER_STREAK_ANCHOR")); err != nil {
		return nil, fmt.Errorf("config: TRACKER_STREAK_ANCHOR: %w", err)
	}

	switch cfg.DB.Driver {
	case "pgx", "postgres":
	default:
		return nil, fmt.Errorf("config: DB_DRIVER must be pgx or postgres, got %q", cfg.DB.Driver)
	}

	return cfg, nil
}

// AuthEnabled reports whether a dashboard password is configured.
func (c *Config) AuthEnabled() bool {
	return c.PasswordHash != "" || c.Password != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return v, nil
}
