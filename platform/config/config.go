package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	_ "github.com/joho/godotenv/autoload"
)

type DB struct {
	User     string
	Addr     string
	Password string
	Name     string
}

type Config struct {
	HTTPAddr       string
	SocketAddr     string
	AllowedOrigins []string
	DB             DB
	RedisURL       string
	JWTSecret      string
	LogLevel       string
	LogFormat      string
	Store          string // "redis" or "memory"
	LockTTL        time.Duration
	Rules          models.Settings
}

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Load reads the environment (and a .env file when present).
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       env("HTTP_ADDR", ":4101"),
		SocketAddr:     env("SOCKET_ADDR", ":8000"),
		AllowedOrigins: strings.Split(env("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		DB: DB{
			User:     os.Getenv("DB_USER"),
			Addr:     env("DB_ADDR", "localhost:5432"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		RedisURL:  env("REDIS_URL", "localhost:6379"),
		JWTSecret: env("JWT_SECRET", "secret"),
		LogLevel:  env("LOG_LEVEL", "info"),
		LogFormat: env("LOG_FORMAT", "text"),
		Store:     env("GAME_STORE", StoreRedis),
	}
	if cfg.Store != StoreRedis && cfg.Store != StoreMemory {
		return Config{}, fmt.Errorf("GAME_STORE: unknown store %q", cfg.Store)
	}

	var err error
	if cfg.LockTTL, err = duration("LOCK_TTL", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Rules, err = rules(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func rules() (models.Settings, error) {
	s := models.DefaultSettings()
	var err error
	for key, dst := range map[string]*int64{
		"STARTING_CASH": &s.StartingCash,
		"GO_SALARY":     &s.GoSalary,
		"JAIL_FINE":     &s.JailFine,
		"BANK_FLOAT":    &s.BankFloat,
		"ENTRY_FEE":     &s.EntryFee,
	} {
		if *dst, err = integer(key, *dst); err != nil {
			return s, err
		}
	}
	for key, dst := range map[string]*time.Duration{
		"TURN_TIMEOUT": &s.TurnTimeout,
		"GRACE_PERIOD": &s.GracePeriod,
		"TRADE_EXPIRY": &s.TradeExpiry,
	} {
		if *dst, err = duration(key, *dst); err != nil {
			return s, err
		}
	}
	penalties, err := integer("MAX_TIMEOUT_PENALTIES", int64(s.MaxTimeoutPenalties))
	if err != nil {
		return s, err
	}
	s.MaxTimeoutPenalties = int(penalties)
	return s, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func integer(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
