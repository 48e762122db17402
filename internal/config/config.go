package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/streak"
	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	JWTIssuer         string
	JWTLifetime       time.Duration
	StreakLocation    *time.Location
	StreakContinuity  streak.Continuity
	AllowedOrigins    []string
	StaleSessionAfter time.Duration
	SweepInterval     time.Duration
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable not set")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET environment variable not set")
)

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	getEnv := func(key, defaultValue string) string {
		if value, exists := lookup(key); exists && value != "" {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", "meditation-app"),
	}

	var err error
	if cfg.JWTLifetime, err = parseDuration("JWT_LIFETIME", getEnv("JWT_LIFETIME", "720h")); err != nil {
		return nil, err
	}
	if cfg.StaleSessionAfter, err = parseDuration("STALE_SESSION_AFTER", getEnv("STALE_SESSION_AFTER", "12h")); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = parseDuration("SWEEP_INTERVAL", getEnv("SWEEP_INTERVAL", "15m")); err != nil {
		return nil, err
	}

	tz := getEnv("STREAK_TIMEZONE", "UTC")
	if cfg.StreakLocation, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid STREAK_TIMEZONE %q: %w", tz, err)
	}

	if cfg.StreakContinuity, err = streak.ParseContinuity(getEnv("STREAK_CONTINUITY", string(streak.ContinuityToday))); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// RequireDatabase checks the settings needed to open the database
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// RequireServer checks the settings needed to serve the API
func (c *Config) RequireServer() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
