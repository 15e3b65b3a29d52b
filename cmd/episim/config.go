package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/mini-epidemic/internal/engine"
)

// options is everything the driver reads from the environment.
type options struct {
	Sim      engine.Config
	Ticks    uint64
	Interval time.Duration
	DBPath   string
	LogLevel slog.Level
}

// loadOptions overrides the defaults from EPISIM_* environment variables.
func loadOptions() (options, error) {
	cfg := engine.DefaultConfig()
	cfg.Width = envFloatOrDefault("EPISIM_WIDTH", cfg.Width)
	cfg.Height = envFloatOrDefault("EPISIM_HEIGHT", cfg.Height)
	cfg.Population = envIntOrDefault("EPISIM_POPULATION", cfg.Population)
	cfg.InfectionRadius = envFloatOrDefault("EPISIM_RADIUS", cfg.InfectionRadius)
	cfg.BirthRate = envFloatOrDefault("EPISIM_BIRTH_RATE", cfg.BirthRate)
	cfg.MaxAge = envIntOrDefault("EPISIM_MAX_AGE", cfg.MaxAge)
	cfg.Placement = engine.Placement(envOrDefault("EPISIM_PLACEMENT", string(cfg.Placement)))

	if v := os.Getenv("EPISIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return options{}, fmt.Errorf("EPISIM_SEED: %w", err)
		}
		cfg.Seed = seed
	}

	if v := os.Getenv("EPISIM_SPEEDS"); v != "" {
		speeds, err := parseSpeeds(v)
		if err != nil {
			return options{}, fmt.Errorf("EPISIM_SPEEDS: %w", err)
		}
		cfg.Speeds = speeds
	}

	ticks, err := envNonNegativeInt("EPISIM_TICKS", 100)
	if err != nil {
		return options{}, err
	}
	intervalMS, err := envNonNegativeInt("EPISIM_INTERVAL_MS", 100)
	if err != nil {
		return options{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(envOrDefault("EPISIM_LOG_LEVEL", "INFO"))); err != nil {
		return options{}, fmt.Errorf("EPISIM_LOG_LEVEL: %w", err)
	}

	opts := options{
		Sim:      cfg,
		Ticks:    uint64(ticks),
		Interval: time.Duration(intervalMS) * time.Millisecond,
		DBPath:   os.Getenv("EPISIM_DB"),
		LogLevel: level,
	}
	return opts, cfg.Validate()
}

// parseSpeeds reads a comma-separated list such as "1,2,3".
func parseSpeeds(v string) ([]int, error) {
	var speeds []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		speeds = append(speeds, n)
	}
	return speeds, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// envNonNegativeInt reads an integer that must not be negative.
func envNonNegativeInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative (got %d)", key, n)
	}
	return n, nil
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
