// Package config builds runtime configuration from the environment so main
// stays lean. Privacy parameters are validated up front: an aggregation run
// must never start writing with a broken threshold or epsilon.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Privacy holds the parameters of the publication mechanism. They are passed
// explicitly into the aggregation entry point rather than read from globals,
// so tests and re-runs can use different values without interference.
type Privacy struct {
	// KMin is the minimum distinct-contributor count before a cohort may be
	// published (EMA / Health Canada anonymization guidance uses 11).
	KMin int
	// Epsilon is the differential-privacy budget. Smaller means more noise.
	Epsilon float64
	// HoursCeiling bounds one contributor's weekly influence on a mean
	// (24 hours x 7 days).
	HoursCeiling float64
	// SuppressionThreshold is the coarser minimum report count used by the
	// legacy analytics path.
	SuppressionThreshold int
	// BootstrapIterations is the resample count for confidence intervals.
	BootstrapIterations int
	// CINoiseScale is the fixed Laplace scale applied to CI bounds, in hours.
	CINoiseScale float64
}

// Validate rejects parameter combinations that would make publication either
// meaningless or unsafe.
func (p Privacy) Validate() error {
	if p.KMin < 2 {
		return fmt.Errorf("k-anonymity threshold must be at least 2, got %d", p.KMin)
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %v", p.Epsilon)
	}
	if p.HoursCeiling <= 0 {
		return fmt.Errorf("hours ceiling must be positive, got %v", p.HoursCeiling)
	}
	if p.SuppressionThreshold < 1 {
		return fmt.Errorf("suppression threshold must be at least 1, got %d", p.SuppressionThreshold)
	}
	if p.BootstrapIterations < 1 {
		return fmt.Errorf("bootstrap iterations must be at least 1, got %d", p.BootstrapIterations)
	}
	if p.CINoiseScale < 0 {
		return fmt.Errorf("ci noise scale must be non-negative, got %v", p.CINoiseScale)
	}
	return nil
}

// DefaultPrivacy returns the deployment defaults observed in production.
func DefaultPrivacy() Privacy {
	return Privacy{
		KMin:                 11,
		Epsilon:              1.0,
		HoursCeiling:         24 * 7,
		SuppressionThreshold: 5,
		BootstrapIterations:  200,
		CINoiseScale:         0.05,
	}
}

// RedisConfig captures cache connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SummaryTTL   time.Duration
}

// Config is everything the two binaries need.
type Config struct {
	Addr         string
	DatabaseURL  string
	KafkaBrokers string
	KafkaTopic   string
	Redis        RedisConfig
	Privacy      Privacy
}

// FromEnv builds a Config from environment variables, falling back to the
// defaults above.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:         envOr("WORKLENS_ADDR", ":8080"),
		DatabaseURL:  os.Getenv("WORKLENS_DB_URL"),
		KafkaBrokers: os.Getenv("WORKLENS_KAFKA_BROKERS"),
		KafkaTopic:   envOr("WORKLENS_KAFKA_TOPIC", "worklens.aggregation.runs"),
		Redis: RedisConfig{
			URL:          os.Getenv("WORKLENS_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			SummaryTTL:   5 * time.Minute,
		},
		Privacy: DefaultPrivacy(),
	}

	var err error
	if cfg.Privacy.KMin, err = envIntOr("WORKLENS_K_MIN", cfg.Privacy.KMin); err != nil {
		return Config{}, err
	}
	if cfg.Privacy.Epsilon, err = envFloatOr("WORKLENS_EPSILON", cfg.Privacy.Epsilon); err != nil {
		return Config{}, err
	}
	if cfg.Privacy.HoursCeiling, err = envFloatOr("WORKLENS_HOURS_CEILING", cfg.Privacy.HoursCeiling); err != nil {
		return Config{}, err
	}
	if cfg.Privacy.SuppressionThreshold, err = envIntOr("WORKLENS_SUPPRESSION_THRESHOLD", cfg.Privacy.SuppressionThreshold); err != nil {
		return Config{}, err
	}
	if cfg.Privacy.BootstrapIterations, err = envIntOr("WORKLENS_BOOTSTRAP_ITERATIONS", cfg.Privacy.BootstrapIterations); err != nil {
		return Config{}, err
	}

	if err := cfg.Privacy.Validate(); err != nil {
		return Config{}, fmt.Errorf("privacy config: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envFloatOr(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}
