package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/flatground/skateline/internal/game"
)

// Config holds the application configuration
type Config struct {
	Port     int
	LogLevel string
	LogDir   string
	APIKey   string // API key for authentication

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Game rules
	JudgingMode     game.JudgingMode
	TurnWindow      time.Duration
	ChallengeWindow time.Duration
	StalledAfter    time.Duration
	DisputeWindow   time.Duration

	// Reconciler
	ReconcilerInterval time.Duration
	WarningLead        time.Duration
	WarningCooldown    time.Duration
	ScanLimit          int

	// Worker pool
	WorkerCount int
	QueueSize   int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		APIKey:      getEnv("API_KEY", ""),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "skateline"),
		JudgingMode: game.JudgingMode(getEnv("JUDGING_MODE", string(game.JudgingDualVote))),
	}

	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if cfg.TurnWindow, err = getEnvDuration("TURN_WINDOW", DefaultTurnWindow); err != nil {
		return nil, err
	}
	if cfg.ChallengeWindow, err = getEnvDuration("CHALLENGE_WINDOW", DefaultChallengeWindow); err != nil {
		return nil, err
	}
	if cfg.StalledAfter, err = getEnvDuration("STALLED_AFTER", DefaultStalledAfter); err != nil {
		return nil, err
	}
	if cfg.DisputeWindow, err = getEnvDuration("DISPUTE_WINDOW", DefaultDisputeWindow); err != nil {
		return nil, err
	}
	if cfg.ReconcilerInterval, err = getEnvDuration("RECONCILER_INTERVAL", DefaultReconcilerInterval); err != nil {
		return nil, err
	}
	if cfg.WarningLead, err = getEnvDuration("WARNING_LEAD", DefaultWarningLead); err != nil {
		return nil, err
	}
	if cfg.WarningCooldown, err = getEnvDuration("WARNING_COOLDOWN", DefaultWarningCooldown); err != nil {
		return nil, err
	}
	if cfg.ScanLimit, err = getEnvInt("SCAN_LIMIT", DefaultScanLimit); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", DefaultWorkerCount); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = getEnvInt("QUEUE_SIZE", DefaultQueueSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise only surface at runtime.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if !c.JudgingMode.Valid() {
		return fmt.Errorf("invalid JUDGING_MODE %q", c.JudgingMode)
	}
	if c.TurnWindow <= 0 {
		return fmt.Errorf("TURN_WINDOW must be positive")
	}
	if c.WarningLead >= c.TurnWindow {
		return fmt.Errorf("WARNING_LEAD must be shorter than TURN_WINDOW")
	}
	if c.StalledAfter <= c.TurnWindow {
		return fmt.Errorf("STALLED_AFTER must exceed TURN_WINDOW")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
