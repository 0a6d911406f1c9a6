package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
)

const (
	defaultDBPath        = "./data/expense_sync.db"
	defaultProbeInterval = 15 * time.Second
	defaultProbeTimeout  = 3 * time.Second
)

type Config struct {
	RemoteBaseURL string
	DBPath        string
	AppPort       string
	LogLevel      string
	ProbeAddr     string
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

func Load() (*Config, error) {
	// .env is optional, real environment variables win either way.
	_ = gotenv.Load()

	cfg := &Config{
		RemoteBaseURL: os.Getenv("REMOTE_BASE_URL"),
		DBPath:        os.Getenv("DATA_DB_PATH"),
		AppPort:       os.Getenv("APP_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		ProbeAddr:     os.Getenv("PROBE_ADDR"),
		ProbeInterval: defaultProbeInterval,
		ProbeTimeout:  defaultProbeTimeout,
	}

	if cfg.RemoteBaseURL == "" {
		return nil, fmt.Errorf("REMOTE_BASE_URL environment variable is required")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if intervalStr := os.Getenv("PROBE_INTERVAL_SECONDS"); intervalStr != "" {
		seconds, err := strconv.Atoi(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PROBE_INTERVAL_SECONDS: %w", err)
		}
		cfg.ProbeInterval = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}
