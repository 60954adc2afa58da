// Package config loads the worker's environment-driven configuration
// schema via bare os.Getenv with documented defaults. No config-loading
// library (viper, envconfig, …) appears anywhere in the example pack, so
// none is introduced here.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config is the worker's fully-resolved startup configuration.
type Config struct {
	QueueURL              string
	QueueEndpointURL      string
	EnginePath            string
	NodesPerPosition      int
	MaxEmptyReceives      int
	VisibilityTimeoutSecs int
	GameID                string
	DatabaseURL           string
	WorkerConcurrency     int
	LogLevel              string
	MetricsAddr           string
}

// Load resolves Config from the process environment. ENGINE_PATH missing is
// the only fatal condition: everything else has a usable default.
func Load() (*Config, error) {
	enginePath := os.Getenv("ENGINE_PATH")
	if enginePath == "" {
		return nil, fmt.Errorf("config: ENGINE_PATH is required")
	}

	cfg := &Config{
		QueueURL:              os.Getenv("QUEUE_URL"),
		QueueEndpointURL:      os.Getenv("QUEUE_ENDPOINT_URL"),
		EnginePath:            enginePath,
		NodesPerPosition:      intEnv("NODES_PER_POSITION", 100000),
		MaxEmptyReceives:      intEnv("MAX_EMPTY_RECEIVES", 5),
		VisibilityTimeoutSecs: intEnv("VISIBILITY_TIMEOUT_SECS", 300),
		GameID:                os.Getenv("GAME_ID"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		WorkerConcurrency:     intEnv("WORKER_CONCURRENCY", runtime.NumCPU()),
		LogLevel:              stringEnv("LOG_LEVEL", "info"),
		MetricsAddr:           stringEnv("METRICS_ADDR", ":9090"),
	}
	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	return cfg, nil
}

// SingleShot reports whether the worker should process exactly one game id
// (GAME_ID set) and then exit, rather than running the poll loop.
func (c *Config) SingleShot() bool {
	return c.GameID != ""
}

func intEnv(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func stringEnv(name, def string) string {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	return v
}
