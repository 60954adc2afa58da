package config

import "testing"

func TestLoadRequiresEnginePath(t *testing.T) {
	t.Setenv("ENGINE_PATH", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when ENGINE_PATH is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENGINE_PATH", "/usr/bin/stockfish")
	t.Setenv("NODES_PER_POSITION", "")
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("METRICS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NodesPerPosition != 100000 {
		t.Errorf("NodesPerPosition = %d, want 100000", cfg.NodesPerPosition)
	}
	if cfg.MaxEmptyReceives != 5 {
		t.Errorf("MaxEmptyReceives = %d, want 5", cfg.MaxEmptyReceives)
	}
	if cfg.VisibilityTimeoutSecs != 300 {
		t.Errorf("VisibilityTimeoutSecs = %d, want 300", cfg.VisibilityTimeoutSecs)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", cfg.MetricsAddr)
	}
	if cfg.WorkerConcurrency < 1 {
		t.Errorf("WorkerConcurrency = %d, want >= 1", cfg.WorkerConcurrency)
	}
	if cfg.SingleShot() {
		t.Error("SingleShot() should be false when GAME_ID is unset")
	}
}

func TestSingleShotWhenGameIDSet(t *testing.T) {
	t.Setenv("ENGINE_PATH", "/usr/bin/stockfish")
	t.Setenv("GAME_ID", "12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.SingleShot() {
		t.Error("SingleShot() should be true when GAME_ID is set")
	}
}
