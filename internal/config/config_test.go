package config

import (
	"errors"
	"testing"
)

func TestLoadRequiresStatsdHost(t *testing.T) {
	t.Setenv("STATSD_HOST", "")

	_, err := Load()
	if !errors.Is(err, ErrNoMetricsHost) {
		t.Fatalf("Expected ErrNoMetricsHost, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STATSD_HOST", "graphite.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != 3002 {
		t.Errorf("Expected default port 3002, got %d", cfg.Port)
	}
	if cfg.StatsdPort != 8125 {
		t.Errorf("Expected default statsd port 8125, got %d", cfg.StatsdPort)
	}
	if cfg.Mode != ModeProduction {
		t.Errorf("Expected default mode production, got %s", cfg.Mode)
	}
	if cfg.StatsdAddr() != "graphite.internal:8125" {
		t.Errorf("Unexpected statsd addr %s", cfg.StatsdAddr())
	}
	if cfg.MetricPrefix() != "development.roomwatch" {
		t.Errorf("Unexpected metric prefix %s", cfg.MetricPrefix())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STATSD_HOST", "localhost")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MODE", "benchmark")
	t.Setenv("PORT", "8090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Mode != ModeBenchmark {
		t.Errorf("Expected benchmark mode, got %s", cfg.Mode)
	}
	if cfg.Port != 8090 {
		t.Errorf("Expected port 8090, got %d", cfg.Port)
	}
	if cfg.MetricPrefix() != "production.roomwatch" {
		t.Errorf("Unexpected metric prefix %s", cfg.MetricPrefix())
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("STATSD_HOST", "localhost")
	t.Setenv("MODE", "staging")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown mode")
	}
}
