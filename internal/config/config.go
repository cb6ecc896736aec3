package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Mode selects which of the two service behaviors is active. Production
// persists whatever the peers are editing; benchmark persists the harness
// payload and records bucketed write latencies.
type Mode string

const (
	ModeProduction Mode = "production"
	ModeBenchmark  Mode = "benchmark"
)

// ErrNoMetricsHost is returned when STATSD_HOST is not configured. The
// process must not start without a metrics destination.
var ErrNoMetricsHost = errors.New("statsd host is not configured")

type Config struct {
	// APIKey authorizes /listen and /stop requests.
	APIKey string

	// StatsdHost and StatsdPort address the metrics daemon.
	StatsdHost string
	StatsdPort int

	// Environment prefixes every metric name, e.g. "production.roomwatch.".
	Environment string

	Port int
	Mode Mode

	LogLevel string

	// DBPath is the sqlite file backing the durable store.
	DBPath string

	// ErrorLogPath collects persistence failures as a JSON array.
	ErrorLogPath string

	// LatencyExportPath is where /done writes the latency CSV.
	LatencyExportPath string
}

// Loads configuration from the environment. Values come from real env vars
// (a .env file, if present, is loaded by the caller before this runs).
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 3002)
	v.SetDefault("STATSD_PORT", 8125)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("MODE", string(ModeProduction))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_PATH", "./data/roomwatch.db")
	v.SetDefault("ERROR_LOG_PATH", "./data/errors.json")
	v.SetDefault("LATENCY_EXPORT_PATH", "./data/latency.csv")

	cfg := &Config{
		APIKey:            v.GetString("API_KEY"),
		StatsdHost:        v.GetString("STATSD_HOST"),
		StatsdPort:        v.GetInt("STATSD_PORT"),
		Environment:       v.GetString("ENVIRONMENT"),
		Port:              v.GetInt("PORT"),
		Mode:              Mode(v.GetString("MODE")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DBPath:            v.GetString("DB_PATH"),
		ErrorLogPath:      v.GetString("ERROR_LOG_PATH"),
		LatencyExportPath: v.GetString("LATENCY_EXPORT_PATH"),
	}

	if cfg.StatsdHost == "" {
		return nil, ErrNoMetricsHost
	}

	if cfg.Mode != ModeProduction && cfg.Mode != ModeBenchmark {
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	return cfg, nil
}

// MetricPrefix is the namespace prepended to every emitted metric.
func (c *Config) MetricPrefix() string {
	return c.Environment + ".roomwatch"
}

// StatsdAddr returns the host:port of the metrics daemon.
func (c *Config) StatsdAddr() string {
	return fmt.Sprintf("%s:%d", c.StatsdHost, c.StatsdPort)
}
