package config

import (
	"os"
	"strconv"
)

type Config struct {
	SessionsDir string
	OutputDir   string
	StatePath   string
	Port        int
	LogLevel    string

	// Windowing parameters.
	WindowTurns int
	Stride      int
	MaxChars    int

	// Optional integrations; empty disables each.
	DatabaseURL string
	NatsURL     string
	NatsToken   string

	// Telemetry endpoints for the outcome signal.
	MetricsURL       string
	LogsURL          string
	TelemetryEnabled bool
}

func Load() Config {
	return Config{
		SessionsDir: envStr("DISTILL_SESSIONS_DIR", "~/.claude/projects"),
		OutputDir:   envStr("DISTILL_OUTPUT_DIR", "output/datasets"),
		StatePath:   envStr("DISTILL_STATE_PATH", "~/.distill/state.json"),
		Port:        envInt("DISTILL_PORT", 8760),
		LogLevel:    envStr("LOG_LEVEL", "info"),

		WindowTurns: envInt("DISTILL_WINDOW_TURNS", 16),
		Stride:      envInt("DISTILL_WINDOW_STRIDE", 8),
		MaxChars:    envInt("DISTILL_MAX_CHARS", 16384),

		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),

		MetricsURL:       envStr("VICTORIA_METRICS_URL", "http://localhost:8428"),
		LogsURL:          envStr("VICTORIA_LOGS_URL", "http://localhost:9428"),
		TelemetryEnabled: envBool("DISTILL_TELEMETRY", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
