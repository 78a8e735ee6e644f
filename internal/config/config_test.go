package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != 8760 {
		t.Errorf("Port = %d, want 8760", cfg.Port)
	}
	if cfg.WindowTurns != 16 || cfg.Stride != 8 || cfg.MaxChars != 16384 {
		t.Errorf("window params = %d/%d/%d", cfg.WindowTurns, cfg.Stride, cfg.MaxChars)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DISTILL_PORT", "9000")
	t.Setenv("DISTILL_WINDOW_TURNS", "24")
	t.Setenv("DISTILL_TELEMETRY", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/distill")

	cfg := Load()
	if cfg.Port != 9000 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.WindowTurns != 24 {
		t.Errorf("WindowTurns = %d", cfg.WindowTurns)
	}
	if !cfg.TelemetryEnabled {
		t.Error("TelemetryEnabled = false")
	}
	if cfg.DatabaseURL != "postgres://localhost/distill" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("DISTILL_PORT", "not-a-number")
	if cfg := Load(); cfg.Port != 8760 {
		t.Errorf("Port = %d, want fallback 8760", cfg.Port)
	}
}
