package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Empty(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format text, got %q", cfg.Logging.Format)
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected default endpoint, got %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected default sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if cfg.Profiling.Endpoint != "http://localhost:4040" {
		t.Errorf("Expected default profiling endpoint, got %q", cfg.Profiling.Endpoint)
	}
	if len(cfg.Profiling.ProfileTypes) != 4 {
		t.Errorf("Expected four default profile types, got %v", cfg.Profiling.ProfileTypes)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Probe.Port != 445 {
		t.Errorf("Expected default probe port 445, got %d", cfg.Probe.Port)
	}
	if cfg.Probe.Timeout != 10*time.Second {
		t.Errorf("Expected default timeout 10s, got %v", cfg.Probe.Timeout)
	}
	if len(cfg.Probe.Dialects) != 4 {
		t.Errorf("Expected four default dialects, got %v", cfg.Probe.Dialects)
	}
	if cfg.Probe.MaxResponseSize != 65536 {
		t.Errorf("Expected default max response size 65536, got %d", cfg.Probe.MaxResponseSize)
	}
}

func TestApplyDefaults_PreservesExplicit(t *testing.T) {
	cfg := Config{
		Logging: LoggingConfig{Level: "warn", Format: "JSON", Output: "stdout"},
		Probe:   ProbeConfig{Port: 139, Timeout: time.Second, Dialects: []string{"2.1"}},
	}
	ApplyDefaults(&cfg)

	if cfg.Logging.Level != "WARN" || cfg.Logging.Format != "json" || cfg.Logging.Output != "stdout" {
		t.Errorf("Logging values not preserved/normalized: %+v", cfg.Logging)
	}
	if cfg.Probe.Port != 139 || cfg.Probe.Timeout != time.Second || len(cfg.Probe.Dialects) != 1 {
		t.Errorf("Probe values not preserved: %+v", cfg.Probe)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
}
