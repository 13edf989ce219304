package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	for key, b := range cfg.Baselines {
		if strings.TrimSpace(key) == "" {
			return errors.New("baseline key must not be empty")
		}
		if b.Std <= 0 {
			return fmt.Errorf("baseline %q: std must be > 0, got %v", key, b.Std)
		}
		if b.Weight < 0 {
			return fmt.Errorf("baseline %q: weight must be >= 0, got %v", key, b.Weight)
		}
	}

	if cfg.Calibration.A <= 0 {
		return fmt.Errorf("calibration.a must be > 0 to keep the sigmoid monotonic, got %v", cfg.Calibration.A)
	}

	if err := validateRiskConfig(cfg.Risk); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateRiskConfig(r RiskConfig) error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"risk.high_threshold", r.HighThreshold},
		{"risk.harmful_threshold", r.HarmfulThreshold},
		{"risk.suspicious_threshold", r.SuspiciousThreshold},
		{"risk.inconclusive_low", r.InconclusiveLow},
		{"risk.inconclusive_high", r.InconclusiveHigh},
	}
	for _, t := range thresholds {
		if t.value < 0 || t.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", t.name, t.value)
		}
	}

	if r.HighThreshold <= r.HarmfulThreshold {
		return fmt.Errorf("risk.high_threshold (%v) must exceed risk.harmful_threshold (%v)", r.HighThreshold, r.HarmfulThreshold)
	}
	if r.HarmfulThreshold <= r.SuspiciousThreshold {
		return fmt.Errorf("risk.harmful_threshold (%v) must exceed risk.suspicious_threshold (%v)", r.HarmfulThreshold, r.SuspiciousThreshold)
	}
	if r.InconclusiveLow > r.InconclusiveHigh {
		return fmt.Errorf("risk.inconclusive_low (%v) must not exceed risk.inconclusive_high (%v)", r.InconclusiveLow, r.InconclusiveHigh)
	}

	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry.endpoint must be set when telemetry is enabled")
	}
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
	}
	return nil
}
