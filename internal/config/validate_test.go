package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Addr: ":8080"},
		Baselines:   DefaultBaselines(),
		Calibration: DefaultCalibration(),
		Risk:        DefaultRisk(),
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected default config to validate, got: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing server addr",
			mutate: func(c *Config) { c.Server.Addr = "" },
			want:   "server.addr",
		},
		{
			name: "zero baseline std",
			mutate: func(c *Config) {
				b := c.Baselines["hfer"]
				b.Std = 0
				c.Baselines["hfer"] = b
			},
			want: "std must be > 0",
		},
		{
			name: "negative baseline weight",
			mutate: func(c *Config) {
				b := c.Baselines["pdi"]
				b.Weight = -0.1
				c.Baselines["pdi"] = b
			},
			want: "weight",
		},
		{
			name:   "non-positive calibration slope",
			mutate: func(c *Config) { c.Calibration.A = 0 },
			want:   "calibration.a",
		},
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Risk.HighThreshold = 1.5 },
			want:   "high_threshold",
		},
		{
			name: "inverted severity thresholds",
			mutate: func(c *Config) {
				c.Risk.HighThreshold = 0.5
				c.Risk.HarmfulThreshold = 0.6
			},
			want: "must exceed",
		},
		{
			name: "inverted inconclusive band",
			mutate: func(c *Config) {
				c.Risk.InconclusiveLow = 0.7
				c.Risk.InconclusiveHigh = 0.3
			},
			want: "inconclusive_low",
		},
		{
			name:   "telemetry enabled without endpoint",
			mutate: func(c *Config) { c.Telemetry = TelemetryConfig{Enabled: true} },
			want:   "telemetry.endpoint",
		},
		{
			name: "bad telemetry protocol",
			mutate: func(c *Config) {
				c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "localhost:4317", Protocol: "udp"}
			},
			want: "telemetry.protocol",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error containing %q, got nil", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/verilens.yaml")
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if len(cfg.Baselines) == 0 {
		t.Fatalf("expected default baselines to be populated")
	}
	if cfg.Calibration.A != 2.5 || cfg.Calibration.B != -1.0 {
		t.Fatalf("expected default calibration (2.5, -1.0), got (%v, %v)", cfg.Calibration.A, cfg.Calibration.B)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
