package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds Verilens configuration.
type Config struct {
	Server      ServerConfig        `yaml:"server"`
	Telemetry   TelemetryConfig     `yaml:"telemetry"`
	Baselines   map[string]Baseline `yaml:"baselines"`
	Calibration CalibrationConfig   `yaml:"calibration"`
	Risk        RiskConfig          `yaml:"risk"`
	Override    OverrideConfig      `yaml:"override"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
}

// Baseline is the per-feature normalization entry: expected distribution
// of the metric on authentic media plus its ensemble weight.
type Baseline struct {
	Mean             float64 `yaml:"mean"`
	Std              float64 `yaml:"std"`
	Weight           float64 `yaml:"weight"`
	HigherSuspicious bool    `yaml:"higher_suspicious"`
}

// CalibrationConfig holds the Platt scaling parameters. The defaults are
// provisional, pre-calibration values; production deployments refit A and
// B on labeled validation data.
type CalibrationConfig struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

// RiskConfig holds the verdict thresholds and the inconclusive band.
type RiskConfig struct {
	HighThreshold       float64 `yaml:"high_threshold"`
	HarmfulThreshold    float64 `yaml:"harmful_threshold"`
	SuspiciousThreshold float64 `yaml:"suspicious_threshold"`
	InconclusiveLow     float64 `yaml:"inconclusive_low"`
	InconclusiveHigh    float64 `yaml:"inconclusive_high"`
}

// OverrideConfig locates the trained override artifact. An empty dir
// disables the override path entirely.
type OverrideConfig struct {
	Dir          string `yaml:"dir"`
	ModelFile    string `yaml:"model_file"`
	MetadataFile string `yaml:"metadata_file"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Telemetry: TelemetryConfig{
			Protocol: "grpc",
		},
		Override: OverrideConfig{
			ModelFile:    "meta_classifier.onnx",
			MetadataFile: "meta_classifier_meta.json",
		},
	}
	cfg.Baselines = DefaultBaselines()
	cfg.Calibration = DefaultCalibration()
	cfg.Risk = DefaultRisk()
	return cfg
}

// DefaultCalibration returns the provisional Platt parameters.
func DefaultCalibration() CalibrationConfig {
	return CalibrationConfig{A: 2.5, B: -1.0}
}

// DefaultRisk returns the shipped risk thresholds and inconclusive band.
func DefaultRisk() RiskConfig {
	return RiskConfig{
		HighThreshold:       0.8,
		HarmfulThreshold:    0.55,
		SuspiciousThreshold: 0.3,
		InconclusiveLow:     0.4,
		InconclusiveHigh:    0.6,
	}
}

// DefaultBaselines returns the shipped per-feature baseline table.
// Means and standard deviations are empirical values for authentic media;
// model-output features carry the highest ensemble weights.
func DefaultBaselines() map[string]Baseline {
	return map[string]Baseline{
		"hfer":                {Mean: 0.25, Std: 0.08, Weight: 0.10, HigherSuspicious: false},
		"svd":                 {Mean: 0.15, Std: 0.12, Weight: 0.08, HigherSuspicious: true},
		"pdi":                 {Mean: 0.008, Std: 0.005, Weight: 0.08, HigherSuspicious: true},
		"etk":                 {Mean: 3.0, Std: 2.0, Weight: 0.06, HigherSuspicious: true},
		"pvss":                {Mean: 50.0, Std: 30.0, Weight: 0.06, HigherSuspicious: false},
		"frd":                 {Mean: 0.15, Std: 0.1, Weight: 0.06, HigherSuspicious: true},
		"deepfake_prob":       {Mean: 0.5, Std: 0.25, Weight: 0.25, HigherSuspicious: true},
		"identity_drift":      {Mean: 0.02, Std: 0.015, Weight: 0.10, HigherSuspicious: true},
		"metadata_score":      {Mean: 0.0, Std: 0.3, Weight: 0.07, HigherSuspicious: true},
		"audio_spoof_prob":    {Mean: 0.5, Std: 0.25, Weight: 0.20, HigherSuspicious: true},
		"noise_score":         {Mean: 0.1, Std: 0.15, Weight: 0.10, HigherSuspicious: true},
		"spectral_peak_score": {Mean: 0.05, Std: 0.10, Weight: 0.08, HigherSuspicious: true},
		"fav":                 {Mean: 0.1, Std: 0.15, Weight: 0.08, HigherSuspicious: true},
		"frame_consistency":   {Mean: 0.05, Std: 0.10, Weight: 0.06, HigherSuspicious: true},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if len(cfg.Baselines) == 0 {
		cfg.Baselines = DefaultBaselines()
	}
	if cfg.Calibration.A == 0 && cfg.Calibration.B == 0 {
		cfg.Calibration = DefaultCalibration()
	}
	if cfg.Risk == (RiskConfig{}) {
		cfg.Risk = DefaultRisk()
	}
	if cfg.Override.ModelFile == "" {
		cfg.Override.ModelFile = "meta_classifier.onnx"
	}
	if cfg.Override.MetadataFile == "" {
		cfg.Override.MetadataFile = "meta_classifier_meta.json"
	}
}
