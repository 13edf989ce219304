package forensics

import "fmt"

// Category groups signals by the kind of evidence they carry.
type Category string

const (
	CategoryVisual   Category = "visual"
	CategoryTemporal Category = "temporal"
	CategorySpectral Category = "spectral"
	CategoryMetadata Category = "metadata"
	CategorySemantic Category = "semantic"
)

// Severity grades how damaging a single finding is on its own.
type Severity string

const (
	SeverityLow        Severity = "low"
	SeveritySuspicious Severity = "suspicious"
	SeverityHarmful    Severity = "harmful"
	SeverityHighRisk   Severity = "high_risk"
)

// Source records which layer produced a signal.
type Source string

const (
	SourceHeuristic  Source = "heuristic"
	SourcePretrained Source = "pretrained"
	SourceEnsemble   Source = "ensemble"
)

// Signal is one discrete, explainable finding attached to a detector.
// IDs are stable across runs for audit correlation; within a single
// analysis the same ID may repeat (e.g. per-frame findings).
type Signal struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	// MetricValue carries the metric that triggered the signal, when one
	// exists. Nil means the signal has no scalar metric, not zero.
	MetricValue *float64 `json:"metric_value,omitempty"`
	Source      Source   `json:"source"`
}

// WithMetric returns a copy of s carrying v as its metric value.
func (s Signal) WithMetric(v float64) Signal {
	s.MetricValue = &v
	return s
}

// Validate checks that the enum fields hold known values and confidence
// is a probability. Extractors construct signals from constants, so this
// is only exercised on externally supplied signal lists.
func (s Signal) Validate() error {
	switch s.Category {
	case CategoryVisual, CategoryTemporal, CategorySpectral, CategoryMetadata, CategorySemantic:
	default:
		return fmt.Errorf("unknown signal category %q", s.Category)
	}
	switch s.Severity {
	case SeverityLow, SeveritySuspicious, SeverityHarmful, SeverityHighRisk:
	default:
		return fmt.Errorf("unknown signal severity %q", s.Severity)
	}
	switch s.Source {
	case SourceHeuristic, SourcePretrained, SourceEnsemble:
	default:
		return fmt.Errorf("unknown signal source %q", s.Source)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("signal confidence %v outside [0,1]", s.Confidence)
	}
	return nil
}
