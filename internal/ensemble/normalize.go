package ensemble

import (
	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/forensics"
)

// minStd guards the z-score against degenerate baseline entries.
const minStd = 1e-6

// Normalize maps one raw feature value to a non-negative anomaly
// magnitude: the z-score against the feature's baseline, kept only when
// it points in the suspicious direction. Unknown keys normalize to zero;
// a missing baseline is a configuration gap, never an error.
func Normalize(baselines map[forensics.FeatureKey]config.Baseline, key forensics.FeatureKey, value float64) float64 {
	baseline, ok := baselines[key]
	if !ok {
		return 0
	}

	std := baseline.Std
	if std < minStd {
		std = minStd
	}
	z := (value - baseline.Mean) / std

	if baseline.HigherSuspicious {
		return max(0, z)
	}
	return max(0, -z)
}
