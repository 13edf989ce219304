package ensemble

import (
	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/forensics"
)

// Aggregate combines anomaly magnitudes of all present, baselined
// features into one raw score: the weight-normalized mean of
// anomaly×weight. Renormalizing by present weight only keeps the score
// invariant to absent features, so a missing signal never deflates it.
// With no present weighted features the score is zero.
func Aggregate(baselines map[forensics.FeatureKey]config.Baseline, vec forensics.Vector) float64 {
	weightedSum := 0.0
	totalWeight := 0.0

	for key, value := range vec {
		baseline, ok := baselines[key]
		if !ok {
			continue
		}
		weightedSum += Normalize(baselines, key, value) * baseline.Weight
		totalWeight += baseline.Weight
	}

	if totalWeight <= 0 {
		return 0
	}
	return weightedSum / totalWeight
}
