package temporal

import (
	"fmt"
	"math"

	"github.com/verilens-ai/verilens/internal/forensics"
	"gonum.org/v1/gonum/stat"
)

// FrameAggregate reduces per-frame model probabilities to scalar features.
type FrameAggregate struct {
	// MeanProbability is the deepfake probability averaged over frames.
	// Nil when no frames were scored.
	MeanProbability *float64
	// Consistency is the frame-consistency feature, min(1, std*3).
	// Nil when fewer than two frames were scored.
	Consistency *float64
	Std         float64
	Frames      int
	Signals     []forensics.Signal
}

const frameInconsistencyStd = 0.15

// AggregateFrameScores collapses the per-frame probabilities of a sampled
// video into the deepfake probability and frame-consistency features. A
// genuine video scores frames consistently; splices and partial swaps show
// up as high variance across frames even when the mean stays moderate.
func AggregateFrameScores(probabilities []float64) FrameAggregate {
	agg := FrameAggregate{Frames: len(probabilities)}
	if len(probabilities) == 0 {
		return agg
	}

	mean := stat.Mean(probabilities, nil)
	agg.MeanProbability = &mean
	if len(probabilities) < 2 {
		return agg
	}

	std := popStd(probabilities, mean)
	agg.Std = std
	consistency := math.Min(1.0, std*3)
	agg.Consistency = &consistency

	if std > frameInconsistencyStd {
		agg.Signals = append(agg.Signals, forensics.Signal{
			ID:         "vid-frame-inconsistency",
			Name:       "Frame Score Inconsistency",
			Category:   forensics.CategoryTemporal,
			Confidence: math.Min(0.85, std*3),
			Description: fmt.Sprintf(
				"Per-frame manipulation scores vary widely (std %.3f over %d frames), suggesting partial or spliced manipulation", std, len(probabilities)),
			Severity: forensics.SeveritySuspicious,
			Source:   forensics.SourcePretrained,
		}.WithMetric(std))
	}
	return agg
}

func popStd(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
