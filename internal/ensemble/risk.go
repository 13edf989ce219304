package ensemble

import (
	"math"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/forensics"
)

// Classification is the discrete risk outcome for one probability.
type Classification struct {
	RiskLevel forensics.RiskLevel
	RiskScore int
	Verdict   forensics.Verdict
}

// Classify maps a calibrated probability to a risk level and verdict.
// The inconclusive band is checked first and wins over every severity
// threshold it overlaps: probabilities the system deliberately withholds
// a firm verdict on must never be escalated. Both band ends are
// inclusive. The remaining thresholds are checked high to low.
func Classify(risk config.RiskConfig, probability float64) Classification {
	score := int(math.Round(probability * 100))

	if probability >= risk.InconclusiveLow && probability <= risk.InconclusiveHigh {
		return Classification{
			RiskLevel: forensics.RiskInconclusive,
			RiskScore: score,
			Verdict:   forensics.VerdictInconclusive,
		}
	}

	switch {
	case probability >= risk.HighThreshold:
		return Classification{forensics.RiskHigh, score, forensics.VerdictManipulated}
	case probability >= risk.HarmfulThreshold:
		return Classification{forensics.RiskHarmful, score, forensics.VerdictManipulated}
	case probability >= risk.SuspiciousThreshold:
		return Classification{forensics.RiskSuspicious, score, forensics.VerdictSuspicious}
	default:
		return Classification{forensics.RiskLow, score, forensics.VerdictAuthentic}
	}
}
