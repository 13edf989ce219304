package forensics

// MediaType describes what kind of media an analysis covered.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// RiskLevel is the discrete risk grade attached to a verdict.
type RiskLevel string

const (
	RiskLow          RiskLevel = "low"
	RiskSuspicious   RiskLevel = "suspicious"
	RiskHarmful      RiskLevel = "harmful"
	RiskHigh         RiskLevel = "high_risk"
	RiskInconclusive RiskLevel = "inconclusive"
)

// Verdict is the final authenticity call.
type Verdict string

const (
	VerdictAuthentic    Verdict = "authentic"
	VerdictSuspicious   Verdict = "suspicious"
	VerdictManipulated  Verdict = "manipulated"
	VerdictInconclusive Verdict = "inconclusive"
)

// ScoringMethod records which path produced the probability.
type ScoringMethod string

const (
	MethodWeightedEnsemble ScoringMethod = "weighted_ensemble"
	MethodTrainedOverride  ScoringMethod = "trained_override"
)

// Result is the calibrated output of the fusion engine for one request.
type Result struct {
	RawScore        float64       `json:"raw_score"`
	FakeProbability float64       `json:"fake_probability"`
	Method          ScoringMethod `json:"scoring_method"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	RiskScore       int           `json:"risk_score"`
	Verdict         Verdict       `json:"verdict"`
	Explanation     string        `json:"explanation"`
}
