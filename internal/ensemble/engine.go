package ensemble

import (
	"log"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/forensics"
	"github.com/verilens-ai/verilens/internal/override"
)

// OverridePredictor is the trained-model hook consumed by the engine.
// *override.Predictor implements it; tests substitute fakes.
type OverridePredictor interface {
	Predict(vec forensics.Vector) override.Prediction
	Available() bool
}

// Engine fuses a feature vector and signal list into one calibrated
// scoring result. It holds only immutable configuration plus the shared
// override handle, so a single Engine serves concurrent requests.
type Engine struct {
	baselines   map[forensics.FeatureKey]config.Baseline
	calibration config.CalibrationConfig
	risk        config.RiskConfig
	override    OverridePredictor
}

// New builds an engine from configuration. ov may be nil when no
// override artifact is configured.
func New(cfg *config.Config, ov OverridePredictor) *Engine {
	baselines := make(map[forensics.FeatureKey]config.Baseline, len(cfg.Baselines))
	for key, b := range cfg.Baselines {
		baselines[forensics.FeatureKey(key)] = b
	}
	return &Engine{
		baselines:   baselines,
		calibration: cfg.Calibration,
		risk:        cfg.Risk,
		override:    ov,
	}
}

// OverrideAvailable reports whether the trained override model is loaded,
// for health/status reporting.
func (e *Engine) OverrideAvailable() bool {
	return e.override != nil && e.override.Available()
}

// Score runs the full fusion chain: trained override when available,
// otherwise weighted ensemble plus Platt calibration, then risk
// classification and explanation synthesis. It never fails: an empty
// vector and signal list still produce a well-formed authentic/low
// result.
func (e *Engine) Score(vec forensics.Vector, signals []forensics.Signal, mediaType forensics.MediaType) forensics.Result {
	method := forensics.MethodWeightedEnsemble
	var rawScore, probability float64

	if e.override != nil {
		if pred := e.override.Predict(vec); pred.Status == override.StatusOK {
			rawScore = pred.Probability
			probability = pred.Probability
			method = forensics.MethodTrainedOverride
		} else if pred.Status == override.StatusFailed {
			log.Printf("ensemble: override prediction failed, using weighted ensemble: %v", pred.Err)
		}
	}

	if method == forensics.MethodWeightedEnsemble {
		rawScore = Aggregate(e.baselines, vec)
		probability = Calibrate(rawScore, e.calibration.A, e.calibration.B)
	}

	classification := Classify(e.risk, probability)

	explanation := Explain(vec, signals, probability, mediaType, classification.Verdict)
	if method == forensics.MethodTrainedOverride {
		explanation += " " + overrideFootnote
	}

	return forensics.Result{
		RawScore:        rawScore,
		FakeProbability: probability,
		Method:          method,
		RiskLevel:       classification.RiskLevel,
		RiskScore:       classification.RiskScore,
		Verdict:         classification.Verdict,
		Explanation:     explanation,
	}
}
