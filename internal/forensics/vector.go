package forensics

// FeatureKey identifies one dimension of the feature vector.
type FeatureKey string

const (
	// Classical forensic metrics.
	KeyHFER             FeatureKey = "hfer"                // high-frequency energy ratio
	KeySVD              FeatureKey = "svd"                 // spectral variance deviation
	KeyPDI              FeatureKey = "pdi"                 // texture patch drift index
	KeyETK              FeatureKey = "etk"                 // energy-transition kurtosis
	KeyPVSS             FeatureKey = "pvss"                // pitch-variance smoothness score
	KeyFRD              FeatureKey = "frd"                 // spectral-flatness deviation
	KeyNoiseScore       FeatureKey = "noise_score"         // noise-residual score
	KeySpectralPeak     FeatureKey = "spectral_peak_score" // periodic spectral fingerprint
	KeyFAV              FeatureKey = "fav"                 // flow-acceleration variance score
	KeyFrameConsistency FeatureKey = "frame_consistency"   // per-frame prediction spread

	// Externally supplied model outputs.
	KeyDeepfakeProb   FeatureKey = "deepfake_prob"
	KeyIdentityDrift  FeatureKey = "identity_drift"
	KeyMetadataScore  FeatureKey = "metadata_score"
	KeyAudioSpoofProb FeatureKey = "audio_spoof_prob"
)

// CanonicalKeys is the fixed feature order the override predictor was
// trained against. Changing this order is a breaking change that must be
// matched by retraining; the override loader rejects artifacts whose
// recorded order differs.
var CanonicalKeys = []FeatureKey{
	KeyDeepfakeProb,
	KeyAudioSpoofProb,
	KeyIdentityDrift,
	KeyHFER,
	KeySVD,
	KeyPDI,
	KeyETK,
	KeyPVSS,
	KeyFRD,
	KeyMetadataScore,
	KeyNoiseScore,
	KeySpectralPeak,
	KeyFAV,
	KeyFrameConsistency,
}

// Vector maps feature keys to computed values. A key that is not in the
// map was not computed for this media unit; this is distinct from a key
// holding zero. Vectors are built once by the extraction stage and read
// by the fusion stage, never mutated in between.
type Vector map[FeatureKey]float64

// Set records a computed value for key.
func (v Vector) Set(key FeatureKey, value float64) {
	v[key] = value
}

// Get returns the value for key and whether it was computed.
func (v Vector) Get(key FeatureKey) (float64, bool) {
	value, ok := v[key]
	return value, ok
}

// Present reports how many features were actually computed.
func (v Vector) Present() int {
	return len(v)
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
