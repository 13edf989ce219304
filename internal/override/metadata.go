package override

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/verilens-ai/verilens/internal/forensics"
)

// TrainingMetrics captures the offline evaluation stored alongside the
// artifact at training time.
type TrainingMetrics struct {
	AUC           float64 `json:"auc"`
	Accuracy      float64 `json:"accuracy"`
	FPRAtHalf     float64 `json:"fpr_at_0.5"`
	NTrain        int     `json:"n_train"`
	NVal          int     `json:"n_val"`
	NFeatures     int     `json:"n_features"`
	SyntheticData bool    `json:"synthetic_data"`
}

// Metadata describes a trained override artifact: the exact feature-key
// order it was trained against plus training provenance.
type Metadata struct {
	FeatureKeys []string        `json:"feature_keys"`
	Metrics     TrainingMetrics `json:"metrics"`
	ModelPath   string          `json:"model_path,omitempty"`
}

// LoadMetadata reads and validates the artifact metadata descriptor.
// A feature-order mismatch against the engine's canonical key list is a
// configuration error caught here, before any prediction can silently
// misalign features.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read override metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("decode override metadata: %w", err)
	}

	if err := meta.CheckFeatureOrder(forensics.CanonicalKeys); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// CheckFeatureOrder verifies the artifact's recorded feature order matches
// the engine's canonical key list exactly, position by position.
func (m Metadata) CheckFeatureOrder(canonical []forensics.FeatureKey) error {
	if len(m.FeatureKeys) != len(canonical) {
		return fmt.Errorf("override feature-order mismatch: artifact has %d keys, engine expects %d",
			len(m.FeatureKeys), len(canonical))
	}
	for i, key := range canonical {
		if m.FeatureKeys[i] != string(key) {
			return fmt.Errorf("override feature-order mismatch at position %d: artifact %q, engine %q",
				i, m.FeatureKeys[i], key)
		}
	}
	return nil
}
