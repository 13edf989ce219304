package override

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/forensics"
)

func canonicalKeyStrings() []string {
	keys := make([]string, len(forensics.CanonicalKeys))
	for i, k := range forensics.CanonicalKeys {
		keys[i] = string(k)
	}
	return keys
}

func writeMetadata(t *testing.T, dir string, meta Metadata) string {
	t.Helper()
	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	path := filepath.Join(dir, "meta_classifier_meta.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	return path
}

func TestLoadMetadataAcceptsCanonicalOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeMetadata(t, dir, Metadata{
		FeatureKeys: canonicalKeyStrings(),
		Metrics:     TrainingMetrics{AUC: 0.97, NFeatures: len(forensics.CanonicalKeys)},
	})

	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("expected canonical metadata to load, got: %v", err)
	}
	if meta.Metrics.AUC != 0.97 {
		t.Fatalf("expected AUC 0.97, got %v", meta.Metrics.AUC)
	}
}

func TestLoadMetadataRejectsReorderedKeys(t *testing.T) {
	keys := canonicalKeyStrings()
	keys[0], keys[1] = keys[1], keys[0]

	dir := t.TempDir()
	path := writeMetadata(t, dir, Metadata{FeatureKeys: keys})

	if _, err := LoadMetadata(path); err == nil {
		t.Fatalf("expected feature-order mismatch error for reordered keys")
	}
}

func TestLoadMetadataRejectsMissingKeys(t *testing.T) {
	keys := canonicalKeyStrings()

	dir := t.TempDir()
	path := writeMetadata(t, dir, Metadata{FeatureKeys: keys[:len(keys)-1]})

	if _, err := LoadMetadata(path); err == nil {
		t.Fatalf("expected feature-order mismatch error for truncated keys")
	}
}

func TestVectorToInputEncodesMissingAsSentinel(t *testing.T) {
	vec := forensics.Vector{}
	vec.Set(forensics.KeyHFER, 0.0) // legitimately zero, must not look missing
	vec.Set(forensics.KeyDeepfakeProb, 0.9)

	arr := vectorToInput(vec)
	if len(arr) != len(forensics.CanonicalKeys) {
		t.Fatalf("expected %d inputs, got %d", len(forensics.CanonicalKeys), len(arr))
	}

	for i, key := range forensics.CanonicalKeys {
		switch key {
		case forensics.KeyHFER:
			if arr[i] != 0 {
				t.Fatalf("expected computed zero for hfer, got %v", arr[i])
			}
		case forensics.KeyDeepfakeProb:
			if arr[i] != 0.9 {
				t.Fatalf("expected 0.9 for deepfake_prob, got %v", arr[i])
			}
		default:
			if arr[i] != missingSentinel {
				t.Fatalf("expected sentinel for absent %s, got %v", key, arr[i])
			}
		}
	}
}

func TestPredictorWithoutArtifactIsUnavailable(t *testing.T) {
	p := NewPredictor(config.OverrideConfig{})

	pred := p.Predict(forensics.Vector{})
	if pred.Status != StatusUnavailable {
		t.Fatalf("expected unavailable without configured dir, got %v", pred.Status)
	}
	if p.Available() {
		t.Fatalf("expected Available() to be false without artifact")
	}
}

func TestPredictorMissingModelFileIsUnavailable(t *testing.T) {
	p := NewPredictor(config.OverrideConfig{
		Dir:          t.TempDir(),
		ModelFile:    "meta_classifier.onnx",
		MetadataFile: "meta_classifier_meta.json",
	})

	pred := p.Predict(forensics.Vector{})
	if pred.Status != StatusUnavailable {
		t.Fatalf("expected unavailable for empty artifact dir, got %v", pred.Status)
	}
}

func TestPredictorCorruptArtifactFailsOnce(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "meta_classifier.onnx"), []byte("not a model"), 0o644); err != nil {
		t.Fatalf("write fake model: %v", err)
	}
	// No metadata file → load must fail, and the failure must be memoized.
	p := NewPredictor(config.OverrideConfig{
		Dir:          dir,
		ModelFile:    "meta_classifier.onnx",
		MetadataFile: "meta_classifier_meta.json",
	})

	first := p.Predict(forensics.Vector{})
	if first.Status != StatusFailed {
		t.Fatalf("expected failed load for corrupt artifact, got %v", first.Status)
	}
	if first.Err == nil {
		t.Fatalf("expected failed prediction to carry the load error")
	}

	second := p.Predict(forensics.Vector{})
	if second.Status != StatusFailed || second.Err != first.Err {
		t.Fatalf("expected memoized load failure on repeat call")
	}
	if p.Available() {
		t.Fatalf("expected Available() to be false after failed load")
	}
}
