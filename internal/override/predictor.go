package override

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/forensics"
	ort "github.com/yalue/onnxruntime_go"
)

// missingSentinel encodes an absent feature in the model input. The model
// was trained with the same sentinel, so it can tell "missing" apart from
// a legitimate zero.
const missingSentinel = -1.0

// Predictor wraps the trained meta-classifier artifact. The artifact is
// loaded at most once per process; both success and failure are memoized
// so concurrent first requests never trigger duplicate loads and repeated
// requests never retry an expensive failing load.
type Predictor struct {
	cfg config.OverrideConfig

	once    sync.Once
	model   *model
	loadErr error
}

type model struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	meta    Metadata
	classes int

	mu sync.Mutex
}

// NewPredictor builds a predictor for the configured artifact location.
// No I/O happens until the first Predict or Available call.
func NewPredictor(cfg config.OverrideConfig) *Predictor {
	return &Predictor{cfg: cfg}
}

// Available reports whether a trained artifact loaded successfully.
// Intended for health/status reporting.
func (p *Predictor) Available() bool {
	p.load()
	return p.model != nil
}

// Metadata returns the loaded artifact metadata, if any.
func (p *Predictor) Metadata() (Metadata, bool) {
	p.load()
	if p.model == nil {
		return Metadata{}, false
	}
	return p.model.meta, true
}

// Predict runs the trained model over the canonical feature array built
// from vec. Every failure mode is folded into the returned Prediction;
// the caller decides the fallback, nothing is raised.
func (p *Predictor) Predict(vec forensics.Vector) Prediction {
	p.load()

	if p.model == nil {
		if p.loadErr != nil {
			return failed(p.loadErr)
		}
		return unavailable()
	}

	prob, err := p.model.predict(vectorToInput(vec))
	if err != nil {
		return failed(err)
	}
	return ok(clamp01(prob))
}

// vectorToInput builds the fixed-order input array, encoding absent
// features with the missing sentinel.
func vectorToInput(vec forensics.Vector) []float32 {
	out := make([]float32, len(forensics.CanonicalKeys))
	for i, key := range forensics.CanonicalKeys {
		if value, present := vec.Get(key); present {
			out[i] = float32(value)
		} else {
			out[i] = missingSentinel
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// load initializes the ONNX session exactly once. A missing artifact dir
// or model file leaves both model and loadErr nil (unavailable); anything
// else that goes wrong is recorded as a load failure.
func (p *Predictor) load() {
	p.once.Do(func() {
		if strings.TrimSpace(p.cfg.Dir) == "" {
			return
		}

		modelPath := filepath.Join(p.cfg.Dir, p.cfg.ModelFile)
		if _, err := os.Stat(modelPath); os.IsNotExist(err) {
			log.Printf("override: no trained artifact at %s, using weighted ensemble", modelPath)
			return
		}

		m, err := loadModel(p.cfg.Dir, modelPath, filepath.Join(p.cfg.Dir, p.cfg.MetadataFile))
		if err != nil {
			p.loadErr = err
			log.Printf("override: artifact load failed, falling back to weighted ensemble: %v", err)
			return
		}

		p.model = m
		log.Printf("override: trained meta-classifier loaded from %s (auc=%.4f, %d features)",
			modelPath, m.meta.Metrics.AUC, len(m.meta.FeatureKeys))
	})
}

func loadModel(dir, modelPath, metaPath string) (*model, error) {
	meta, err := LoadMetadata(metaPath)
	if err != nil {
		return nil, err
	}

	libPath := resolveSharedLibraryPath(dir)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	nFeatures := len(forensics.CanonicalKeys)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(nFeatures)))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}

	// Converted gradient-boosted binary classifiers emit per-class
	// probabilities; single-output regressors emit one value.
	classes := 2
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"features"},
		[]string{"probabilities"},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &model{
		session: session,
		input:   input,
		output:  output,
		meta:    meta,
		classes: classes,
	}, nil
}

func (m *model) predict(features []float32) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.input.GetData(), features)

	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}

	raw := m.output.GetData()
	switch len(raw) {
	case 0:
		return 0, errors.New("onnx output is empty")
	case 1:
		return float64(raw[0]), nil
	default:
		// [P(real), P(fake)] — the positive class is index 1.
		return float64(raw[1]), nil
	}
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime shared
// library. The environment variable wins; otherwise common names and
// locations are probed.
func resolveSharedLibraryPath(artifactDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		artifactDir,
		filepath.Join(artifactDir, "lib"),
		"/usr/local/lib",
		"/usr/lib",
	}
	if runtime.GOOS == "darwin" {
		dirs = append(dirs, "/opt/homebrew/lib")
	}

	for _, d := range dirs {
		for _, n := range names {
			candidate := filepath.Join(d, n)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
