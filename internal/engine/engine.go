// Package engine orchestrates a full analysis request: it drives the
// classical extractors over decoded media, merges externally supplied
// model outputs, and hands the merged feature vector to the fusion
// engine for scoring.
package engine

import (
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/ensemble"
	"github.com/verilens-ai/verilens/internal/extractors"
	"github.com/verilens-ai/verilens/internal/forensics"
	"github.com/verilens-ai/verilens/internal/temporal"
)

// AnalysisLevel describes how deep an analysis went. It is recorded for
// observability only and never gates which analyzers run.
type AnalysisLevel string

const (
	LevelLightweight AnalysisLevel = "level1_lightweight"
	LevelDeepSpatial AnalysisLevel = "level2_deep_spatial"
	LevelTemporal    AnalysisLevel = "level3_temporal_crossmodal"
)

// Media is a decoded media bundle. Decoding, frame sampling and face
// detection happen upstream; the analyzer consumes pixels and samples.
type Media struct {
	Type       forensics.MediaType
	Image      image.Image
	Frames     []image.Image
	Samples    []float64
	SampleRate int
	// Duration in seconds, used to timestamp video segments. Zero means
	// unknown and segments fall back to frame indices.
	Duration float64
}

// ModelOutputs carries the optional outputs of external pretrained
// collaborators. Nil pointers and empty slices mean "not computed", never
// zero.
type ModelOutputs struct {
	// Features computed by an upstream extractor tier, merged before the
	// local extractors run. Locally computed values win on conflict.
	Features forensics.Vector
	// DeepfakeProb is the single-image classifier probability.
	DeepfakeProb *float64
	// FrameProbabilities are per-frame classifier probabilities for video.
	FrameProbabilities []float64
	// FaceEmbeddings is the consecutive face-track embedding sequence.
	FaceEmbeddings [][]float64
	// EmbeddingModel reports whether FaceEmbeddings came from a learned
	// face encoder rather than a raw-pixel fallback.
	EmbeddingModel bool
	AudioSpoofProb *float64
	// Signals emitted by the collaborators themselves.
	Signals []forensics.Signal
}

// SegmentAuthenticity is a per-frame authenticity estimate for video.
type SegmentAuthenticity struct {
	Index             int     `json:"segment_index"`
	StartTime         float64 `json:"start_time"`
	EndTime           float64 `json:"end_time"`
	AuthenticityScore float64 `json:"authenticity_score"`
	Flagged           bool    `json:"flagged"`
}

// Report is the assembled output of one analysis request.
type Report struct {
	AnalysisID       string                `json:"analysis_id"`
	MediaType        forensics.MediaType   `json:"media_type"`
	Result           forensics.Result      `json:"result"`
	Features         forensics.Vector      `json:"features"`
	Signals          []forensics.Signal    `json:"signals"`
	ManipulationType string                `json:"manipulation_type,omitempty"`
	AnalysisLevel    AnalysisLevel         `json:"analysis_level"`
	Segments         []SegmentAuthenticity `json:"segments,omitempty"`
	ProcessingMS     int64                 `json:"processing_time_ms"`
}

// Analyzer runs the full extraction and fusion pipeline.
type Analyzer struct {
	fusion *ensemble.Engine
}

// New builds an Analyzer around the given fusion engine.
func New(cfg *config.Config, override ensemble.OverridePredictor) *Analyzer {
	return &Analyzer{fusion: ensemble.New(cfg, override)}
}

// OverrideAvailable reports whether the trained override model is loaded.
func (a *Analyzer) OverrideAvailable() bool {
	return a.fusion.OverrideAvailable()
}

// Analyze runs every applicable extractor over the media bundle, merges
// the external model outputs and metadata evidence, scores the result and
// assembles the report. Extractor degradation surfaces as absent features,
// never as an error.
func (a *Analyzer) Analyze(media Media, outputs ModelOutputs, meta *MetadataEvidence) Report {
	start := time.Now()

	vec := forensics.Vector{}
	for key, value := range outputs.Features {
		vec.Set(key, value)
	}
	signals := append([]forensics.Signal(nil), outputs.Signals...)
	level := LevelLightweight
	var segments []SegmentAuthenticity

	switch media.Type {
	case forensics.MediaImage:
		if media.Image != nil {
			level = LevelDeepSpatial
			signals = a.analyzeStill(media.Image, vec, signals)
		}
		if outputs.DeepfakeProb != nil {
			vec.Set(forensics.KeyDeepfakeProb, *outputs.DeepfakeProb)
		}
		if meta != nil {
			score, metaSignals := ScoreMetadata(*meta)
			vec.Set(forensics.KeyMetadataScore, score)
			signals = append(signals, metaSignals...)
		}

	case forensics.MediaVideo:
		agg := temporal.AggregateFrameScores(outputs.FrameProbabilities)
		if agg.MeanProbability != nil {
			vec.Set(forensics.KeyDeepfakeProb, *agg.MeanProbability)
		}
		if agg.Consistency != nil {
			vec.Set(forensics.KeyFrameConsistency, *agg.Consistency)
		}
		signals = append(signals, agg.Signals...)

		drift := temporal.IdentityDrift(outputs.FaceEmbeddings, outputs.EmbeddingModel)
		if drift.Index != nil {
			vec.Set(forensics.KeyIdentityDrift, *drift.Index)
			signals = append(signals, drift.Signals...)
			level = LevelTemporal
		}

		if len(media.Frames) > 0 {
			if level == LevelLightweight {
				level = LevelDeepSpatial
			}
			signals = a.analyzeStill(media.Frames[0], vec, signals)
			segments = segmentAuthenticity(media.Frames, media.Duration)
		}

		// The fav feature is the [0,1] composite motion score; the raw
		// acceleration variance only appears in the signal description.
		flow := extractors.AnalyzeFlow(media.Frames)
		if flow.Score != nil {
			vec.Set(forensics.KeyFAV, *flow.Score)
			signals = append(signals, flow.Signals...)
		}

	case forensics.MediaAudio:
		if len(media.Samples) > 0 {
			level = LevelDeepSpatial
			audio := extractors.AnalyzeAudio(media.Samples, media.SampleRate)
			vec.Set(forensics.KeyETK, audio.ETK)
			vec.Set(forensics.KeyPVSS, audio.PVSS)
			vec.Set(forensics.KeyFRD, audio.FRD)
			signals = append(signals, audio.Signals...)
		}
		if outputs.AudioSpoofProb != nil {
			vec.Set(forensics.KeyAudioSpoofProb, *outputs.AudioSpoofProb)
		}
	}

	result := a.fusion.Score(vec, signals, media.Type)

	return Report{
		AnalysisID:       uuid.NewString(),
		MediaType:        media.Type,
		Result:           result,
		Features:         vec,
		Signals:          signals,
		ManipulationType: manipulationType(signals, vec),
		AnalysisLevel:    level,
		Segments:         segments,
		ProcessingMS:     time.Since(start).Milliseconds(),
	}
}

// analyzeStill runs the single-image extractors and records their
// features. Used for images and for the representative first video frame.
func (a *Analyzer) analyzeStill(img image.Image, vec forensics.Vector, signals []forensics.Signal) []forensics.Signal {
	freq := extractors.AnalyzeFrequency(img)
	vec.Set(forensics.KeyHFER, freq.HFER)
	vec.Set(forensics.KeySVD, freq.SVD)
	vec.Set(forensics.KeySpectralPeak, freq.SpectralPeakScore)
	signals = append(signals, freq.Signals...)

	tex := extractors.AnalyzeTexture(img)
	vec.Set(forensics.KeyPDI, tex.PDI)
	signals = append(signals, tex.Signals...)

	noise := extractors.AnalyzeNoise(img)
	if noise.Score != nil {
		vec.Set(forensics.KeyNoiseScore, *noise.Score)
		signals = append(signals, noise.Signals...)
	}
	return signals
}

// segmentAuthenticity scores each sampled frame by its high-frequency
// energy. Frames whose spectrum looks synthetically smoothed score low.
func segmentAuthenticity(frames []image.Image, duration float64) []SegmentAuthenticity {
	if duration <= 0 {
		duration = float64(len(frames))
	}
	segments := make([]SegmentAuthenticity, 0, len(frames))
	for i, frame := range frames {
		freq := extractors.AnalyzeFrequency(frame)
		deficit := (0.15 - freq.HFER) / 0.15
		if deficit < 0 {
			deficit = 0
		} else if deficit > 1 {
			deficit = 1
		}
		authenticity := 1.0 - deficit

		span := duration / float64(len(frames))
		segments = append(segments, SegmentAuthenticity{
			Index:             i,
			StartTime:         round2(float64(i) * span),
			EndTime:           round2(float64(i+1) * span),
			AuthenticityScore: round4(authenticity),
			Flagged:           authenticity < 0.4,
		})
	}
	return segments
}

func round2(v float64) float64 { return float64(int64(v*100+0.5)) / 100 }
func round4(v float64) float64 { return float64(int64(v*10000+0.5)) / 10000 }
