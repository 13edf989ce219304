package temporal

import (
	"math"
	"testing"
)

func TestAggregateFrameScoresEmpty(t *testing.T) {
	agg := AggregateFrameScores(nil)
	if agg.MeanProbability != nil || agg.Consistency != nil {
		t.Fatalf("no frames must yield no features, got %+v", agg)
	}
	if len(agg.Signals) != 0 {
		t.Fatalf("no frames must yield no signals")
	}
}

func TestAggregateFrameScoresSingleFrame(t *testing.T) {
	agg := AggregateFrameScores([]float64{0.7})
	if agg.MeanProbability == nil || *agg.MeanProbability != 0.7 {
		t.Fatalf("single frame mean wrong: %+v", agg.MeanProbability)
	}
	if agg.Consistency != nil {
		t.Fatalf("one frame cannot produce a consistency feature")
	}
}

func TestAggregateFrameScoresConsistentFrames(t *testing.T) {
	agg := AggregateFrameScores([]float64{0.5, 0.52, 0.48, 0.5})
	if agg.Consistency == nil {
		t.Fatalf("expected a consistency feature for four frames")
	}
	if len(agg.Signals) != 0 {
		t.Fatalf("consistent frames must not signal, std=%v", agg.Std)
	}
}

func TestAggregateFrameScoresInconsistentFrames(t *testing.T) {
	agg := AggregateFrameScores([]float64{0.1, 0.9, 0.1, 0.9})
	if agg.Std <= 0.15 {
		t.Fatalf("expected std above trigger, got %v", agg.Std)
	}
	if agg.Consistency == nil || *agg.Consistency != 1.0 {
		t.Fatalf("consistency should saturate at 1, got %+v", agg.Consistency)
	}
	if len(agg.Signals) != 1 || agg.Signals[0].ID != "vid-frame-inconsistency" {
		t.Fatalf("expected inconsistency signal, got %+v", agg.Signals)
	}
	if agg.Signals[0].Confidence != 0.85 {
		t.Fatalf("confidence should cap at 0.85, got %v", agg.Signals[0].Confidence)
	}
}

func TestIdentityDriftNeedsTwoEmbeddings(t *testing.T) {
	result := IdentityDrift([][]float64{{1, 0}}, true)
	if result.Index != nil || len(result.Signals) != 0 {
		t.Fatalf("one embedding must yield no drift result, got %+v", result)
	}
}

func TestIdentityDriftStableTrack(t *testing.T) {
	e := []float64{0.3, 0.5, 0.2, 0.8}
	result := IdentityDrift([][]float64{e, e, e, e}, true)
	if result.Index == nil {
		t.Fatalf("expected an instability index")
	}
	if *result.Index > 1e-9 {
		t.Fatalf("identical embeddings must have zero drift, got %v", *result.Index)
	}
	if len(result.Signals) != 0 {
		t.Fatalf("stable track must not signal, got %+v", result.Signals)
	}
}

func TestIdentityDriftUnstableTrackSignals(t *testing.T) {
	// Orthogonal swings produce cosine distance 1 per pair.
	a := []float64{1, 0}
	b := []float64{0, 1}
	result := IdentityDrift([][]float64{a, b, a, b, a}, true)
	if result.Index == nil || *result.Index <= driftThresholdEmbedding*3 {
		t.Fatalf("expected severe drift index, got %+v", result.Index)
	}
	var found bool
	for _, s := range result.Signals {
		if s.ID == "vid-tiis-high" {
			found = true
			if s.Severity != "high_risk" {
				t.Fatalf("drift 3x over threshold must be high_risk, got %v", s.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("expected vid-tiis-high signal, got %+v", result.Signals)
	}
}

func TestIdentityDriftSpikeDetection(t *testing.T) {
	// Many near-identical transitions plus one hard discontinuity.
	stable := []float64{1, 0.01}
	flipped := []float64{0.01, 1}
	track := make([][]float64, 0, 16)
	for i := 0; i < 15; i++ {
		track = append(track, stable)
	}
	track = append(track, flipped)

	result := IdentityDrift(track, true)
	var spike bool
	for _, s := range result.Signals {
		if s.ID == "vid-identity-spike" {
			spike = true
			if s.Severity != "harmful" {
				t.Fatalf("spike severity wrong: %v", s.Severity)
			}
			if s.Source != "pretrained" {
				t.Fatalf("encoder-backed spike must carry pretrained source, got %v", s.Source)
			}
		}
	}
	if !spike {
		t.Fatalf("expected a spike signal, got %+v", result.Signals)
	}

	fallback := IdentityDrift(track, false)
	for _, s := range fallback.Signals {
		if s.ID == "vid-identity-spike" && s.Source != "heuristic" {
			t.Fatalf("fallback spike must carry heuristic source, got %v", s.Source)
		}
	}
}

func TestIdentityDriftUniformNoiseHasNoSpikes(t *testing.T) {
	// Every transition is equally large: spiky on no transition in
	// particular, so the spike heuristic must stay quiet.
	a := []float64{1, 0}
	b := []float64{0, 1}
	result := IdentityDrift([][]float64{a, b, a, b}, true)
	for _, s := range result.Signals {
		if s.ID == "vid-identity-spike" {
			t.Fatalf("uniformly noisy track must not produce spike signals")
		}
	}
}

func TestIdentityDriftFallbackThreshold(t *testing.T) {
	// Drift between the embedding and fallback thresholds: signals only
	// when a learned encoder produced the vectors.
	a := []float64{1, 0.0}
	b := []float64{1, 0.3}
	embeddings := [][]float64{a, b, a, b}

	if got := IdentityDrift(embeddings, true); len(got.Signals) == 0 {
		t.Fatalf("embedding-model drift %v should signal", *got.Index)
	}
	got := IdentityDrift(embeddings, false)
	if got.Index == nil {
		t.Fatalf("expected an index for fallback embeddings")
	}
	if *got.Index > driftThresholdFallback {
		t.Fatalf("test drift %v should sit under the fallback threshold", *got.Index)
	}
	for _, s := range got.Signals {
		if s.ID == "vid-tiis-high" {
			t.Fatalf("fallback threshold must not trigger at drift %v", *got.Index)
		}
	}
}

func TestPopStd(t *testing.T) {
	got := popStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 5)
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("population std wrong: %v", got)
	}
}
