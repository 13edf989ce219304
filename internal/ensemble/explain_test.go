package ensemble

import (
	"strings"
	"testing"

	"github.com/verilens-ai/verilens/internal/forensics"
)

func heuristicSignal(id, description string, confidence float64) forensics.Signal {
	return forensics.Signal{
		ID:          id,
		Name:        id,
		Category:    forensics.CategoryVisual,
		Confidence:  confidence,
		Description: description,
		Severity:    forensics.SeveritySuspicious,
		Source:      forensics.SourceHeuristic,
	}
}

func TestExplainOpeningSentences(t *testing.T) {
	vec := forensics.Vector{}
	vec.Set(forensics.KeyHFER, 0.2)

	cases := []struct {
		name        string
		probability float64
		verdict     forensics.Verdict
		want        string
	}{
		{"inconclusive", 0.5, forensics.VerdictInconclusive, "ambiguous confidence score of 50%"},
		{"strong", 0.85, forensics.VerdictManipulated, "strong indicators"},
		{"weak", 0.45, forensics.VerdictSuspicious, "some signs of potential manipulation"},
		{"low", 0.1, forensics.VerdictAuthentic, "appears largely authentic"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Explain(vec, nil, tc.probability, forensics.MediaImage, tc.verdict)
			if !strings.Contains(got, tc.want) {
				t.Fatalf("expected explanation to contain %q, got: %s", tc.want, got)
			}
			if !strings.Contains(got, "image") {
				t.Fatalf("expected media type in explanation, got: %s", got)
			}
		})
	}
}

func TestExplainTopThreeSignalsByConfidence(t *testing.T) {
	signals := []forensics.Signal{
		heuristicSignal("a", "Alpha finding.", 0.4),
		heuristicSignal("b", "Bravo finding.", 0.9),
		heuristicSignal("c", "Charlie finding.", 0.7),
		heuristicSignal("d", "Delta finding.", 0.6),
	}

	got := Explain(forensics.Vector{}, signals, 0.8, forensics.MediaVideo, forensics.VerdictManipulated)

	for _, want := range []string{"Bravo finding.", "Charlie finding.", "Delta finding."} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected top-3 description %q in: %s", want, got)
		}
	}
	if strings.Contains(got, "Alpha finding.") {
		t.Fatalf("fourth-ranked signal leaked into explanation: %s", got)
	}
	if strings.Index(got, "Bravo") > strings.Index(got, "Charlie") {
		t.Fatalf("signals not ordered by confidence: %s", got)
	}
}

func TestExplainTiesKeepDiscoveryOrder(t *testing.T) {
	signals := []forensics.Signal{
		heuristicSignal("first", "First at par.", 0.5),
		heuristicSignal("second", "Second at par.", 0.5),
	}

	got := Explain(forensics.Vector{}, signals, 0.8, forensics.MediaImage, forensics.VerdictManipulated)
	if strings.Index(got, "First at par.") > strings.Index(got, "Second at par.") {
		t.Fatalf("tie broke discovery order: %s", got)
	}
}

func TestExplainProvenanceSentence(t *testing.T) {
	vec := forensics.Vector{}
	vec.Set(forensics.KeyHFER, 0.2)
	vec.Set(forensics.KeyPDI, 0.01)
	vec.Set(forensics.KeySVD, 0.1)

	heuristicOnly := Explain(vec, []forensics.Signal{
		heuristicSignal("a", "Alpha.", 0.4),
	}, 0.2, forensics.MediaImage, forensics.VerdictAuthentic)
	if !strings.Contains(heuristicOnly, "3 forensic feature dimensions") {
		t.Fatalf("expected active dimension count, got: %s", heuristicOnly)
	}

	pretrained := heuristicSignal("m", "Model finding.", 0.8)
	pretrained.Source = forensics.SourcePretrained
	withModel := Explain(vec, []forensics.Signal{pretrained}, 0.2, forensics.MediaImage, forensics.VerdictAuthentic)
	if !strings.Contains(withModel, "pretrained deep learning models") {
		t.Fatalf("expected pretrained provenance sentence, got: %s", withModel)
	}
	if strings.Contains(withModel, "feature dimensions") {
		t.Fatalf("pretrained provenance should replace the dimension count: %s", withModel)
	}
}

func TestExplainDeterministic(t *testing.T) {
	vec := forensics.Vector{}
	vec.Set(forensics.KeyNoiseScore, 0.4)
	signals := []forensics.Signal{
		heuristicSignal("a", "Alpha.", 0.6),
		heuristicSignal("b", "Bravo.", 0.6),
	}

	first := Explain(vec, signals, 0.65, forensics.MediaAudio, forensics.VerdictManipulated)
	for i := 0; i < 10; i++ {
		if got := Explain(vec, signals, 0.65, forensics.MediaAudio, forensics.VerdictManipulated); got != first {
			t.Fatalf("explanation not deterministic:\n%s\nvs\n%s", first, got)
		}
	}
}
