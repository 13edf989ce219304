package ensemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verilens-ai/verilens/internal/forensics"
)

// Explain builds the one-paragraph human-readable rationale for a
// verdict: an opening sentence parameterized by probability and media
// type, the descriptions of the top three signals by confidence, and a
// provenance sentence. Output is deterministic for identical inputs;
// confidence ties keep discovery order.
func Explain(
	vec forensics.Vector,
	signals []forensics.Signal,
	probability float64,
	mediaType forensics.MediaType,
	verdict forensics.Verdict,
) string {
	var parts []string

	switch {
	case verdict == forensics.VerdictInconclusive:
		parts = append(parts, fmt.Sprintf(
			"This %s produced an ambiguous confidence score of %.0f%%. "+
				"The analysis is inconclusive; additional evidence or manual review is recommended.",
			mediaType, probability*100))
	case probability > 0.7:
		parts = append(parts, fmt.Sprintf(
			"This %s shows strong indicators of being AI-generated or manipulated.", mediaType))
	case probability > 0.4:
		parts = append(parts, fmt.Sprintf(
			"This %s shows some signs of potential manipulation.", mediaType))
	default:
		parts = append(parts, fmt.Sprintf(
			"This %s appears largely authentic based on multi-layer analysis.", mediaType))
	}

	if top := topSignals(signals, 3); len(top) > 0 {
		descriptions := make([]string, len(top))
		for i, s := range top {
			descriptions[i] = s.Description
		}
		parts = append(parts, strings.Join(descriptions, " "))
	}

	if anyPretrained(signals) {
		parts = append(parts, "Analysis included pretrained deep learning models alongside forensic features.")
	} else if active := vec.Present(); active > 0 {
		parts = append(parts, fmt.Sprintf("Analysis used %d forensic feature dimensions.", active))
	}

	return strings.Join(parts, " ")
}

// overrideFootnote is appended when the trained override model produced
// the probability.
const overrideFootnote = "Scoring used the trained gradient-boosted meta-classifier."

// topSignals returns the n highest-confidence signals. The sort is
// stable so equal confidences keep their original discovery order.
func topSignals(signals []forensics.Signal, n int) []forensics.Signal {
	sorted := make([]forensics.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func anyPretrained(signals []forensics.Signal) bool {
	for _, s := range signals {
		if s.Source == forensics.SourcePretrained {
			return true
		}
	}
	return false
}
