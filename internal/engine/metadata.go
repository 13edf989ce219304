package engine

import (
	"fmt"
	"strings"

	"github.com/verilens-ai/verilens/internal/forensics"
)

// MetadataEvidence is the externally parsed container metadata of an
// image. EXIF extraction happens upstream; the engine only scores what
// the parser found.
type MetadataEvidence struct {
	EXIFPresent   bool   `json:"exif_present"`
	Software      string `json:"software,omitempty"`
	Recompression bool   `json:"recompression"`
	CreationDate  string `json:"creation_date,omitempty"`
}

// Editing-tool signatures looked for in the EXIF software tag.
var editingSignatures = []string{
	"photoshop", "gimp", "lightroom", "snapseed",
	"faceapp", "remini", "deepfake", "reface",
	"fotoforensics", "stable diffusion", "dall-e",
	"midjourney", "adobe",
}

// Edited reports whether the recorded software tag matches a known
// editing or generation tool.
func (m MetadataEvidence) Edited() bool {
	sw := strings.ToLower(m.Software)
	for _, sig := range editingSignatures {
		if strings.Contains(sw, sig) {
			return true
		}
	}
	return false
}

// ScoreMetadata turns metadata evidence into the metadata anomaly feature
// and its signals. Each finding contributes a fixed additive weight:
// stripped EXIF 0.3, editing software 0.4, recompression 0.2, missing
// creation date 0.1.
func ScoreMetadata(m MetadataEvidence) (float64, []forensics.Signal) {
	score := 0.0
	var signals []forensics.Signal

	if !m.EXIFPresent {
		score += 0.3
		signals = append(signals, forensics.Signal{
			ID:          "meta-exif-stripped",
			Name:        "EXIF Metadata Stripped",
			Category:    forensics.CategoryMetadata,
			Confidence:  0.65,
			Description: "Image metadata has been intentionally removed, common in manipulated or AI-generated media.",
			Severity:    forensics.SeveritySuspicious,
			Source:      forensics.SourceHeuristic,
		})
	}
	if m.Edited() {
		score += 0.4
		desc := "Image shows signs of editing."
		if m.Software != "" {
			desc = fmt.Sprintf("Image shows signs of editing via %s.", m.Software)
		}
		signals = append(signals, forensics.Signal{
			ID:          "meta-edited",
			Name:        "Editing Software Detected",
			Category:    forensics.CategoryMetadata,
			Confidence:  0.7,
			Description: desc,
			Severity:    forensics.SeveritySuspicious,
			Source:      forensics.SourceHeuristic,
		})
	}
	if m.Recompression {
		score += 0.2
		signals = append(signals, forensics.Signal{
			ID:          "meta-recompression",
			Name:        "Re-Compression Detected",
			Category:    forensics.CategoryMetadata,
			Confidence:  0.55,
			Description: "Multiple compression layers detected, suggesting image has been re-saved or manipulated.",
			Severity:    forensics.SeverityLow,
			Source:      forensics.SourceHeuristic,
		})
	}
	if m.CreationDate == "" {
		score += 0.1
	}
	return score, signals
}
