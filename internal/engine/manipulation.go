package engine

import "github.com/verilens-ai/verilens/internal/forensics"

// manipulationType names the most likely manipulation narrative from the
// collected signals, checked in priority order. Empty when no narrative
// fits.
func manipulationType(signals []forensics.Signal, vec forensics.Vector) string {
	ids := make(map[string]bool, len(signals))
	for _, s := range signals {
		ids[s.ID] = true
	}

	if ids["model-deepfake-anomaly"] {
		if p, ok := vec.Get(forensics.KeyDeepfakeProb); ok && p > 0.5 {
			return "AI-Generated (CNN Feature Anomaly)"
		}
	}
	if ids["freq-hfer-low"] {
		if hfer, ok := vec.Get(forensics.KeyHFER); ok && hfer < 0.1 {
			return "AI-Generated (GAN Signature)"
		}
	}
	if ids["vid-tiis-high"] {
		return "Deepfake Video (Identity Instability)"
	}
	if ids["vid-identity-spike"] {
		return "Deepfake Video (Face Swap Transition)"
	}
	if ids["audio-spoof-detected"] {
		return "Synthetic Audio (Spoof Model Detection)"
	}
	if ids["audio-pvss-smooth"] {
		return "Synthetic Audio (TTS)"
	}
	if ids["tex-pdi-high"] {
		return "Composited / Face-Swapped"
	}
	return ""
}
