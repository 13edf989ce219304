package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/verilens-ai/verilens/internal/engine"
	"github.com/verilens-ai/verilens/internal/forensics"
)

// Request body limit. Feature payloads are small; embedding tracks for
// long videos dominate and still fit comfortably.
const maxAnalyzeBody = 8 << 20

type analyzeRequest struct {
	MediaType string             `json:"media_type"`
	Features  map[string]float64 `json:"features,omitempty"`
	Signals   []forensics.Signal `json:"signals,omitempty"`

	// Optional pretrained collaborator outputs.
	DeepfakeProb       *float64                 `json:"deepfake_prob,omitempty"`
	FrameProbabilities []float64                `json:"frame_probabilities,omitempty"`
	FaceEmbeddings     [][]float64              `json:"face_embeddings,omitempty"`
	EmbeddingModel     bool                     `json:"embedding_model,omitempty"`
	AudioSpoofProb     *float64                 `json:"audio_spoof_prob,omitempty"`
	Metadata           *engine.MetadataEvidence `json:"metadata,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Message: message, Type: typ}}); err != nil {
		log.Printf("failed to write error response: %v", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "invalid_request")
		return
	}

	mediaType, err := parseMediaType(req.MediaType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_request")
		return
	}

	// Signals arrive from outside the process, so the enum fields are
	// validated here rather than trusted.
	for i, sig := range req.Signals {
		if err := sig.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("signal %d: %v", i, err), "invalid_request")
			return
		}
	}

	features := forensics.Vector{}
	for key, value := range req.Features {
		features.Set(forensics.FeatureKey(key), value)
	}

	outputs := engine.ModelOutputs{
		Features:           features,
		DeepfakeProb:       req.DeepfakeProb,
		FrameProbabilities: req.FrameProbabilities,
		FaceEmbeddings:     req.FaceEmbeddings,
		EmbeddingModel:     req.EmbeddingModel,
		AudioSpoofProb:     req.AudioSpoofProb,
		Signals:            req.Signals,
	}

	report := s.analyzer.Analyze(engine.Media{Type: mediaType}, outputs, req.Metadata)

	s.tel.RecordAnalysis(
		string(report.MediaType),
		string(report.Result.Verdict),
		string(report.Result.Method),
		string(report.AnalysisLevel),
		float64(time.Since(start).Milliseconds()),
		float64(report.ProcessingMS),
		len(report.Signals),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.Printf("failed to write analyze response: %v", err)
	}
}

func parseMediaType(v string) (forensics.MediaType, error) {
	switch forensics.MediaType(v) {
	case forensics.MediaImage, forensics.MediaVideo, forensics.MediaAudio:
		return forensics.MediaType(v), nil
	case "":
		return "", fmt.Errorf("missing media_type")
	default:
		return "", fmt.Errorf("unknown media_type %q", v)
	}
}
