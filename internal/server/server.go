// Package server exposes the analysis engine over HTTP. Media decoding
// and model inference tiers sit upstream; this surface accepts their
// feature-level outputs and returns the fused scoring result.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/engine"
	"github.com/verilens-ai/verilens/internal/telemetry"
)

// Server wraps the HTTP components for VeriLens.
type Server struct {
	mux      *http.ServeMux
	cfg      *config.Config
	analyzer *engine.Analyzer
	tel      *telemetry.Provider
	version  string
}

// New creates a server with all routes registered.
func New(cfg *config.Config, analyzer *engine.Analyzer, tel *telemetry.Provider, version string) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		analyzer: analyzer,
		tel:      tel,
		version:  version,
	}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	return s
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server. Blocks.
func (s *Server) Start(addr string) error {
	log.Printf("VeriLens analysis service running on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

type healthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	OverrideAvailable bool   `json:"override_available"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{
		Status:            "ok",
		Version:           s.version,
		OverrideAvailable: s.analyzer.OverrideAvailable(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to write health response: %v", err)
	}
}
