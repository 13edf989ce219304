package main

import (
	"context"
	"flag"
	"log"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/engine"
	"github.com/verilens-ai/verilens/internal/override"
	"github.com/verilens-ai/verilens/internal/server"
	"github.com/verilens-ai/verilens/internal/telemetry"
)

const version = "0.4.0"

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "verilens.yaml", "Path to VeriLens config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  "verilens",
		Version:  version,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer tel.Shutdown(ctx)

	analyzer := engine.New(cfg, override.NewPredictor(cfg.Override))
	if analyzer.OverrideAvailable() {
		log.Printf("trained override model loaded from %s", cfg.Override.Dir)
	} else {
		log.Printf("trained override model unavailable, scoring with weighted ensemble")
	}

	srv := server.New(cfg, analyzer, tel, version)

	log.Printf("Starting VeriLens on %s...", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
