package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/verilens-ai/verilens/internal/config"
	"github.com/verilens-ai/verilens/internal/ensemble"
	"github.com/verilens-ai/verilens/internal/forensics"
	"github.com/verilens-ai/verilens/internal/override"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (optional, defaults used when empty)")
	n := flag.Int("n", 10000, "number of iterations")
	seed := flag.Int64("seed", 1, "feature vector RNG seed")
	flag.Parse()

	if *n <= 0 {
		*n = 1
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var ov ensemble.OverridePredictor
	method := "weighted_ensemble"
	if cfg.Override.Dir != "" {
		pred := override.NewPredictor(cfg.Override)
		if pred.Available() {
			ov = pred
			method = "trained_override"
		}
	}
	engine := ensemble.New(cfg, ov)

	// One full vector per iteration, values jittered around the baseline
	// means so every feature contributes to the ensemble path.
	rng := rand.New(rand.NewSource(*seed))
	vectors := make([]forensics.Vector, *n)
	for i := range vectors {
		vec := forensics.Vector{}
		for key, b := range cfg.Baselines {
			vec.Set(forensics.FeatureKey(key), b.Mean+rng.NormFloat64()*b.Std)
		}
		vectors[i] = vec
	}

	// Warmup
	for i := 0; i < 5; i++ {
		engine.Score(vectors[0], nil, forensics.MediaImage)
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		engine.Score(vectors[i], nil, forensics.MediaImage)
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds())
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds())

	fmt.Printf("bench: n=%d avg_us=%.2f p50_us=%.2f p95_us=%.2f method=%s features=%d\n",
		len(durations),
		avg,
		p50,
		p95,
		method,
		len(cfg.Baselines),
	)
}
