package extractors

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func noiseImage(t *testing.T, size int, seed int64) *image.RGBA {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func flatImage(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFrequencyFlatImageSuppressedHighFrequency(t *testing.T) {
	result := AnalyzeFrequency(flatImage(128, color.RGBA{R: 128, G: 128, B: 128, A: 255}))

	if result.HFER >= 0.15 {
		t.Fatalf("flat image should have near-zero high-frequency energy, got HFER=%v", result.HFER)
	}
	found := false
	for _, s := range result.Signals {
		if s.ID == "freq-hfer-low" {
			found = true
			if s.MetricValue == nil {
				t.Fatalf("expected metric value on freq-hfer-low")
			}
		}
	}
	if !found {
		t.Fatalf("expected freq-hfer-low signal for flat image, got %+v", result.Signals)
	}
}

func TestFrequencyNoiseImageLooksNatural(t *testing.T) {
	result := AnalyzeFrequency(noiseImage(t, 128, 1))

	if result.HFER < 0.15 {
		t.Fatalf("white noise should carry high-frequency energy, got HFER=%v", result.HFER)
	}
	for _, s := range result.Signals {
		if s.ID == "freq-hfer-low" {
			t.Fatalf("noise image must not trigger suppressed high-frequency signal")
		}
	}
}

func TestFrequencyPeriodicPatternFingerprint(t *testing.T) {
	// Superimposed horizontal gratings put sharp peaks at five radial
	// frequencies, the periodic fingerprint upsampling artifacts leave.
	size := 128
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 128.0
			for _, f := range []float64{10, 20, 30, 40, 50} {
				v += 20 * math.Cos(2*math.Pi*f*float64(x)/float64(size))
			}
			g := uint8(math.Max(0, math.Min(255, v)))
			img.Set(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}

	result := AnalyzeFrequency(img)
	if result.SpectralPeakScore <= 0.2 {
		t.Fatalf("periodic gratings should produce a strong peak score, got %v", result.SpectralPeakScore)
	}
	found := false
	for _, s := range result.Signals {
		if s.ID == "freq-gan-spectral-fingerprint" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected spectral fingerprint signal, got %+v", result.Signals)
	}
}

func TestTextureUniformNoiseHasLowDrift(t *testing.T) {
	result := AnalyzeTexture(noiseImage(t, 160, 2))

	if result.PDI > 0.02 {
		t.Fatalf("statistically uniform image should have low PDI, got %v", result.PDI)
	}
	if len(result.Signals) != 0 {
		t.Fatalf("expected no texture signals, got %+v", result.Signals)
	}
}

func TestTextureCompositeImageTriggersDrift(t *testing.T) {
	// Left half solid, right half noise: adjacent patches across the
	// seam have sharply different histograms.
	size := 160
	img := noiseImage(t, size, 3)
	for y := 0; y < size; y++ {
		for x := 0; x < size/2; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}

	result := AnalyzeTexture(img)
	if result.PDI <= 0.02 {
		t.Fatalf("composite image should have high PDI, got %v", result.PDI)
	}
	if len(result.Signals) == 0 || result.Signals[0].ID != "tex-pdi-high" {
		t.Fatalf("expected tex-pdi-high signal, got %+v", result.Signals)
	}
}

func TestTextureTinyImageDegradesToNeutral(t *testing.T) {
	result := AnalyzeTexture(flatImage(16, color.RGBA{A: 255}))
	if result.PDI != 0 || len(result.Signals) != 0 {
		t.Fatalf("tiny image must degrade to neutral metric, got %+v", result)
	}
}

func TestNoiseTinyImageDegradesToNeutral(t *testing.T) {
	result := AnalyzeNoise(flatImage(8, color.RGBA{A: 255}))
	if result.Score != nil {
		t.Fatalf("tiny image must yield no noise score, got %v", *result.Score)
	}
}

func TestNoiseUniformNoiseScoresAsSynthetic(t *testing.T) {
	result := AnalyzeNoise(noiseImage(t, 256, 4))

	if result.Score == nil {
		t.Fatalf("expected a noise score for analyzable image")
	}
	if *result.Score < 0 || *result.Score > 1 {
		t.Fatalf("noise score out of range: %v", *result.Score)
	}
	// Pure uniform noise has no spatial sensor correlation and uniform
	// block strength, both synthetic tells.
	if result.Stats.SpatialCorr > 0.2 {
		t.Fatalf("expected low spatial correlation for white noise, got %v", result.Stats.SpatialCorr)
	}
	if *result.Score <= 0.25 {
		t.Fatalf("expected suspicious score for uniform noise, got %v", *result.Score)
	}
	if len(result.Signals) == 0 || result.Signals[0].ID != "noise-residual-anomaly" {
		t.Fatalf("expected noise-residual-anomaly signal, got %+v", result.Signals)
	}
}

func TestFlowRequiresThreeFrames(t *testing.T) {
	frames := []image.Image{
		noiseImage(t, 64, 5),
		noiseImage(t, 64, 6),
	}
	result := AnalyzeFlow(frames)
	if result.Score != nil {
		t.Fatalf("fewer than three frames must yield no flow score")
	}
	if len(result.Signals) != 0 {
		t.Fatalf("degraded flow analysis must emit no signals")
	}
}

func TestFlowStaticSequenceIsOverSmooth(t *testing.T) {
	frame := noiseImage(t, 96, 7)
	frames := []image.Image{frame, frame, frame, frame}

	result := AnalyzeFlow(frames)
	if result.Score == nil {
		t.Fatalf("expected a flow score for four frames")
	}
	if result.FAV != 0 {
		t.Fatalf("identical frames must have zero acceleration variance, got %v", result.FAV)
	}
	if *result.Score <= 0.2 {
		t.Fatalf("static sequence should score as unnatural motion, got %v", *result.Score)
	}
	if len(result.Signals) == 0 || result.Signals[0].ID != "vid-flow-anomaly" {
		t.Fatalf("expected vid-flow-anomaly signal, got %+v", result.Signals)
	}
}

func sineWave(freq float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return samples
}

func TestAudioEmptyWaveformDegrades(t *testing.T) {
	result := AnalyzeAudio(nil, 22050)
	if result.ETK != 0 || result.PVSS != 0 || result.FRD != 0 {
		t.Fatalf("empty waveform must degrade to neutral metrics, got %+v", result)
	}
	if len(result.Signals) != 0 {
		t.Fatalf("empty waveform must emit no signals")
	}
}

func TestAudioPureToneOverSmoothPitch(t *testing.T) {
	const sampleRate = 22050
	result := AnalyzeAudio(sineWave(220, sampleRate, sampleRate*2), sampleRate)

	// A constant tone has an essentially flat pitch contour.
	if result.PVSS >= 5 {
		t.Fatalf("pure tone should have near-zero pitch smoothness variance, got %v", result.PVSS)
	}
	foundPVSS := false
	foundFRD := false
	for _, s := range result.Signals {
		switch s.ID {
		case "audio-pvss-smooth":
			foundPVSS = true
		case "audio-frd-anomaly":
			foundFRD = true
		}
	}
	if !foundPVSS {
		t.Fatalf("expected over-smooth pitch signal for pure tone, got %+v", result.Signals)
	}
	// A pure tone is maximally tonal: flatness near zero, far from the
	// natural-speech baseline.
	if !foundFRD {
		t.Fatalf("expected flatness anomaly for pure tone, got %+v", result.Signals)
	}
}

func TestAudioWhiteNoiseUnvoiced(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = rng.Float64()*2 - 1
	}

	result := AnalyzeAudio(samples, 22050)
	// Noise has no periodicity: no voiced frames, so the pitch metric
	// stays neutral and never signals.
	if result.PVSS != 0 {
		t.Fatalf("expected neutral PVSS for unvoiced noise, got %v", result.PVSS)
	}
	for _, s := range result.Signals {
		if s.ID == "audio-pvss-smooth" {
			t.Fatalf("noise must not trigger the pitch smoothness signal")
		}
	}
}
