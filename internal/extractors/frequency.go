package extractors

import (
	"fmt"
	"image"
	"math"

	"github.com/verilens-ai/verilens/internal/forensics"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// FrequencyResult carries the frequency-domain metrics of one image.
type FrequencyResult struct {
	HFER              float64
	SVD               float64
	SpectralPeakScore float64
	PeakCount         int
	PeakRatio         float64
	Signals           []forensics.Signal
}

// naturalSpectralVariance is the empirical log-magnitude variance of
// natural photographic images; SVD measures relative deviation from it.
const naturalSpectralVariance = 3.2

// AnalyzeFrequency computes the frequency-domain anomaly metrics:
// HFER (generative models suppress high-frequency noise), SVD (synthetic
// images have abnormal spectral spread) and the periodic spectral
// fingerprint score (upsampling stages leave periodic peaks in the
// radial profile).
func AnalyzeFrequency(img image.Image) FrequencyResult {
	gray := downscale(grayscale(img), 512)
	h, w := planeDims(gray)
	if h == 0 || w == 0 {
		return FrequencyResult{HFER: 0.5}
	}

	magnitude := logMagnitudeSpectrum(gray)

	cy, cx := h/2, w/2
	maxRadius := math.Sqrt(float64(cy*cy + cx*cx))
	hfThreshold := maxRadius * 0.3

	totalEnergy := 0.0
	highFreqEnergy := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			energy := magnitude[y][x] * magnitude[y][x]
			totalEnergy += energy
			dy, dx := float64(y-cy), float64(x-cx)
			if math.Sqrt(dy*dy+dx*dx) > hfThreshold {
				highFreqEnergy += energy
			}
		}
	}

	hfer := 0.5
	if totalEnergy > 0 {
		hfer = highFreqEnergy / totalEnergy
	}

	variance := planeVariance(magnitude)
	svd := math.Abs(variance-naturalSpectralVariance) / naturalSpectralVariance

	peakScore, nPeaks, peakRatio := spectralPeakFingerprint(magnitude, cy, cx, maxRadius)

	result := FrequencyResult{
		HFER:              hfer,
		SVD:               svd,
		SpectralPeakScore: peakScore,
		PeakCount:         nPeaks,
		PeakRatio:         peakRatio,
	}

	if hfer < 0.15 {
		severity := forensics.SeverityHarmful
		if hfer < 0.08 {
			severity = forensics.SeverityHighRisk
		}
		result.Signals = append(result.Signals, forensics.Signal{
			ID:         "freq-hfer-low",
			Name:       "Suppressed High-Frequency Energy",
			Category:   forensics.CategoryVisual,
			Confidence: math.Min(0.95, 0.6+(0.15-hfer)*3),
			Description: fmt.Sprintf(
				"High-frequency energy ratio is %.1f%%, well below natural baseline. "+
					"GAN-generated images typically show suppressed high-frequency noise.", hfer*100),
			Severity: severity,
			Source:   forensics.SourceHeuristic,
		}.WithMetric(hfer))
	}

	if svd > 0.5 {
		severity := forensics.SeveritySuspicious
		if svd > 1.0 {
			severity = forensics.SeverityHighRisk
		}
		result.Signals = append(result.Signals, forensics.Signal{
			ID:         "freq-svd-high",
			Name:       "Spectral Variance Anomaly",
			Category:   forensics.CategoryVisual,
			Confidence: math.Min(0.9, 0.5+svd*0.3),
			Description: fmt.Sprintf(
				"Spectral variance deviates %.0f%% from natural image baseline. "+
					"Synthetic images show abnormal spectral distribution.", svd*100),
			Severity: severity,
			Source:   forensics.SourceHeuristic,
		}.WithMetric(svd))
	}

	if peakScore > 0.2 {
		severity := forensics.SeverityHarmful
		if peakScore > 0.6 {
			severity = forensics.SeverityHighRisk
		}
		result.Signals = append(result.Signals, forensics.Signal{
			ID:         "freq-gan-spectral-fingerprint",
			Name:       "GAN Spectral Fingerprint",
			Category:   forensics.CategoryVisual,
			Confidence: math.Min(0.93, peakScore+0.1),
			Description: fmt.Sprintf(
				"Detected %d periodic peaks in FFT radial profile (peak_ratio=%.3f). "+
					"GAN architectures leave characteristic periodic artifacts in the frequency domain.",
				nPeaks, peakRatio),
			Severity: severity,
			Source:   forensics.SourceHeuristic,
		}.WithMetric(peakScore))
	}

	return result
}

// logMagnitudeSpectrum computes log(1+|F|) of the centered 2D FFT.
func logMagnitudeSpectrum(gray [][]float64) [][]float64 {
	h, w := planeDims(gray)

	// Row pass then column pass; a 2D DFT is separable.
	rowFFT := fourier.NewCmplxFFT(w)
	spectrum := make([][]complex128, h)
	rowBuf := make([]complex128, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rowBuf[x] = complex(gray[y][x], 0)
		}
		spectrum[y] = rowFFT.Coefficients(nil, rowBuf)
	}

	colFFT := fourier.NewCmplxFFT(h)
	colBuf := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			colBuf[y] = spectrum[y][x]
		}
		col := colFFT.Coefficients(nil, colBuf)
		for y := 0; y < h; y++ {
			spectrum[y][x] = col[y]
		}
	}

	// Shift DC to the center and take log magnitude.
	magnitude := make([][]float64, h)
	for y := range magnitude {
		magnitude[y] = make([]float64, w)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sy := (y + h/2) % h
			sx := (x + w/2) % w
			magnitude[sy][sx] = math.Log1p(cmplxAbs(spectrum[y][x]))
		}
	}
	return magnitude
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func planeVariance(plane [][]float64) float64 {
	h, w := planeDims(plane)
	n := h * w
	if n == 0 {
		return 0
	}
	flat := make([]float64, 0, n)
	for _, row := range plane {
		flat = append(flat, row...)
	}
	mean := stat.Mean(flat, nil)
	variance := 0.0
	for _, v := range flat {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n) // population variance, matching the baseline
}

// spectralPeakFingerprint detects periodic peaks in the radial-average
// profile of the magnitude spectrum. The profile is smoothed with a
// 5-bin moving average; bins whose residual exceeds mean+2σ count as
// peaks. The score combines peak count with how concentrated the
// residual energy is in those peaks.
func spectralPeakFingerprint(magnitude [][]float64, cy, cx int, maxRadius float64) (score float64, nPeaks int, peakRatio float64) {
	h, w := planeDims(magnitude)

	bins := int(maxRadius)
	if bins > 200 {
		bins = 200
	}
	if bins <= 10 {
		return 0, 0, 0
	}

	profile := make([]float64, bins)
	counts := make([]float64, bins)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dy, dx := float64(y-cy), float64(x-cx)
			r := int(math.Sqrt(dy*dy + dx*dx))
			if r < bins {
				profile[r] += magnitude[y][x]
				counts[r]++
			}
		}
	}
	for i := range profile {
		if counts[i] > 0 {
			profile[i] /= counts[i]
		}
	}

	// 5-bin moving average ("same" padding).
	const window = 5
	smoothed := make([]float64, bins)
	for i := range profile {
		sum, n := 0.0, 0.0
		for j := i - window/2; j <= i+window/2; j++ {
			if j >= 0 && j < bins {
				sum += profile[j]
				n++
			}
		}
		smoothed[i] = sum / n
	}

	residual := make([]float64, bins)
	for i := range profile {
		residual[i] = math.Abs(profile[i] - smoothed[i])
	}

	residualMean := stat.Mean(residual, nil)
	residualStd := math.Sqrt(populationVariance(residual))
	if residualStd <= 1e-6 {
		return 0, 0, 0
	}

	threshold := residualMean + 2.0*residualStd
	peakEnergy := 0.0
	totalEnergy := 0.0
	for _, r := range residual {
		totalEnergy += r
		if r > threshold {
			nPeaks++
			peakEnergy += r
		}
	}
	peakRatio = peakEnergy / math.Max(totalEnergy, 1e-10)

	switch {
	case nPeaks >= 5 && peakRatio > 0.3:
		score = math.Min(1.0, peakRatio*1.2)
	case nPeaks >= 3 && peakRatio > 0.2:
		score = math.Min(0.7, peakRatio*0.8)
	case nPeaks >= 2 && peakRatio > 0.15:
		score = math.Min(0.4, peakRatio*0.5)
	}
	return score, nPeaks, peakRatio
}
