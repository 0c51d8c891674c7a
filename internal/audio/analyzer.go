package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/flowfield/mpm/internal/core"
)

const (
	fftSize = 2048

	bassMaxHz   = 250.0
	midMaxHz    = 2000.0
	trebleMaxHz = 16000.0

	// onsetHistorySeconds bounds the dynamic-threshold window (spec §4.F
	// "median over the last ~2 s").
	onsetHistorySeconds = 2.0
)

// Analyzer implements spec §4.F's process(samples) -> AudioFeatures
// contract. Grounded on the vscode-music-player FeatureExtractor's
// FFT/Hann-window/band-energy pipeline, narrowed from an offline whole-track
// extractor to a streaming single-window-per-call analyzer and extended
// with the onset/beat-threshold and stereo fields §4.F actually specifies.
// Outputs are stable across identical inputs: Process holds no state beyond
// what it explicitly carries forward frame to frame (EMA accumulators,
// onset history), so feeding it the same window twice from the same
// Analyzer state yields the same AudioFeatures.
type Analyzer struct {
	sampleRate int
	fft        *fourier.FFT
	window     []float64

	monoWindow []float64 // sliding fftSize-sample history, mono downmix
	prevSpectrum []float64

	bassEMA, midEMA, trebleEMA float32
	emaPrimed                  bool

	fluxHistory []float32 // ring of recent onset-energy samples for the dynamic threshold
	fluxCursor  int
	fluxCount   int
	runningMax  float32
}

func NewAnalyzer(sampleRate int) *Analyzer {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}
	// Onset history spans ~2s of hop-sized frames; callers drive Process at
	// roughly one call per render frame, so size generously for 30-144 Hz.
	historyLen := int(onsetHistorySeconds * 200)
	return &Analyzer{
		sampleRate:   sampleRate,
		fft:          fourier.NewFFT(fftSize),
		window:       window,
		monoWindow:   make([]float64, fftSize),
		prevSpectrum: make([]float64, fftSize/2),
		fluxHistory:  make([]float32, historyLen),
	}
}

// Process consumes newly arrived interleaved-free left/right sample slices
// (either may be empty for a mono source, in which case the other is used
// for both channels), slides them into the analyzer's FFT window, and
// returns the features plus whether a beat was detected this call.
func (a *Analyzer) Process(left, right []float32, smoothness, beatSensitivity float32) (core.AudioFeatures, bool) {
	if len(left) == 0 && len(right) == 0 {
		return core.AudioFeatures{}, false
	}
	if len(left) == 0 {
		left = right
	}
	if len(right) == 0 {
		right = left
	}

	a.slideMono(left, right)
	spectrum := a.magnitudeSpectrum()

	freqPerBin := float64(a.sampleRate) / float64(fftSize)
	bass, mid, treble := bandEnergyRatios(spectrum, freqPerBin, bassMaxHz, midMaxHz, trebleMaxHz)

	alpha := smoothnessToAlpha(smoothness)
	if !a.emaPrimed {
		a.bassEMA, a.midEMA, a.trebleEMA = float32(bass), float32(mid), float32(treble)
		a.emaPrimed = true
	} else {
		a.bassEMA += (float32(bass) - a.bassEMA) * alpha
		a.midEMA += (float32(mid) - a.midEMA) * alpha
		a.trebleEMA += (float32(treble) - a.trebleEMA) * alpha
	}

	flux := spectralFlux(spectrum, a.prevSpectrum)
	copy(a.prevSpectrum, spectrum)

	rms, peak := rmsAndPeak(left, right)
	balance, width := stereoBalanceWidth(left, right)
	harmonic := harmonicRatio(spectrum, freqPerBin)

	onsetEnergy := float32(flux)
	threshold := a.dynamicThreshold(beatSensitivity)
	a.pushOnsetHistory(onsetEnergy)

	beat := onsetEnergy > threshold && onsetEnergy > 1e-6
	beatIntensity := float32(0)
	if beat {
		if onsetEnergy > a.runningMax {
			a.runningMax = onsetEnergy
		}
		if a.runningMax > 0 {
			beatIntensity = onsetEnergy / a.runningMax
		}
	} else {
		// runningMax decays slowly so a long quiet section doesn't leave a
		// stale peak suppressing every future beat's intensity.
		a.runningMax *= 0.999
	}

	return core.AudioFeatures{
		Bass:          a.bassEMA,
		Mid:           a.midEMA,
		Treble:        a.trebleEMA,
		RMS:           rms,
		Peak:          peak,
		SpectralFlux:  float32(flux),
		OnsetEnergy:   onsetEnergy,
		StereoBalance: balance,
		StereoWidth:   width,
		HarmonicRatio: harmonic,
		BeatIntensity: beatIntensity,
	}, beat
}

// slideMono appends the new samples to the tail of the fftSize window,
// discarding the same count from the front, so each call analyzes the most
// recent fftSize samples regardless of callback chunk size (spec §6.2 "must
// tolerate variable callback sizes").
func (a *Analyzer) slideMono(left, right []float32) {
	n := len(left)
	if n > fftSize {
		left = left[n-fftSize:]
		right = right[n-fftSize:]
		n = fftSize
	}
	copy(a.monoWindow, a.monoWindow[n:])
	base := fftSize - n
	for i := 0; i < n; i++ {
		a.monoWindow[base+i] = (float64(left[i]) + float64(right[i])) * 0.5
	}
}

func (a *Analyzer) magnitudeSpectrum() []float64 {
	windowed := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		windowed[i] = a.monoWindow[i] * a.window[i]
	}
	coeffs := a.fft.Coefficients(nil, windowed)
	spectrum := make([]float64, fftSize/2)
	for i := range spectrum {
		re, im := real(coeffs[i]), imag(coeffs[i])
		spectrum[i] = math.Sqrt(re*re + im*im)
	}
	return spectrum
}

func bandEnergyRatios(spectrum []float64, freqPerBin, bassMax, midMax, trebleMax float64) (bass, mid, treble float64) {
	var bassE, midE, trebleE, total float64
	for i, mag := range spectrum {
		freq := float64(i) * freqPerBin
		e := mag * mag
		total += e
		switch {
		case freq < bassMax:
			bassE += e
		case freq < midMax:
			midE += e
		case freq < trebleMax:
			trebleE += e
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return bassE / total, midE / total, trebleE / total
}

func spectralFlux(spectrum, prev []float64) float64 {
	var flux float64
	for i := 0; i < len(spectrum) && i < len(prev); i++ {
		d := spectrum[i] - prev[i]
		if d > 0 {
			flux += d * d
		}
	}
	return math.Sqrt(flux)
}

func rmsAndPeak(left, right []float32) (rms, peak float32) {
	var sumSq float64
	n := 0
	for i := range left {
		l, r := left[i], float32(0)
		if i < len(right) {
			r = right[i]
		}
		m := (l + r) * 0.5
		sumSq += float64(m) * float64(m)
		if abs32(m) > peak {
			peak = abs32(m)
		}
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return float32(math.Sqrt(sumSq / float64(n))), peak
}

// stereoBalanceWidth computes (rmsR-rmsL)/(rmsR+rmsL) and a correlation-based
// width estimate (spec §4.F): width is 1 minus the normalized cross-channel
// correlation, so fully correlated (mono-summed) content reads as 0 and
// fully decorrelated content reads toward 1.
func stereoBalanceWidth(left, right []float32) (balance, width float32) {
	var sumL, sumR, sumLR, sumLL, sumRR float64
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		l, r := float64(left[i]), float64(right[i])
		sumL += l * l
		sumR += r * r
		sumLR += l * r
		sumLL += l * l
		sumRR += r * r
	}
	rmsL, rmsR := math.Sqrt(sumL), math.Sqrt(sumR)
	if rmsL+rmsR > 0 {
		balance = float32((rmsR - rmsL) / (rmsR + rmsL))
	}
	denom := math.Sqrt(sumLL * sumRR)
	corr := 0.0
	if denom > 0 {
		corr = sumLR / denom
	}
	width = float32(1 - clamp(corr, -1, 1))
	return balance, width
}

// harmonicRatio approximates tonal-vs-noisy content as the fraction of
// spectral energy concentrated at the spectrum's dominant peaks, a cheap
// proxy for the harmonic-to-noise ratio the spec leaves implementation to.
func harmonicRatio(spectrum []float64, freqPerBin float64) float32 {
	var total, peakEnergy float64
	for i, mag := range spectrum {
		e := mag * mag
		total += e
		isPeak := (i == 0 || spectrum[i-1] <= mag) && (i == len(spectrum)-1 || spectrum[i+1] <= mag)
		if isPeak {
			peakEnergy += e
		}
	}
	if total == 0 {
		return 0
	}
	return float32(clamp(peakEnergy/total, 0, 1))
}

// smoothnessToAlpha maps the [0,1] smoothness macro to an EMA coefficient:
// smoothness=0 tracks instantly (alpha=1), smoothness=1 barely moves.
func smoothnessToAlpha(smoothness float32) float32 {
	s := clampF(smoothness, 0, 1)
	return 1 - s*0.95
}

func (a *Analyzer) pushOnsetHistory(v float32) {
	a.fluxHistory[a.fluxCursor] = v
	a.fluxCursor = (a.fluxCursor + 1) % len(a.fluxHistory)
	if a.fluxCount < len(a.fluxHistory) {
		a.fluxCount++
	}
}

// dynamicThreshold is the median of the onset-energy history scaled by
// beatSensitivity (spec §4.F "median over the last ~2 s scaled by
// beatSensitivity").
func (a *Analyzer) dynamicThreshold(beatSensitivity float32) float32 {
	if a.fluxCount == 0 {
		return 0
	}
	sorted := make([]float32, a.fluxCount)
	copy(sorted, a.fluxHistory[:a.fluxCount])
	insertionSort(sorted)
	median := sorted[len(sorted)/2]
	if beatSensitivity <= 0 {
		beatSensitivity = 1
	}
	return median * beatSensitivity
}

func insertionSort(s []float32) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
