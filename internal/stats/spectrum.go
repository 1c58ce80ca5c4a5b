package stats

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// ErrEmptyBand is returned when no spectral estimate falls inside the
// configured wave band.
var ErrEmptyBand = errors.New("no spectral estimates inside the wave band")

// SpectralPoint is one power spectral density estimate.
type SpectralPoint struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Power       float64 `json:"power"`
}

// ContourSlice is the spectrum of one time chunk of the series.
type ContourSlice struct {
	StartMs  int64           `json:"start_ms"`
	Spectrum []SpectralPoint `json:"spectrum"`
}

// welch estimates the one-sided power spectral density of x by averaging
// Hann-windowed periodograms of overlapping segments. The result covers
// frequencies 0 through fs/2 in steps of fs/segment.
func welch(x []float64, fs float64, segment, overlap int) ([]SpectralPoint, error) {
	if segment > len(x) {
		segment = len(x)
	}
	if segment < 2 {
		return nil, fmt.Errorf("spectral segment of %d samples is too short", segment)
	}
	step := segment - overlap
	if overlap < 0 || step <= 0 {
		step = segment / 2
	}

	win := make([]float64, segment)
	for i := range win {
		win[i] = 1
	}
	win = window.Hann(win)

	var winPower float64
	for _, w := range win {
		winPower += w * w
	}
	scale := 1.0 / (fs * winPower)

	fft := fourier.NewFFT(segment)
	bins := segment/2 + 1
	power := make([]float64, bins)
	buf := make([]float64, segment)
	coeffs := make([]complex128, bins)

	segments := 0
	for start := 0; start+segment <= len(x); start += step {
		for i := range buf {
			buf[i] = x[start+i] * win[i]
		}
		coeffs = fft.Coefficients(coeffs, buf)
		for k, c := range coeffs {
			p := cmplx.Abs(c)
			p = p * p * scale
			if k != 0 && !(segment%2 == 0 && k == segment/2) {
				p *= 2
			}
			power[k] += p
		}
		segments++
	}

	out := make([]SpectralPoint, bins)
	for k := range out {
		out[k] = SpectralPoint{
			FrequencyHz: float64(k) * fs / float64(segment),
			Power:       power[k] / float64(segments),
		}
	}
	return out, nil
}

// resolution returns the frequency spacing of a spectrum.
func resolution(spectrum []SpectralPoint) float64 {
	if len(spectrum) < 2 {
		return 0
	}
	return spectrum[1].FrequencyHz - spectrum[0].FrequencyHz
}

// peakPeriod returns 1/f at the highest power inside [low, high].
func peakPeriod(spectrum []SpectralPoint, low, high float64) (float64, error) {
	best := -1
	for i, p := range spectrum {
		if p.FrequencyHz <= 0 || p.FrequencyHz < low || p.FrequencyHz > high {
			continue
		}
		if best < 0 || p.Power > spectrum[best].Power {
			best = i
		}
	}
	if best < 0 {
		return 0, ErrEmptyBand
	}
	return 1.0 / spectrum[best].FrequencyHz, nil
}

// spectralHeight returns Hm0 = 4·sqrt(m0) where m0 is the spectrum integrated
// over [low, high].
func spectralHeight(spectrum []SpectralPoint, low, high float64) (float64, error) {
	df := resolution(spectrum)
	var m0 float64
	inBand := 0
	for _, p := range spectrum {
		if p.FrequencyHz < low || p.FrequencyHz > high {
			continue
		}
		m0 += p.Power * df
		inBand++
	}
	if inBand == 0 {
		return 0, ErrEmptyBand
	}
	return 4 * math.Sqrt(m0), nil
}

// LowPass removes every Fourier component above cutoffHz from x and returns
// the filtered copy. The mean is preserved.
func LowPass(x []float64, fs, cutoffHz float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n < 2 || cutoffHz <= 0 || cutoffHz >= fs/2 {
		copy(out, x)
		return out
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x)
	for k := range coeffs {
		if float64(k)*fs/float64(n) > cutoffHz {
			coeffs[k] = 0
		}
	}
	out = fft.Sequence(out, coeffs)
	for i := range out {
		out[i] /= float64(n)
	}
	return out
}
