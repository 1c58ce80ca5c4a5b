// Package stats derives storm wave statistics from a chopped, unit-normalised
// water-level series: zero-crossing wave heights and periods, and Welch power
// spectral density estimates.
package stats

import (
	"fmt"
	"math"

	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/types"
)

// Options tunes the spectral estimates.
type Options struct {
	// SegmentLength is the Welch segment length in samples.
	SegmentLength int
	// Overlap is the number of samples shared by consecutive segments.
	Overlap int
	// LowCutHz and HighCutHz bound the wave band used for Hm0 and the peak period.
	LowCutHz  float64
	HighCutHz float64
	// ContourChunkSeconds is the span of each PSD contour slice.
	ContourChunkSeconds float64
}

// DefaultOptions returns the band limits used for 4 Hz storm deployments.
func DefaultOptions() Options {
	return Options{
		SegmentLength:       256,
		Overlap:             128,
		LowCutHz:            0.045,
		HighCutHz:           1.0,
		ContourChunkSeconds: 1024,
	}
}

// Bundle holds the statistics computed for one water-level series. It is
// never modified after Compute returns; accessors hand out copies.
type Bundle struct {
	selected      Selection
	scalars       map[Kind]float64
	spectrum      []SpectralPoint
	contour       []ContourSlice
	waveCount     int
	crossingCount int
}

// Selected returns the kinds the bundle was computed for.
func (b *Bundle) Selected() Selection {
	return b.selected
}

// Scalar returns a scalar statistic and whether it was computed.
func (b *Bundle) Scalar(k Kind) (float64, bool) {
	v, ok := b.scalars[k]
	return v, ok
}

// Spectrum returns the averaged PSD ordered by increasing frequency, or nil
// when PSD Contour was not selected.
func (b *Bundle) Spectrum() []SpectralPoint {
	if b.spectrum == nil {
		return nil
	}
	out := make([]SpectralPoint, len(b.spectrum))
	copy(out, b.spectrum)
	return out
}

// Contour returns the per-chunk spectra.
func (b *Bundle) Contour() []ContourSlice {
	out := make([]ContourSlice, len(b.contour))
	for i, c := range b.contour {
		spec := make([]SpectralPoint, len(c.Spectrum))
		copy(spec, c.Spectrum)
		out[i] = ContourSlice{StartMs: c.StartMs, Spectrum: spec}
	}
	return out
}

// WaveCount is the number of complete waves found, or 0 when no wave
// statistic was requested.
func (b *Bundle) WaveCount() int {
	return b.waveCount
}

// CrossingCount is the number of upward zero crossings found.
func (b *Bundle) CrossingCount() int {
	return b.crossingCount
}

// Compute derives the selected statistics from series. samplingRateHz is the
// rate the spectral estimates assume; zero-crossing periods use the series'
// own timestamps. The mean is always removed first.
func Compute(series types.TimeSeries, samplingRateHz float64, selected Selection, opts Options) (*Bundle, error) {
	if series.Len() == 0 {
		return nil, outcome.ErrEmptySeries
	}
	if samplingRateHz <= 0 || math.IsNaN(samplingRateHz) {
		return nil, fmt.Errorf("sampling rate must be positive, got %v", samplingRateHz)
	}

	b := &Bundle{selected: selected, scalars: make(map[Kind]float64)}
	if selected.IsEmpty() {
		return b, nil
	}

	x := Detrend(series.Values())
	axis := series.Times()

	if selected.needsWaves() || selected.Has(AverageZeroCrossPeriod) {
		crossings := upCrossings(x, axis)
		b.crossingCount = len(crossings)

		if selected.Has(AverageZeroCrossPeriod) {
			period, err := averageZeroCrossPeriod(crossings)
			if err != nil {
				return nil, err
			}
			b.scalars[AverageZeroCrossPeriod] = period
		}

		if selected.needsWaves() {
			heights := waveHeights(x, crossings)
			b.waveCount = len(heights)
			ranked, err := rankWaves(heights)
			if err != nil {
				return nil, fmt.Errorf("%w: found %d", err, len(heights))
			}
			b.setIfSelected(SignificantWaveHeight, ranked.H13)
			b.setIfSelected(TenthWaveHeight, ranked.H10)
			b.setIfSelected(HundredthWaveHeight, ranked.H1)
			b.setIfSelected(MaxWaveHeight, ranked.Hmax)
			b.setIfSelected(RMSWaveHeight, ranked.Hrms)
		}
	}

	if selected.needsSpectrum() {
		spectrum, err := welch(x, samplingRateHz, opts.SegmentLength, opts.Overlap)
		if err != nil {
			return nil, err
		}

		if selected.Has(PeakWavePeriod) {
			tp, err := peakPeriod(spectrum, opts.LowCutHz, opts.HighCutHz)
			if err != nil {
				return nil, err
			}
			b.scalars[PeakWavePeriod] = tp
		}
		if selected.Has(SpectralWaveHeight) {
			hm0, err := spectralHeight(spectrum, opts.LowCutHz, opts.HighCutHz)
			if err != nil {
				return nil, err
			}
			b.scalars[SpectralWaveHeight] = hm0
		}
		if selected.Has(PSDContour) {
			b.spectrum = spectrum
			contour, err := contourSlices(x, axis, samplingRateHz, opts)
			if err != nil {
				return nil, err
			}
			b.contour = contour
		}
	}

	return b, nil
}

func (b *Bundle) setIfSelected(k Kind, v float64) {
	if b.selected.Has(k) {
		b.scalars[k] = v
	}
}

// contourSlices computes one Welch spectrum per consecutive chunk. Trailing
// chunks shorter than a segment are dropped; a series shorter than one chunk
// yields a single slice.
func contourSlices(x []float64, axis []int64, fs float64, opts Options) ([]ContourSlice, error) {
	chunk := int(opts.ContourChunkSeconds * fs)
	if chunk <= 0 || chunk >= len(x) {
		spec, err := welch(x, fs, opts.SegmentLength, opts.Overlap)
		if err != nil {
			return nil, err
		}
		return []ContourSlice{{StartMs: axis[0], Spectrum: spec}}, nil
	}

	var slices []ContourSlice
	for start := 0; start < len(x); start += chunk {
		end := min(start+chunk, len(x))
		if end-start < opts.SegmentLength && len(slices) > 0 {
			break
		}
		spec, err := welch(Detrend(x[start:end]), fs, opts.SegmentLength, opts.Overlap)
		if err != nil {
			return nil, err
		}
		slices = append(slices, ContourSlice{StartMs: axis[start], Spectrum: spec})
	}
	return slices, nil
}
