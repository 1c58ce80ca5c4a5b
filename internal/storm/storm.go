// Package storm derives water-level products from a sea and air pressure
// pair that has already been trimmed to a common window.
package storm

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/internal/types"
)

// Variable roles of the derived products.
const (
	VariableUnfiltered = "unfiltered_water_level"
	VariableStormTide  = "storm_tide_water_level"
	UnitsMetres        = "m"
)

var ErrNoGoodSamples = errors.New("series has no good samples")

// Options controls product derivation.
type Options struct {
	// LowCutHz is the low-pass cutoff separating storm tide from waves.
	LowCutHz float64
}

// Peak is the highest storm tide reached.
type Peak struct {
	TimestampMs int64   `json:"timestamp_ms"`
	ValueM      float64 `json:"value_m"`
}

// Products are the water-level series derived for one storm.
type Products struct {
	// Unfiltered is sea-surface elevation including waves.
	Unfiltered types.TimeSeries
	// StormTide is the low-passed water level.
	StormTide types.TimeSeries
	// Atmospheric is the air pressure reference in dbar.
	Atmospheric types.TimeSeries
	Peak        Peak
}

// Derive builds the storm products. Air pressure is interpolated onto the sea
// timestamps, subtracted from sea pressure, converted to metres for the
// deployment's salinity and offset by the sensor orifice elevation, which is
// assumed to drift linearly over the record.
func Derive(sea, air types.TimeSeries, opts Options) (*Products, error) {
	if sea.Len() == 0 || air.Len() == 0 {
		return nil, outcome.ErrEmptySeries
	}

	density, err := Density(sea.Meta.Salinity)
	if err != nil {
		return nil, err
	}

	seaTimes := sea.Times()
	seaValues, err := fillBad(sea)
	if err != nil {
		return nil, fmt.Errorf("sea: %w", err)
	}
	airOnSea, err := resample(air, seaTimes)
	if err != nil {
		return nil, fmt.Errorf("air: %w", err)
	}

	first, last := seaTimes[0], seaTimes[len(seaTimes)-1]
	level := make([]float64, len(seaValues))
	for i, t := range seaTimes {
		level[i] = DecibarToMetres(seaValues[i]-airOnSea[i], density) +
			orificeAt(t, first, last, sea.Meta.InitialOrificeM, sea.Meta.FinalOrificeM)
	}

	fs := sea.SamplingRateHz()
	tide := level
	if fs > 0 {
		tide = stats.LowPass(level, fs, opts.LowCutHz)
	}

	p := &Products{
		Unfiltered:  product(sea, level, VariableUnfiltered),
		StormTide:   product(sea, tide, VariableStormTide),
		Atmospheric: air.Clone(),
	}
	p.Atmospheric.Meta.Reference = true
	p.Atmospheric.Meta.Variable = types.VariableName(true)
	p.Peak = peakOf(p.StormTide)
	return p, nil
}

func orificeAt(t, first, last int64, initial, final float64) float64 {
	if last <= first {
		return initial
	}
	frac := float64(t-first) / float64(last-first)
	return initial + (final-initial)*frac
}

func product(like types.TimeSeries, values []float64, variable string) types.TimeSeries {
	out := types.TimeSeries{Samples: make([]types.Sample, len(values)), Meta: like.Meta}
	for i, v := range values {
		out.Samples[i] = types.Sample{
			TimestampMs: like.Samples[i].TimestampMs,
			Value:       v,
			Quality:     like.Samples[i].Quality,
		}
	}
	out.Meta.Variable = variable
	out.Meta.Units = UnitsMetres
	out.Meta.Reference = false
	return out
}

func peakOf(ts types.TimeSeries) Peak {
	var p Peak
	for i, s := range ts.Samples {
		if i == 0 || s.Value > p.ValueM {
			p = Peak{TimestampMs: s.TimestampMs, ValueM: s.Value}
		}
	}
	return p
}

// goodPoints returns the strictly increasing (time, value) pairs of the good
// samples, keeping the first of any repeated timestamp.
func goodPoints(ts types.TimeSeries) (xs, ys []float64) {
	for _, s := range ts.Samples {
		if s.Quality == types.QualityBad {
			continue
		}
		x := float64(s.TimestampMs)
		if len(xs) > 0 && x <= xs[len(xs)-1] {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, s.Value)
	}
	return xs, ys
}

// resample evaluates ts at each of the given timestamps, interpolating
// linearly between good samples and holding the end values outside them.
func resample(ts types.TimeSeries, at []int64) ([]float64, error) {
	xs, ys := goodPoints(ts)
	out := make([]float64, len(at))
	switch len(xs) {
	case 0:
		return nil, ErrNoGoodSamples
	case 1:
		for i := range out {
			out[i] = ys[0]
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	for i, t := range at {
		out[i] = pl.Predict(float64(t))
	}
	return out, nil
}

// fillBad replaces bad samples with values interpolated from their good
// neighbours.
func fillBad(ts types.TimeSeries) ([]float64, error) {
	if !ts.HasBadData() {
		return ts.Values(), nil
	}
	return resample(ts, ts.Times())
}
