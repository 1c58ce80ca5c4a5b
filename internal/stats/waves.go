package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/stormtide/internal/outcome"
)

// Detrend returns a copy of x with its mean removed.
func Detrend(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	mean := stat.Mean(x, nil)
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

// crossing is an upward zero crossing between samples Index-1 and Index.
type crossing struct {
	Index  int
	TimeMs float64
}

// upCrossings finds every sample i with x[i-1] < 0 <= x[i]. The crossing time
// is linearly interpolated between the two bracketing timestamps.
func upCrossings(x []float64, axis []int64) []crossing {
	var out []crossing
	for i := 1; i < len(x); i++ {
		if x[i-1] < 0 && x[i] >= 0 {
			frac := -x[i-1] / (x[i] - x[i-1])
			t0 := float64(axis[i-1])
			t1 := float64(axis[i])
			out = append(out, crossing{Index: i, TimeMs: t0 + frac*(t1-t0)})
		}
	}
	return out
}

// waveHeights splits x into waves bounded by consecutive upward crossings and
// returns each wave's crest-to-trough height.
func waveHeights(x []float64, crossings []crossing) []float64 {
	if len(crossings) < 2 {
		return nil
	}
	heights := make([]float64, 0, len(crossings)-1)
	for k := 0; k+1 < len(crossings); k++ {
		seg := x[crossings[k].Index:crossings[k+1].Index]
		heights = append(heights, floats.Max(seg)-floats.Min(seg))
	}
	return heights
}

// averageZeroCrossPeriod returns the mean interval in seconds between
// consecutive upward crossings.
func averageZeroCrossPeriod(crossings []crossing) (float64, error) {
	if len(crossings) < 2 {
		return 0, outcome.ErrInsufficientCrossings
	}
	span := crossings[len(crossings)-1].TimeMs - crossings[0].TimeMs
	return span / float64(len(crossings)-1) / 1000.0, nil
}

// waveHeightStats holds the height-ranked wave statistics.
type waveHeightStats struct {
	H13  float64
	H10  float64
	H1   float64
	Hmax float64
	Hrms float64
}

func rankWaves(heights []float64) (waveHeightStats, error) {
	n := len(heights)
	if n < 3 {
		return waveHeightStats{}, outcome.ErrInsufficientWaves
	}

	ranked := make([]float64, n)
	copy(ranked, heights)
	sort.Sort(sort.Reverse(sort.Float64Slice(ranked)))

	var sumSq float64
	for _, h := range ranked {
		sumSq += h * h
	}

	return waveHeightStats{
		H13:  topMean(ranked, n/3),
		H10:  topMean(ranked, n/10),
		H1:   topMean(ranked, n/100),
		Hmax: ranked[0],
		Hrms: math.Sqrt(sumSq / float64(n)),
	}, nil
}

// topMean averages the first count entries of a descending slice, using at
// least the single highest wave.
func topMean(ranked []float64, count int) float64 {
	if count < 1 {
		count = 1
	}
	return stat.Mean(ranked[:count], nil)
}
