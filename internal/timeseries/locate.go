// Package timeseries implements the alignment core: nearest-sample lookup,
// overlap windows between paired instruments, and chopping a series down to
// an index range.
package timeseries

import (
	"github.com/chrissnell/stormtide/internal/outcome"
)

// Locate returns the index of the axis entry nearest to target. Ties resolve
// to the earliest index. The axis need not be monotonic, though instrument
// axes always are.
func Locate(axis []int64, target int64) (int, error) {
	if len(axis) == 0 {
		return 0, outcome.ErrEmptySeries
	}

	best := 0
	bestDiff := absDiff(axis[0], target)
	for i := 1; i < len(axis); i++ {
		if d := absDiff(axis[i], target); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best, nil
}

func absDiff(a, b int64) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
