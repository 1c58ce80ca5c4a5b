package timeseries

import (
	"fmt"

	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/types"
)

// ResolveRange maps a window's boundary timestamps to indices on this
// series' own axis. Each instrument resolves independently because sampling
// rates and offsets differ between the pair.
func ResolveRange(axis []int64, startMs, endMs int64) (types.IndexRange, error) {
	start, err := Locate(axis, startMs)
	if err != nil {
		return types.IndexRange{}, err
	}
	end, err := Locate(axis, endMs)
	if err != nil {
		return types.IndexRange{}, err
	}
	if end <= start {
		return types.IndexRange{}, fmt.Errorf("%w: start=%d end=%d", outcome.ErrDegenerateRange, start, end)
	}
	return types.IndexRange{Start: start, End: end}, nil
}

// Chop trims a series to the samples nearest the overlap window's bounds.
// The returned series is a fresh copy; metadata and quality flags are carried
// through unchanged.
func Chop(ts types.TimeSeries, w types.OverlapWindow) (types.TimeSeries, types.IndexRange, error) {
	r, err := ResolveRange(ts.Times(), w.StartMs, w.EndMs)
	if err != nil {
		return types.TimeSeries{}, types.IndexRange{}, err
	}
	return ts.Slice(r.Start, r.End), r, nil
}
