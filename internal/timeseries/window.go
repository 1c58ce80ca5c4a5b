package timeseries

import (
	"github.com/chrissnell/stormtide/internal/types"
)

// Align intersects two valid windows. ok is false when the intersection has no
// positive duration; windows that only touch at a single instant do not overlap.
func Align(a, b types.ValidWindow) (types.OverlapWindow, bool) {
	w := types.OverlapWindow{
		StartMs: max(a.StartMs, b.StartMs),
		EndMs:   min(a.EndMs, b.EndMs),
	}
	if w.StartMs >= w.EndMs {
		return types.OverlapWindow{}, false
	}
	return w, true
}

// ValidWindowOf returns the span covered by a series' first and last samples.
func ValidWindowOf(ts types.TimeSeries) types.ValidWindow {
	if ts.Len() == 0 {
		return types.ValidWindow{}
	}
	return types.ValidWindow{StartMs: ts.First(), EndMs: ts.Last()}
}

// WindowFromBounds narrows a series' span to its deployment and retrieval
// times. Zero bounds are treated as unset.
func WindowFromBounds(ts types.TimeSeries, deploymentMs, retrievalMs int64) types.ValidWindow {
	w := ValidWindowOf(ts)
	if deploymentMs != 0 && deploymentMs > w.StartMs {
		w.StartMs = deploymentMs
	}
	if retrievalMs != 0 && retrievalMs < w.EndMs {
		w.EndMs = retrievalMs
	}
	return w
}

// TrimToQuality shrinks w so it starts at the first and ends at the last
// non-bad sample inside it. A window with no usable samples comes back
// invalid.
func TrimToQuality(ts types.TimeSeries, w types.ValidWindow) types.ValidWindow {
	first, last := -1, -1
	for i, s := range ts.Samples {
		if !w.Contains(s.TimestampMs) || s.Quality == types.QualityBad {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return types.ValidWindow{StartMs: w.EndMs, EndMs: w.StartMs}
	}
	return types.ValidWindow{
		StartMs: ts.Samples[first].TimestampMs,
		EndMs:   ts.Samples[last].TimestampMs,
	}
}

// InstrumentWindow derives the window an instrument contributes to the pair
// alignment: its deployment bounds, then trimmed of bad records at either end.
func InstrumentWindow(ts types.TimeSeries) types.ValidWindow {
	return TrimToQuality(ts, WindowFromBounds(ts, ts.Meta.DeploymentMs, ts.Meta.RetrievalMs))
}
