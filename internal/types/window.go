package types

import "fmt"

// ValidWindow is an inclusive [StartMs, EndMs] span of usable data for one
// instrument. A window with StartMs >= EndMs is invalid.
type ValidWindow struct {
	StartMs int64
	EndMs   int64
}

// Valid reports whether the window has positive duration.
func (w ValidWindow) Valid() bool {
	return w.StartMs < w.EndMs
}

// Contains reports whether ts falls inside the window.
func (w ValidWindow) Contains(ts int64) bool {
	return ts >= w.StartMs && ts <= w.EndMs
}

func (w ValidWindow) String() string {
	return fmt.Sprintf("[%d, %d]", w.StartMs, w.EndMs)
}

// OverlapWindow is the intersection of two ValidWindows. It is only ever
// produced for a non-empty intersection.
type OverlapWindow ValidWindow

func (w OverlapWindow) String() string {
	return ValidWindow(w).String()
}

// IndexRange addresses samples [Start, End] inclusive within one series.
type IndexRange struct {
	Start int
	End   int
}

// Len returns the number of samples the range covers.
func (r IndexRange) Len() int {
	return r.End - r.Start + 1
}
