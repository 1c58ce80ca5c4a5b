package types

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// QualityFlag marks whether an instrument record is usable.
type QualityFlag uint8

const (
	QualityUnset QualityFlag = iota
	QualityGood
	QualityBad
)

// String returns the archive label for a quality flag.
func (q QualityFlag) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityBad:
		return "bad"
	default:
		return "unset"
	}
}

// Sample is one instrument record. TimestampMs is milliseconds since the Unix epoch.
type Sample struct {
	TimestampMs int64
	Value       float64
	Quality     QualityFlag
}

// TimeSeries is an ordered run of samples from a single instrument along with
// the metadata describing where and how they were recorded. Timestamps are
// non-decreasing. A TimeSeries is owned by whichever stage holds it; stages
// hand each other copies, never shared slices.
type TimeSeries struct {
	Samples []Sample
	Meta    Metadata
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int {
	return len(ts.Samples)
}

// Times returns the timestamp axis.
func (ts TimeSeries) Times() []int64 {
	axis := make([]int64, len(ts.Samples))
	for i, s := range ts.Samples {
		axis[i] = s.TimestampMs
	}
	return axis
}

// Values returns the sample values.
func (ts TimeSeries) Values() []float64 {
	values := make([]float64, len(ts.Samples))
	for i, s := range ts.Samples {
		values[i] = s.Value
	}
	return values
}

// Clone returns a deep copy of the series.
func (ts TimeSeries) Clone() TimeSeries {
	samples := make([]Sample, len(ts.Samples))
	copy(samples, ts.Samples)
	return TimeSeries{Samples: samples, Meta: ts.Meta}
}

// Slice returns a copy holding samples [start, end] inclusive. Callers are
// expected to have validated the bounds.
func (ts TimeSeries) Slice(start, end int) TimeSeries {
	samples := make([]Sample, end-start+1)
	copy(samples, ts.Samples[start:end+1])
	return TimeSeries{Samples: samples, Meta: ts.Meta}
}

// First and Last return the boundary timestamps. Both panic on an empty series.
func (ts TimeSeries) First() int64 { return ts.Samples[0].TimestampMs }
func (ts TimeSeries) Last() int64  { return ts.Samples[len(ts.Samples)-1].TimestampMs }

// HasBadData reports whether any sample is flagged bad.
func (ts TimeSeries) HasBadData() bool {
	for _, s := range ts.Samples {
		if s.Quality == QualityBad {
			return true
		}
	}
	return false
}

// SamplingRateHz estimates the sampling rate from the median sample interval.
// Irregular loggers occasionally drop or repeat records, so the median is used
// rather than the mean. Returns 0 when fewer than two distinct timestamps exist.
func (ts TimeSeries) SamplingRateHz() float64 {
	if len(ts.Samples) < 2 {
		return 0
	}

	intervals := make([]float64, 0, len(ts.Samples)-1)
	for i := 1; i < len(ts.Samples); i++ {
		d := ts.Samples[i].TimestampMs - ts.Samples[i-1].TimestampMs
		if d > 0 {
			intervals = append(intervals, float64(d))
		}
	}
	if len(intervals) == 0 {
		return 0
	}

	sort.Float64s(intervals)
	median := stat.Quantile(0.5, stat.Empirical, intervals, nil)
	if median <= 0 {
		return 0
	}
	return 1000.0 / median
}
