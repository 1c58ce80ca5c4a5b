// Package report renders the storm summary as a workbook, a PDF with charts,
// and a machine-readable sidecar.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/internal/types"
)

// Limits pins a chart's y axis.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Peak is the storm tide maximum and the tidal forcing at that instant.
type Peak struct {
	Time         time.Time `json:"time"`
	ValueM       float64   `json:"value_m"`
	TideClass    string    `json:"tide_class"`
	MoonPhase    string    `json:"moon_phase"`
	DaysToSyzygy float64   `json:"days_to_syzygy"`
}

// Statistic is one scalar result row.
type Statistic struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Summary is everything a report shows besides the raw series.
type Summary struct {
	RunID          string                `json:"run_id"`
	OutputName     string                `json:"output_name"`
	GeneratedAt    time.Time             `json:"generated_at"`
	StationNumber  string                `json:"stn_station_number,omitempty"`
	SeaName        string                `json:"sea_name,omitempty"`
	Datum          string                `json:"datum,omitempty"`
	SeaInstrument  string                `json:"sea_instrument"`
	AirInstrument  string                `json:"air_instrument"`
	OverlapStart   time.Time             `json:"overlap_start"`
	OverlapEnd     time.Time             `json:"overlap_end"`
	SamplingRateHz float64               `json:"sampling_rate_hz"`
	Peak           *Peak                 `json:"peak,omitempty"`
	WaveCount      int                   `json:"wave_count,omitempty"`
	CrossingCount  int                   `json:"crossing_count,omitempty"`
	Statistics     []Statistic           `json:"statistics,omitempty"`
	Spectrum       []stats.SpectralPoint `json:"spectrum,omitempty"`
	Contour        []stats.ContourSlice  `json:"contour,omitempty"`

	// StatisticsError is set when statistics were requested but failed.
	StatisticsError string `json:"statistics_error,omitempty"`
}

// Input bundles the summary with the series to chart.
type Input struct {
	Summary     Summary
	Unfiltered  types.TimeSeries
	StormTide   types.TimeSeries
	Atmospheric types.TimeSeries

	WaterLevelLimits *Limits
	BaroLimits       *Limits
}

// StatisticsFrom flattens a bundle into rows in kind order.
func StatisticsFrom(b *stats.Bundle) []Statistic {
	if b == nil {
		return nil
	}
	var rows []Statistic
	for _, k := range b.Selected().List() {
		if v, ok := b.Scalar(k); ok {
			rows = append(rows, Statistic{Name: k.String(), Value: v, Unit: k.Unit()})
		}
	}
	return rows
}

// writeAtomic writes data through a temporary file in the target directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
