package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/internal/types"
)

func testInput() *Input {
	start := time.Date(2015, 8, 24, 13, 0, 0, 0, time.UTC)
	wl := types.TimeSeries{}
	air := types.TimeSeries{}
	for i := 0; i < 4000; i++ {
		ms := start.UnixMilli() + int64(i)*250
		wl.Samples = append(wl.Samples, types.Sample{TimestampMs: ms, Value: 1 + 0.5*math.Sin(float64(i)/20), Quality: types.QualityGood})
		if i%120 == 0 {
			air.Samples = append(air.Samples, types.Sample{TimestampMs: ms, Value: 10.1, Quality: types.QualityGood})
		}
	}
	tide := wl.Clone()
	tide.Samples[2].Value = math.NaN()

	return &Input{
		Summary: Summary{
			RunID:          "2d1f0c3e-5b8a-4c1e-9f3a-7e6d5c4b3a21",
			OutputName:     "hatteras",
			GeneratedAt:    start.Add(48 * time.Hour),
			StationNumber:  "SSS-NC-DAR-001",
			SeaInstrument:  "MS TruBlue 255",
			AirInstrument:  "Onset Hobo U20",
			OverlapStart:   start,
			OverlapEnd:     start.Add(1000 * time.Second),
			SamplingRateHz: 4,
			Peak: &Peak{
				Time:      start.Add(10 * time.Minute),
				ValueM:    1.5,
				TideClass: "Spring",
				MoonPhase: "Waning Crescent",
			},
			WaveCount: 12,
			Statistics: []Statistic{
				{Name: "H1/3", Value: 0.98, Unit: "m"},
				{Name: "Average Z Cross", Value: 31.4, Unit: "s"},
			},
			Spectrum: []stats.SpectralPoint{{FrequencyHz: 0, Power: 0.1}, {FrequencyHz: 0.5, Power: 0.4}, {FrequencyHz: 1, Power: 0.2}},
			Contour: []stats.ContourSlice{
				{StartMs: start.UnixMilli(), Spectrum: []stats.SpectralPoint{{FrequencyHz: 0, Power: 1}, {FrequencyHz: 1, Power: 2}}},
				{StartMs: start.UnixMilli() + 512000, Spectrum: []stats.SpectralPoint{{FrequencyHz: 0, Power: 3}, {FrequencyHz: 1, Power: 4}}},
			},
		},
		Unfiltered:       wl,
		StormTide:        tide,
		Atmospheric:      air,
		WaterLevelLimits: &Limits{Min: 0, Max: 1.2},
	}
}

func TestStatisticsFrom(t *testing.T) {
	if rows := StatisticsFrom(nil); rows != nil {
		t.Errorf("nil bundle gave %v", rows)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hatteras.xlsx")
	if err := WriteXLSX(path, testInput()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := []string{summarySheet, statisticsSheet, psdSheet, contourSheet}
	got := f.GetSheetList()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	cases := []struct {
		sheet, cell, want string
	}{
		{summarySheet, "B4", "hatteras"},
		{statisticsSheet, "A2", "H1/3"},
		{statisticsSheet, "B3", "31.4"},
		{psdSheet, "B3", "0.4"},
		{contourSheet, "C3", "4"},
	}
	for _, c := range cases {
		v, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatal(err)
		}
		if v != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, v, c.want)
		}
	}
}

func TestWriteXLSXWithoutStatistics(t *testing.T) {
	in := testInput()
	in.Summary.Statistics = nil
	in.Summary.Spectrum = nil
	in.Summary.Contour = nil

	b, err := BuildXLSX(in)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 {
		t.Errorf("sheets = %v, want only the summary", sheets)
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hatteras.pdf")
	if err := WritePDF(path, testInput()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", b[:min(len(b), 16)])
	}
}

func TestBuildPDFWithoutSeries(t *testing.T) {
	in := &Input{Summary: Summary{OutputName: "empty"}}
	if _, err := BuildPDF(in); err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	want := testInput().Summary
	for _, format := range []string{FormatMsgpack, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hatteras"+SidecarExtension(format))
			if err := WriteSidecar(path, &want, format); err != nil {
				t.Fatalf("WriteSidecar: %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			var got Summary
			if err := Decode(f, &got, format); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.RunID != want.RunID || got.Peak == nil || got.Peak.ValueM != want.Peak.ValueM {
				t.Errorf("got %+v", got)
			}
			if !got.OverlapStart.Equal(want.OverlapStart) {
				t.Errorf("OverlapStart = %v, want %v", got.OverlapStart, want.OverlapStart)
			}
			if len(got.Contour) != 2 || got.Contour[1].Spectrum[1].Power != 4 {
				t.Errorf("Contour = %+v", got.Contour)
			}
		})
	}

	if err := Encode(&bytes.Buffer{}, want, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
