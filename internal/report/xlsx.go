package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	statisticsSheet = "Statistics"
	psdSheet        = "PSD"
	contourSheet    = "PSD Contour"
)

// WriteXLSX renders the summary, statistics and spectra as a workbook.
func WriteXLSX(path string, in *Input) error {
	b, err := BuildXLSX(in)
	if err != nil {
		return err
	}
	return writeAtomic(path, b)
}

// BuildXLSX renders the workbook in memory.
func BuildXLSX(in *Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	writeSummarySheet(f, &in.Summary)

	if len(in.Summary.Statistics) > 0 {
		if _, err := f.NewSheet(statisticsSheet); err != nil {
			return nil, fmt.Errorf("add sheet: %w", err)
		}
		_ = f.SetSheetRow(statisticsSheet, "A1", &[]any{"Statistic", "Value", "Unit"})
		for i, s := range in.Summary.Statistics {
			_ = f.SetSheetRow(statisticsSheet, fmt.Sprintf("A%d", i+2), &[]any{s.Name, s.Value, s.Unit})
		}
	}

	if len(in.Summary.Spectrum) > 0 {
		if _, err := f.NewSheet(psdSheet); err != nil {
			return nil, fmt.Errorf("add sheet: %w", err)
		}
		_ = f.SetSheetRow(psdSheet, "A1", &[]any{"Frequency (Hz)", "Power (m^2/Hz)"})
		for i, p := range in.Summary.Spectrum {
			_ = f.SetSheetRow(psdSheet, fmt.Sprintf("A%d", i+2), &[]any{p.FrequencyHz, p.Power})
		}
	}

	if len(in.Summary.Contour) > 0 {
		if _, err := f.NewSheet(contourSheet); err != nil {
			return nil, fmt.Errorf("add sheet: %w", err)
		}
		writeContourSheet(f, &in.Summary)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, s *Summary) {
	rows := [][]any{
		{"Storm Tide Summary"},
		{},
		{"Run", s.RunID},
		{"Output", s.OutputName},
		{"Generated", formatTime(s.GeneratedAt)},
		{"STN Station", s.StationNumber},
		{"Sea", s.SeaName},
		{"Datum", s.Datum},
		{"Sea Instrument", s.SeaInstrument},
		{"Air Instrument", s.AirInstrument},
		{"Overlap Start", formatTime(s.OverlapStart)},
		{"Overlap End", formatTime(s.OverlapEnd)},
		{"Sampling Rate (Hz)", s.SamplingRateHz},
	}
	if s.Peak != nil {
		rows = append(rows,
			[]any{"Peak Storm Tide (m)", s.Peak.ValueM},
			[]any{"Peak Time", formatTime(s.Peak.Time)},
			[]any{"Tide", s.Peak.TideClass},
			[]any{"Moon Phase", s.Peak.MoonPhase},
			[]any{"Days To Syzygy", s.Peak.DaysToSyzygy},
		)
	}
	if s.WaveCount > 0 {
		rows = append(rows, []any{"Waves", s.WaveCount})
	}
	if s.CrossingCount > 0 {
		rows = append(rows, []any{"Upward Zero Crossings", s.CrossingCount})
	}
	if s.StatisticsError != "" {
		rows = append(rows, []any{"Statistics Error", s.StatisticsError})
	}

	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		row := r
		_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 40)
}

// writeContourSheet lays the contour out as frequency rows by chunk columns.
func writeContourSheet(f *excelize.File, s *Summary) {
	header := []any{"Frequency (Hz)"}
	for _, slice := range s.Contour {
		header = append(header, formatTime(msToTime(slice.StartMs)))
	}
	_ = f.SetSheetRow(contourSheet, "A1", &header)

	bins := len(s.Contour[0].Spectrum)
	for b := 0; b < bins; b++ {
		row := []any{s.Contour[0].Spectrum[b].FrequencyHz}
		for _, slice := range s.Contour {
			if b < len(slice.Spectrum) {
				row = append(row, slice.Spectrum[b].Power)
			} else {
				row = append(row, nil)
			}
		}
		_ = f.SetSheetRow(contourSheet, fmt.Sprintf("A%d", b+2), &row)
	}
}
