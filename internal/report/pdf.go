package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/chrissnell/stormtide/internal/types"
)

// Charts draw at most this many points per series.
const maxChartPoints = 1500

type rgb struct{ r, g, b int }

var (
	colorUnfiltered = rgb{120, 160, 210}
	colorStormTide  = rgb{10, 50, 140}
	colorPressure   = rgb{170, 40, 40}
	colorSpectrum   = rgb{20, 110, 60}
)

type chartSeries struct {
	label  string
	xs, ys []float64
	color  rgb
}

type chart struct {
	x, y, w, h float64
	title      string
	yUnit      string
	xLabel     func(float64) string
	series     []chartSeries
	limits     *Limits
}

// WritePDF renders the summary and the water-level, pressure and spectrum charts.
func WritePDF(path string, in *Input) error {
	b, err := BuildPDF(in)
	if err != nil {
		return err
	}
	return writeAtomic(path, b)
}

// BuildPDF renders the PDF in memory.
func BuildPDF(in *Input) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Storm Tide: %s", in.Summary.OutputName), false)

	pdf.AddPage()
	writeSummaryPage(pdf, &in.Summary)

	if in.Unfiltered.Len() > 0 || in.Atmospheric.Len() > 0 {
		pdf.AddPage()
		drawChart(pdf, chart{
			x: 20, y: 15, w: 257, h: 80,
			title:  "Storm Tide Water Level",
			yUnit:  "m",
			xLabel: timeLabel,
			series: []chartSeries{
				seriesOf("Unfiltered", in.Unfiltered, colorUnfiltered),
				seriesOf("Storm Tide", in.StormTide, colorStormTide),
			},
			limits: in.WaterLevelLimits,
		})
		drawChart(pdf, chart{
			x: 20, y: 112, w: 257, h: 80,
			title:  "Atmospheric Pressure",
			yUnit:  "dbar",
			xLabel: timeLabel,
			series: []chartSeries{seriesOf("Air Pressure", in.Atmospheric, colorPressure)},
			limits: in.BaroLimits,
		})
	}

	if len(in.Summary.Spectrum) > 0 {
		pdf.AddPage()
		s := chartSeries{label: "PSD", color: colorSpectrum}
		for _, p := range in.Summary.Spectrum {
			s.xs = append(s.xs, p.FrequencyHz)
			s.ys = append(s.ys, p.Power)
		}
		drawChart(pdf, chart{
			x: 20, y: 15, w: 257, h: 170,
			title:  "Power Spectral Density",
			yUnit:  "m^2/Hz",
			xLabel: func(v float64) string { return fmt.Sprintf("%.2f Hz", v) },
			series: []chartSeries{s},
		})
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummaryPage(pdf *gofpdf.Fpdf, s *Summary) {
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Storm Tide Summary: %s", s.OutputName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Run: %s", s.RunID),
		fmt.Sprintf("Generated: %s", formatTime(s.GeneratedAt)),
		fmt.Sprintf("STN Station: %s", s.StationNumber),
		fmt.Sprintf("Sea: %s  Datum: %s", s.SeaName, s.Datum),
		fmt.Sprintf("Instruments: %s (sea), %s (air)", s.SeaInstrument, s.AirInstrument),
		fmt.Sprintf("Overlap: %s to %s", formatTime(s.OverlapStart), formatTime(s.OverlapEnd)),
		fmt.Sprintf("Sampling Rate: %.3f Hz", s.SamplingRateHz),
	}
	if s.Peak != nil {
		lines = append(lines,
			fmt.Sprintf("Peak Storm Tide: %.3f m at %s", s.Peak.ValueM, formatTime(s.Peak.Time)),
			fmt.Sprintf("Tide: %s (%s, %.1f days from syzygy)", s.Peak.TideClass, s.Peak.MoonPhase, s.Peak.DaysToSyzygy),
		)
	}
	if s.StatisticsError != "" {
		lines = append(lines, fmt.Sprintf("Statistics failed: %s", s.StatisticsError))
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(6)
	}

	if len(s.Statistics) == 0 {
		return
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Statistic", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Value", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Unit", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, st := range s.Statistics {
		pdf.CellFormat(60, 6, st.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.4f", st.Value), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, st.Unit, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
}

func seriesOf(label string, ts types.TimeSeries, color rgb) chartSeries {
	s := chartSeries{label: label, color: color}
	stride := max(1, ts.Len()/maxChartPoints)
	for i := 0; i < ts.Len(); i += stride {
		s.xs = append(s.xs, float64(ts.Samples[i].TimestampMs))
		s.ys = append(s.ys, ts.Samples[i].Value)
	}
	return s
}

func timeLabel(ms float64) string {
	return msToTime(int64(ms)).Format("01/02 15:04")
}

// bounds returns the data extent of every finite point.
func bounds(series []chartSeries) (xMin, xMax, yMin, yMax float64, ok bool) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for i := range s.xs {
			if math.IsNaN(s.ys[i]) || math.IsInf(s.ys[i], 0) {
				continue
			}
			xMin, xMax = math.Min(xMin, s.xs[i]), math.Max(xMax, s.xs[i])
			yMin, yMax = math.Min(yMin, s.ys[i]), math.Max(yMax, s.ys[i])
			ok = true
		}
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	if xMax == xMin {
		xMax = xMin + 1
	}
	if yMax == yMin {
		yMin, yMax = yMin-0.5, yMax+0.5
	}
	return xMin, xMax, yMin, yMax, true
}

func drawChart(pdf *gofpdf.Fpdf, c chart) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Text(c.x, c.y-3, c.title)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(c.x, c.y, c.w, c.h, "D")

	xMin, xMax, yMin, yMax, ok := bounds(c.series)
	if !ok {
		pdf.SetFont("Arial", "", 9)
		pdf.Text(c.x+4, c.y+8, "no data")
		return
	}
	if c.limits != nil {
		yMin, yMax = c.limits.Min, c.limits.Max
	}

	px := func(v float64) float64 { return c.x + (v-xMin)/(xMax-xMin)*c.w }
	py := func(v float64) float64 { return c.y + c.h - (v-yMin)/(yMax-yMin)*c.h }

	pdf.SetFont("Arial", "", 8)
	pdf.Text(c.x-18, c.y+3, fmt.Sprintf("%.2f", yMax))
	pdf.Text(c.x-18, c.y+c.h, fmt.Sprintf("%.2f", yMin))
	pdf.Text(c.x-18, c.y+c.h/2, c.yUnit)
	pdf.Text(c.x, c.y+c.h+5, c.xLabel(xMin))
	pdf.Text(c.x+c.w-22, c.y+c.h+5, c.xLabel(xMax))

	pdf.ClipRect(c.x, c.y, c.w, c.h, false)
	pdf.SetLineWidth(0.3)
	for _, s := range c.series {
		pdf.SetDrawColor(s.color.r, s.color.g, s.color.b)
		for i := 1; i < len(s.xs); i++ {
			y0, y1 := s.ys[i-1], s.ys[i]
			if math.IsNaN(y0) || math.IsNaN(y1) {
				continue
			}
			pdf.Line(px(s.xs[i-1]), py(y0), px(s.xs[i]), py(y1))
		}
	}
	pdf.ClipEnd()

	legendX := c.x + 4
	for _, s := range c.series {
		if len(s.xs) == 0 {
			continue
		}
		pdf.SetDrawColor(s.color.r, s.color.g, s.color.b)
		pdf.Line(legendX, c.y+5, legendX+6, c.y+5)
		pdf.Text(legendX+8, c.y+6, s.label)
		legendX += 40
	}
}
