package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrissnell/stormtide/internal/archive"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/report"
	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/internal/storm"
	"github.com/chrissnell/stormtide/internal/timeseries"
	"github.com/chrissnell/stormtide/internal/types"
	"github.com/chrissnell/stormtide/pkg/tidephase"
)

// Report formats a storm sub-run can produce.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ProcessStorm aligns the chopped sea and air archives, trims both to their
// overlap and derives the storm products, statistics and reports.
//
// A statistics failure does not undo anything already written: archives and
// reports stay on disk and the failure is carried in the result.
func (r *Runner) ProcessStorm(ctx context.Context, job StormJob) StormResult {
	res := StormResult{State: StateStart}
	logger := r.logger.With("subrun", "storm", "sea", job.SeaPath, "air", job.AirPath)
	started := r.now()

	fail := func(err error) StormResult {
		res.Code = outcome.CodeOf(err)
		res.State = StateFailed
		res.Err = err
		logger.Errorw("storm sub-run failed", "state", res.State, "code", res.Code, "error", err)
		return res
	}
	advance := func(s State) {
		res.State = s
		logger.Debugw("storm sub-run transition", "state", s)
	}

	for _, p := range []string{job.SeaPath, job.AirPath} {
		if err := checkArchive(p); err != nil {
			return fail(outcome.Validation(outcome.CodeBadFileType, "storm input", err))
		}
	}
	advance(StateValidated)

	if err := ctx.Err(); err != nil {
		return fail(outcome.IO("storm", err))
	}
	sea, err := r.store.Read(job.SeaPath)
	if err != nil {
		return fail(outcome.IO("read sea archive", err))
	}
	air, err := r.store.Read(job.AirPath)
	if err != nil {
		return fail(outcome.IO("read air archive", err))
	}

	w, ok := timeseries.Align(timeseries.InstrumentWindow(sea), timeseries.InstrumentWindow(air))
	if !ok {
		return fail(outcome.NoOverlap("align"))
	}
	res.Window = w
	advance(StateAligned)

	seaChopped, seaRange, err := timeseries.Chop(sea, w)
	if err != nil {
		return fail(outcome.Stats("chop sea", err))
	}
	airChopped, airRange, err := timeseries.Chop(air, w)
	if err != nil {
		return fail(outcome.Stats("chop air", err))
	}
	if err := r.store.Chop(job.SeaPath, job.Paths.Overlap(RoleSea), seaRange.Start, seaRange.End, false); err != nil {
		return fail(outcome.IO("chop sea archive", err))
	}
	if err := r.store.Chop(job.AirPath, job.Paths.Overlap(RoleAir), airRange.Start, airRange.End, true); err != nil {
		return fail(outcome.IO("chop air archive", err))
	}
	res.SeaRange = seaRange
	res.AirRange = airRange
	res.Trimmed = seaRange.Len() < sea.Len() || airRange.Len() < air.Len()
	res.Outputs = append(res.Outputs, job.Paths.Overlap(RoleSea), job.Paths.Overlap(RoleAir))
	r.metrics.RecordSamples("storm_sea", seaRange.Len(), sea.Len()-seaRange.Len())
	r.metrics.RecordSamples("storm_air", airRange.Len(), air.Len()-airRange.Len())
	advance(StateChopped)

	products, err := storm.Derive(seaChopped, airChopped, job.Derive)
	if err != nil {
		return fail(outcome.Stats("derive water level", err))
	}
	if err := r.store.Write(job.Paths.Unfiltered(), products.Unfiltered); err != nil {
		return fail(outcome.IO("write unfiltered water level", err))
	}
	if err := r.store.Write(job.Paths.StormTide(), products.StormTide); err != nil {
		return fail(outcome.IO("write storm tide", err))
	}
	res.Products = products
	res.Outputs = append(res.Outputs, job.Paths.Unfiltered(), job.Paths.StormTide())
	r.metrics.SetPeakStormTide(products.Peak.ValueM)

	var statsErr error
	if job.Sea4Hz && !job.Selection.IsEmpty() {
		advance(StateStatistics)
		fs := products.Unfiltered.SamplingRateHz()
		bundle, err := stats.Compute(products.Unfiltered, fs, job.Selection, job.StatsOptions)
		if err != nil {
			statsErr = outcome.Stats("statistics", err)
			logger.Warnw("statistics failed", "error", err)
		} else {
			res.Bundle = bundle
		}
	}

	summary := r.summarize(job, w, products, res.Bundle, statsErr)
	written, err := r.writeReports(job, summary, products)
	res.Outputs = append(res.Outputs, written...)
	if err != nil {
		return fail(outcome.IO("write reports", err))
	}

	r.metrics.ObserveStage("storm", r.now().Sub(started))

	if statsErr != nil {
		return fail(statsErr)
	}
	if res.Trimmed {
		res.Code = outcome.CodeTrimmed
	}
	advance(StateDone)
	logger.Infow("storm sub-run finished", "code", res.Code, "window", w.String(),
		"peak_m", products.Peak.ValueM, "outputs", len(res.Outputs))
	return res
}

// checkArchive requires an existing regular file with the archive extension.
func checkArchive(path string) error {
	if !strings.EqualFold(filepath.Ext(path), archive.Extension) {
		return fmt.Errorf("%w: %s is not a %s archive", outcome.ErrInvalidFileType, filepath.Base(path), archive.Extension)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", outcome.ErrInvalidFileType, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", outcome.ErrInvalidFileType, path)
	}
	return nil
}

func (r *Runner) summarize(job StormJob, w types.OverlapWindow, p *storm.Products, b *stats.Bundle, statsErr error) report.Summary {
	meta := p.Unfiltered.Meta
	s := report.Summary{
		RunID:          job.RunID,
		OutputName:     job.OutputName,
		GeneratedAt:    r.now().UTC(),
		StationNumber:  meta.StationNumber,
		SeaName:        meta.SeaName,
		Datum:          meta.Datum,
		SeaInstrument:  meta.InstrumentName,
		AirInstrument:  p.Atmospheric.Meta.InstrumentName,
		OverlapStart:   time.UnixMilli(w.StartMs).UTC(),
		OverlapEnd:     time.UnixMilli(w.EndMs).UTC(),
		SamplingRateHz: p.Unfiltered.SamplingRateHz(),
	}

	peakAt := time.UnixMilli(p.Peak.TimestampMs).UTC()
	phase := tidephase.Calculate(peakAt)
	s.Peak = &report.Peak{
		Time:         peakAt,
		ValueM:       p.Peak.ValueM,
		TideClass:    phase.ClassName(),
		MoonPhase:    phase.MoonPhase,
		DaysToSyzygy: phase.DaysToSyzygy,
	}

	if b != nil {
		s.WaveCount = b.WaveCount()
		s.CrossingCount = b.CrossingCount()
		s.Statistics = report.StatisticsFrom(b)
		s.Spectrum = b.Spectrum()
		s.Contour = b.Contour()
	}
	if statsErr != nil {
		s.StatisticsError = statsErr.Error()
	}
	return s
}

func (r *Runner) writeReports(job StormJob, s report.Summary, p *storm.Products) ([]string, error) {
	in := &report.Input{
		Summary:          s,
		Unfiltered:       p.Unfiltered,
		StormTide:        p.StormTide,
		Atmospheric:      p.Atmospheric,
		WaterLevelLimits: job.WaterLevelLimits,
		BaroLimits:       job.BaroLimits,
	}

	var written []string
	for _, format := range job.Formats {
		var (
			path string
			err  error
		)
		switch format {
		case FormatXLSX:
			path = job.Paths.Workbook()
			err = report.WriteXLSX(path, in)
		case FormatPDF:
			path = job.Paths.PDF()
			err = report.WritePDF(path, in)
		case report.FormatMsgpack, report.FormatJSON:
			path = job.Paths.Sidecar(format)
			err = report.WriteSidecar(path, &in.Summary, format)
		default:
			err = fmt.Errorf("unknown report format %q", format)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", format, err)
		}
		written = append(written, path)
	}
	return written, nil
}
