package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/stormtide/internal/ledger"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/report"
	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/internal/storm"
	"github.com/chrissnell/stormtide/internal/types"
	"github.com/chrissnell/stormtide/pkg/config"
)

// Run executes the sea and air file sub-runs concurrently, then the storm
// sub-run on their chopped archives. The storm sub-run only starts when both
// file sub-runs succeeded; otherwise it reports the first failing file code.
func (r *Runner) Run(ctx context.Context, cfg *config.RunConfig) RunResult {
	res := RunResult{RunID: uuid.NewString()}
	started := r.now()
	logger := r.logger.With("run", res.RunID, "output", cfg.OutputName)
	logger.Infow("starting run", "sea", cfg.Sea.File, "air", cfg.Air.File)

	paths := NewPaths(cfg.OutputDir, cfg.OutputName)
	seaJob := fileJob(cfg, RoleSea, paths)
	airJob := fileJob(cfg, RoleAir, paths)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Sea = r.ProcessFile(gctx, seaJob)
		return nil
	})
	g.Go(func() error {
		res.Air = r.ProcessFile(gctx, airJob)
		return nil
	})
	_ = g.Wait()

	res.SeaCode = res.Sea.Code
	res.AirCode = res.Air.Code
	r.metrics.RecordResult(string(RoleSea), res.SeaCode)
	r.metrics.RecordResult(string(RoleAir), res.AirCode)

	switch {
	case res.Sea.Err != nil:
		res.Storm = skippedStorm(res.Sea)
	case res.Air.Err != nil:
		res.Storm = skippedStorm(res.Air)
	default:
		job, err := stormJob(cfg, res.RunID, paths)
		if err != nil {
			res.Storm = StormResult{Code: outcome.CodeOf(err), State: StateFailed, Err: err}
			break
		}
		job.SeaPath = res.Sea.ChoppedPath
		job.AirPath = res.Air.ChoppedPath
		res.Storm = r.ProcessStorm(ctx, job)
	}
	res.StormCode = res.Storm.Code
	r.metrics.RecordResult("storm", res.StormCode)

	finished := r.now()
	r.metrics.ObserveStage("run", finished.Sub(started))
	r.metrics.MarkFinished(finished)

	if cfg.Ledger.Path != "" {
		if err := r.record(ctx, cfg.Ledger.Path, res, cfg.OutputName, started); err != nil {
			logger.Warnw("could not record run in ledger", "path", cfg.Ledger.Path, "error", err)
		}
	}
	if cfg.Metrics.TextfilePath != "" {
		if err := r.metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warnw("could not write metrics textfile", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}

	logger.Infow("run finished",
		"sea", outcome.CodeName(res.SeaCode),
		"air", outcome.CodeName(res.AirCode),
		"storm", outcome.CodeName(res.StormCode),
		"elapsed", finished.Sub(started))
	return res
}

func skippedStorm(cause FileResult) StormResult {
	return StormResult{
		Code:  cause.Code,
		State: StateFailed,
		Err:   fmt.Errorf("%s file sub-run failed: %w", cause.Role, cause.Err),
	}
}

func (r *Runner) record(ctx context.Context, path string, res RunResult, outputName string, started time.Time) error {
	l, err := ledger.Open(ctx, path, r.logger)
	if err != nil {
		return err
	}
	defer l.Close()

	e := ledger.Entry{
		ID:         res.RunID,
		OutputName: outputName,
		StartedAt:  started,
		FinishedAt: r.now(),
		SeaCode:    res.SeaCode,
		AirCode:    res.AirCode,
		StormCode:  res.StormCode,
	}
	if err := res.FirstError(); err != nil {
		e.Detail = err.Error()
	}
	return l.Record(ctx, e)
}

func fileJob(cfg *config.RunConfig, role Role, paths Paths) FileJob {
	ic := cfg.Sea
	if role == RoleAir {
		ic = cfg.Air
	}

	meta := types.Metadata{
		StationNumber:    ic.StationNumber,
		InstrumentID:     ic.InstrumentID,
		Latitude:         ic.Latitude,
		Longitude:        ic.Longitude,
		SeaName:          cfg.SeaName,
		Datum:            cfg.Datum,
		Salinity:         cfg.Salinity,
		TimeZone:         cfg.TimeZone,
		DaylightSavings:  cfg.DaylightSavings,
		InitialOrificeM:  ic.InitialOrificeElevation,
		FinalOrificeM:    ic.FinalOrificeElevation,
		InitialLandSurfM: cfg.InitialLandSurfaceElevation,
		FinalLandSurfM:   cfg.FinalLandSurfaceElevation,
		CreatorName:      cfg.Creator.Name,
		CreatorEmail:     cfg.Creator.Email,
		CreatorURL:       cfg.Creator.URL,
	}

	return FileJob{
		Role:            role,
		InputPath:       ic.File,
		Instrument:      ic.Instrument,
		Meta:            meta,
		TimeZone:        cfg.TimeZone,
		DaylightSavings: cfg.DaylightSavings,
		DeploymentTime:  cfg.DeploymentTime,
		RetrievalTime:   cfg.RetrievalTime,
		GoodStart:       ic.GoodStart,
		GoodEnd:         ic.GoodEnd,
		ArchivePath:     paths.Archive(role),
		ChoppedPath:     paths.Chopped(role),
	}
}

func stormJob(cfg *config.RunConfig, runID string, paths Paths) (StormJob, error) {
	selection, err := stats.ParseSelection(cfg.Statistics)
	if err != nil {
		return StormJob{}, outcome.Validation(outcome.CodeUnexpected, "statistics", err)
	}

	return StormJob{
		RunID:      runID,
		OutputName: cfg.OutputName,
		Paths:      paths,
		Derive:     storm.Options{LowCutHz: cfg.Spectral.LowCutHz},
		Sea4Hz:     cfg.Sea4Hz,
		Selection:  selection,
		StatsOptions: stats.Options{
			SegmentLength:       cfg.Spectral.SegmentLength,
			Overlap:             cfg.Spectral.Overlap,
			LowCutHz:            cfg.Spectral.LowCutHz,
			HighCutHz:           cfg.Spectral.HighCutHz,
			ContourChunkSeconds: cfg.Spectral.ContourChunkSeconds,
		},
		Formats:          cfg.Outputs.Formats,
		WaterLevelLimits: limits(cfg.WaterLevelYLimits),
		BaroLimits:       limits(cfg.BaroYLimits),
	}, nil
}

func limits(l *config.YLimits) *report.Limits {
	if l == nil {
		return nil
	}
	return &report.Limits{Min: l.Min, Max: l.Max}
}
