// Package pipeline runs a storm deployment end to end: each instrument export
// is converted and chopped to its good data, then the pair is aligned,
// trimmed to its overlap and turned into water-level products, statistics and
// reports.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/stormtide/internal/archive"
	"github.com/chrissnell/stormtide/internal/dates"
	"github.com/chrissnell/stormtide/internal/instruments"
	"github.com/chrissnell/stormtide/internal/metrics"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/timeseries"
	"github.com/chrissnell/stormtide/internal/types"
)

// Runner executes file and storm sub-runs.
type Runner struct {
	logger  *zap.SugaredLogger
	store   *archive.Store
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewRunner creates a runner. A nil store uses the default archive options
// and a nil recorder gets a fresh one.
func NewRunner(logger *zap.SugaredLogger, store *archive.Store, rec *metrics.Recorder) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if store == nil {
		store = archive.NewStore(archive.DefaultOptions())
	}
	if rec == nil {
		rec = metrics.New()
	}
	return &Runner{logger: logger, store: store, metrics: rec, now: time.Now}
}

// Metrics returns the runner's recorder.
func (r *Runner) Metrics() *metrics.Recorder {
	return r.metrics
}

// fileBounds holds a job's parsed dates. Zero means unset.
type fileBounds struct {
	deployment int64
	retrieval  int64
	goodStart  int64
	goodEnd    int64
}

// ProcessFile converts one instrument export and chops it to its good-data
// window. The file type is checked first, then chronology, both before the
// input is parsed.
func (r *Runner) ProcessFile(ctx context.Context, job FileJob) FileResult {
	res := FileResult{Role: job.Role, State: StateStart, ArchivePath: job.ArchivePath, ChoppedPath: job.ChoppedPath}
	logger := r.logger.With("subrun", string(job.Role), "file", job.InputPath)
	started := r.now()

	fail := func(err error) FileResult {
		res.Code = outcome.CodeOf(err)
		res.State = StateFailed
		res.Err = err
		logger.Errorw("file sub-run failed", "state", res.State, "code", res.Code, "error", err)
		return res
	}
	advance := func(s State) {
		res.State = s
		logger.Debugw("file sub-run transition", "state", s)
	}

	if err := instruments.CheckFileType(job.InputPath); err != nil {
		return fail(outcome.Validation(outcome.CodeBadFileType, "file type", err))
	}
	parser, err := dates.NewParser(job.TimeZone, job.DaylightSavings)
	if err != nil {
		return fail(outcome.Validation(outcome.CodeUnexpected, "time zone", err))
	}
	bounds, err := parseBounds(parser, job)
	if err != nil {
		return fail(err)
	}

	adapter, err := instruments.Lookup(job.Instrument)
	if err != nil {
		return fail(outcome.Validation(outcome.CodeUnexpected, "instrument", err))
	}
	advance(StateValidated)

	reading, err := r.convert(ctx, adapter, parser, job.InputPath)
	if err != nil {
		return fail(err)
	}
	series := reading.Series
	series.Meta = mergeMeta(job.Meta, series.Meta)
	series.Meta.SourceFile = job.InputPath
	series.Meta.DeploymentMs = bounds.deployment
	series.Meta.RetrievalMs = bounds.retrieval
	series.Meta.Reference = job.Role.Reference()
	series.Meta.Variable = types.VariableName(job.Role.Reference())
	series.Meta.PressureType = types.SeaPressure
	if job.Role.Reference() {
		series.Meta.PressureType = types.AirPressure
	}

	if err := r.store.Write(job.ArchivePath, series); err != nil {
		return fail(outcome.IO("write archive", err))
	}
	res.BadData = reading.BadData
	advance(StateConverted)

	w := timeseries.TrimToQuality(series, timeseries.WindowFromBounds(series, bounds.goodStart, bounds.goodEnd))
	if !w.Valid() {
		return fail(outcome.Validation(outcome.CodeChronology, "good window",
			fmt.Errorf("%w: no usable samples in %s", outcome.ErrDegenerateRange, w)))
	}
	axis, err := r.store.GetTime(job.ArchivePath)
	if err != nil {
		return fail(outcome.IO("read archive time", err))
	}
	rng, err := timeseries.ResolveRange(axis, w.StartMs, w.EndMs)
	if err != nil {
		return fail(outcome.Validation(outcome.CodeChronology, "good window", err))
	}
	if err := r.store.Chop(job.ArchivePath, job.ChoppedPath, rng.Start, rng.End, job.Role.Reference()); err != nil {
		return fail(outcome.IO("chop archive", err))
	}
	res.Window = w
	res.Range = rng
	res.Samples = series.Len()
	advance(StateChopped)

	r.metrics.RecordSamples(string(job.Role), rng.Len(), series.Len()-rng.Len())
	r.metrics.ObserveStage("file_"+string(job.Role), r.now().Sub(started))

	if res.BadData {
		res.Code = outcome.CodeTrimmed
	}
	advance(StateDone)
	logger.Infow("file sub-run finished", "code", res.Code, "samples", res.Samples, "kept", rng.Len(), "window", w.String())
	return res
}

func (r *Runner) convert(ctx context.Context, adapter instruments.Adapter, parser *dates.Parser, path string) (*instruments.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, outcome.IO("open input", err)
	}
	defer f.Close()

	reading, err := adapter.Read(ctx, f, parser)
	if err != nil {
		return nil, outcome.IO(adapter.Name(), err)
	}
	return reading, nil
}

func parseBounds(parser *dates.Parser, job FileJob) (fileBounds, error) {
	var b fileBounds
	fields := []struct {
		name  string
		value string
		dst   *int64
	}{
		{"deployment time", job.DeploymentTime, &b.deployment},
		{"retrieval time", job.RetrievalTime, &b.retrieval},
		{"good start", job.GoodStart, &b.goodStart},
		{"good end", job.GoodEnd, &b.goodEnd},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		ms, err := parser.ParseMillis(f.value, dates.LayoutSTN)
		if err != nil {
			return b, outcome.Validation(outcome.CodeUnexpected, f.name, err)
		}
		*f.dst = ms
	}

	if job.DeploymentTime != "" && job.RetrievalTime != "" && b.retrieval <= b.deployment {
		return b, outcome.Validation(outcome.CodeChronology, "deployment window",
			fmt.Errorf("%w: retrieval %s is not after deployment %s", outcome.ErrChronology, job.RetrievalTime, job.DeploymentTime))
	}
	if job.GoodStart != "" && job.GoodEnd != "" && b.goodEnd <= b.goodStart {
		return b, outcome.Validation(outcome.CodeChronology, "good window",
			fmt.Errorf("%w: good end %s is not after good start %s", outcome.ErrChronology, job.GoodEnd, job.GoodStart))
	}
	return b, nil
}

// mergeMeta lays configured deployment metadata under what the adapter
// derived from the file.
func mergeMeta(configured, parsed types.Metadata) types.Metadata {
	m := configured
	m.InstrumentName = parsed.InstrumentName
	m.Units = parsed.Units
	m.SamplingRateHz = parsed.SamplingRateHz
	return m
}
