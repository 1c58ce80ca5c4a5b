package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/stormtide/internal/archive"
	"github.com/chrissnell/stormtide/internal/instruments"
	"github.com/chrissnell/stormtide/internal/ledger"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/report"
	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/pkg/config"
)

var deployStart = time.Date(2015, 8, 24, 13, 0, 0, 0, time.UTC)

const psiPerDecibar = 1 / 0.689475729

// writeTruBlue writes a 4 Hz sea export covering [fromSec, toSec] after
// deployStart. level returns sea pressure in dbar at t seconds.
func writeTruBlue(t *testing.T, dir string, fromSec, toSec int, level func(sec float64) float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Serial Number,1511451\nSample Rate,4Hz\nID,Date,Time,Pressure(psi)\n")
	id := 1
	for ms := fromSec * 1000; ms <= toSec*1000; ms += 250 {
		ts := deployStart.Add(time.Duration(ms) * time.Millisecond)
		fmt.Fprintf(&b, "%d,%s,%s,%.8f\n", id, ts.Format("01/02/2006"), ts.Format("15:04:05.00"),
			level(float64(ms)/1000)*psiPerDecibar)
		id++
	}
	path := filepath.Join(dir, "sea.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeHobo writes a 1 Hz barometric export covering [fromSec, toSec].
func writeHobo(t *testing.T, dir string, fromSec, toSec int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("\"Plot Title: baro\"\n\"#\",\"Date Time, GMT+00:00\",\"Abs Pres, kPa\"\n")
	for sec := fromSec; sec <= toSec; sec++ {
		ts := deployStart.Add(time.Duration(sec) * time.Second)
		fmt.Fprintf(&b, "%d,%s,101.325\n", sec-fromSec+1, ts.Format("01/02/06 03:04:05 PM"))
	}
	path := filepath.Join(dir, "air.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(dir, seaFile, airFile string) *config.RunConfig {
	return &config.RunConfig{
		OutputName: "hatteras",
		OutputDir:  filepath.Join(dir, "out"),
		TimeZone:   "UTC",
		Datum:      "NAVD88",
		Salinity:   "Salt Water (> 30 ppt)",
		Sea: config.InstrumentConfig{
			File:          seaFile,
			Instrument:    instruments.TruBlue255,
			StationNumber: "SSS-NC-DAR-001",
			Latitude:      35.2,
			Longitude:     -75.5,
		},
		Air: config.InstrumentConfig{
			File:       airFile,
			Instrument: instruments.HoboU20,
			Latitude:   35.2,
			Longitude:  -75.5,
		},
		Statistics: map[string]bool{"H1/3": true},
		Spectral: config.SpectralConfig{
			SegmentLength:       256,
			Overlap:             128,
			LowCutHz:            0.045,
			HighCutHz:           1.0,
			ContourChunkSeconds: 1024,
		},
		Outputs: config.OutputsConfig{Formats: []string{report.FormatJSON}},
	}
}

func newTestRunner() *Runner {
	return NewRunner(zap.NewNop().Sugar(), archive.NewStore(archive.DefaultOptions()), nil)
}

func waves(sec float64) float64 {
	return 12.1325 + 0.5*math.Sin(2*math.Pi*sec/8)
}

func flat(float64) float64 {
	return 12.1325
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRunPartialOverlap(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeTruBlue(t, dir, 0, 1000, waves), writeHobo(t, dir, 500, 1500))
	cfg.Sea4Hz = true
	cfg.Outputs.Formats = []string{FormatXLSX, FormatPDF, report.FormatJSON, report.FormatMsgpack}
	cfg.Ledger.Path = filepath.Join(dir, "ledger.db")
	cfg.Metrics.TextfilePath = filepath.Join(dir, "stormtide.prom")

	res := newTestRunner().Run(context.Background(), cfg)
	if res.Codes() != [3]int{0, 0, outcome.CodeTrimmed} {
		t.Fatalf("codes = %v, want [0 0 1]; err = %v", res.Codes(), res.FirstError())
	}

	wantStart := deployStart.Add(500 * time.Second).UnixMilli()
	wantEnd := deployStart.Add(1000 * time.Second).UnixMilli()
	if res.Storm.Window.StartMs != wantStart || res.Storm.Window.EndMs != wantEnd {
		t.Errorf("overlap = %s, want [%d, %d]", res.Storm.Window, wantStart, wantEnd)
	}
	if got := res.Storm.SeaRange.Len(); got != 2001 {
		t.Errorf("sea overlap samples = %d, want 2001", got)
	}
	if got := res.Storm.AirRange.Len(); got != 501 {
		t.Errorf("air overlap samples = %d, want 501", got)
	}

	paths := NewPaths(cfg.OutputDir, cfg.OutputName)
	store := archive.NewStore(archive.DefaultOptions())
	for _, p := range []string{paths.Overlap(RoleSea), paths.Overlap(RoleAir)} {
		ts, err := store.Read(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if ts.Len() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
	air, err := store.Read(paths.Overlap(RoleAir))
	if err != nil {
		t.Fatal(err)
	}
	if !air.Meta.Reference || air.Meta.Variable != "air_pressure" {
		t.Errorf("air overlap metadata = %+v", air.Meta)
	}

	for _, p := range []string{
		paths.Unfiltered(), paths.StormTide(), paths.Workbook(), paths.PDF(),
		paths.Sidecar(report.FormatJSON), paths.Sidecar(report.FormatMsgpack),
	} {
		if !exists(p) {
			t.Errorf("%s was not written", p)
		}
	}

	h13, ok := res.Storm.Bundle.Scalar(stats.SignificantWaveHeight)
	if !ok {
		t.Fatal("H1/3 missing from bundle")
	}
	// 0.5 dbar of salt water is just under a metre peak to trough
	if math.Abs(h13-0.993) > 0.02 {
		t.Errorf("H1/3 = %v, want ~0.993", h13)
	}

	f, err := os.Open(paths.Sidecar(report.FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var summary report.Summary
	if err := report.Decode(f, &summary, report.FormatJSON); err != nil {
		t.Fatal(err)
	}
	if summary.RunID != res.RunID || summary.SeaInstrument != instruments.TruBlue255 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.CrossingCount < 3 || summary.WaveCount != summary.CrossingCount-1 {
		t.Errorf("summary crossings = %d, waves = %d", summary.CrossingCount, summary.WaveCount)
	}
	if summary.Peak == nil || summary.Peak.TideClass == "" {
		t.Errorf("summary peak = %+v", summary.Peak)
	}

	l, err := ledger.Open(context.Background(), cfg.Ledger.Path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	entry, err := l.Get(context.Background(), res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if entry.StormCode != outcome.CodeTrimmed || entry.OutputName != "hatteras" {
		t.Errorf("ledger entry = %+v", entry)
	}

	prom, err := os.ReadFile(cfg.Metrics.TextfilePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prom), `stormtide_results_total{code="1",subrun="storm"} 1`) {
		t.Errorf("metrics textfile missing storm result:\n%s", prom)
	}
}

func TestRunChronologyViolation(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeTruBlue(t, dir, 0, 100, flat), writeHobo(t, dir, 0, 100))
	cfg.DeploymentTime = "20150824 1300"
	cfg.RetrievalTime = "20150824 1200"

	res := newTestRunner().Run(context.Background(), cfg)
	want := [3]int{outcome.CodeChronology, outcome.CodeChronology, outcome.CodeChronology}
	if res.Codes() != want {
		t.Fatalf("codes = %v, want %v", res.Codes(), want)
	}
	if !errors.Is(res.Sea.Err, outcome.ErrChronology) {
		t.Errorf("sea error = %v", res.Sea.Err)
	}
	if res.Sea.State != StateFailed {
		t.Errorf("sea state = %s", res.Sea.State)
	}

	paths := NewPaths(cfg.OutputDir, cfg.OutputName)
	for _, role := range []Role{RoleSea, RoleAir} {
		if exists(paths.Archive(role)) {
			t.Errorf("%s archive written despite chronology violation", role)
		}
	}
}

func TestRunNoOverlap(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeTruBlue(t, dir, 0, 100, flat), writeHobo(t, dir, 200, 300))

	res := newTestRunner().Run(context.Background(), cfg)
	if res.Codes() != [3]int{0, 0, outcome.CodeNoOverlap} {
		t.Fatalf("codes = %v, want [0 0 4]; err = %v", res.Codes(), res.FirstError())
	}
	if outcome.KindOf(res.Storm.Err) != outcome.KindOverlap {
		t.Errorf("storm error kind = %s", outcome.KindOf(res.Storm.Err))
	}

	paths := NewPaths(cfg.OutputDir, cfg.OutputName)
	for _, p := range []string{paths.Overlap(RoleSea), paths.Overlap(RoleAir), paths.Unfiltered(), paths.StormTide()} {
		if exists(p) {
			t.Errorf("%s written without an overlap", p)
		}
	}
}

func TestRunInsufficientWaves(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, writeTruBlue(t, dir, 0, 600, flat), writeHobo(t, dir, 0, 600))
	cfg.Sea4Hz = true

	res := newTestRunner().Run(context.Background(), cfg)
	if res.StormCode != outcome.CodeUnexpected {
		t.Fatalf("storm code = %d, want 5", res.StormCode)
	}
	if outcome.KindOf(res.Storm.Err) != outcome.KindStatistics {
		t.Errorf("storm error kind = %s", outcome.KindOf(res.Storm.Err))
	}
	if !errors.Is(res.Storm.Err, outcome.ErrInsufficientWaves) {
		t.Errorf("storm error = %v, want ErrInsufficientWaves", res.Storm.Err)
	}

	paths := NewPaths(cfg.OutputDir, cfg.OutputName)
	for _, p := range []string{paths.Overlap(RoleSea), paths.Overlap(RoleAir), paths.Unfiltered(), paths.StormTide()} {
		if !exists(p) {
			t.Errorf("%s removed after statistics failure", p)
		}
	}

	f, err := os.Open(paths.Sidecar(report.FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var summary report.Summary
	if err := report.Decode(f, &summary, report.FormatJSON); err != nil {
		t.Fatal(err)
	}
	if summary.StatisticsError == "" {
		t.Error("summary does not carry the statistics error")
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	seaFile := writeTruBlue(t, dir, 0, 120, flat)

	badRow := filepath.Join(dir, "gappy.csv")
	if err := os.WriteFile(badRow, []byte(
		"ID,Date,Time,Pressure(psi)\n"+
			"1,08/24/2015,13:00:00.00,n/a\n"+
			"2,08/24/2015,13:00:00.25,14.7\n"+
			"3,08/24/2015,13:00:00.50,14.8\n"+
			"4,08/24/2015,13:00:00.75,14.6\n"), 0644); err != nil {
		t.Fatal(err)
	}
	unordered := filepath.Join(dir, "unordered.csv")
	if err := os.WriteFile(unordered, []byte(
		"ID,Date,Time,Pressure(psi)\n"+
			"1,08/24/2015,13:00:01.00,14.7\n"+
			"2,08/24/2015,13:00:00.00,14.7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	textFile := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textFile, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	job := func(input string) FileJob {
		return FileJob{
			Role:        RoleSea,
			InputPath:   input,
			Instrument:  instruments.TruBlue255,
			TimeZone:    "UTC",
			ArchivePath: filepath.Join(out, "x_sea.parquet"),
			ChoppedPath: filepath.Join(out, "x_sea_chop.parquet"),
		}
	}

	tests := []struct {
		name      string
		job       func() FileJob
		wantCode  int
		wantState State
		wantLen   int
	}{
		{
			name:      "full record",
			job:       func() FileJob { return job(seaFile) },
			wantCode:  outcome.CodeSuccess,
			wantState: StateDone,
			wantLen:   481,
		},
		{
			name: "good window",
			job: func() FileJob {
				j := job(seaFile)
				j.GoodStart = "20150824 1300"
				j.GoodEnd = "20150824 1301"
				return j
			},
			wantCode:  outcome.CodeSuccess,
			wantState: StateDone,
			wantLen:   241,
		},
		{
			name:      "bad rows",
			job:       func() FileJob { return job(badRow) },
			wantCode:  outcome.CodeTrimmed,
			wantState: StateDone,
			wantLen:   3,
		},
		{
			name:      "wrong file type",
			job:       func() FileJob { return job(textFile) },
			wantCode:  outcome.CodeBadFileType,
			wantState: StateFailed,
		},
		{
			name: "wrong file type with reversed dates",
			job: func() FileJob {
				j := job(textFile)
				j.DeploymentTime = "20151010 0000"
				j.RetrievalTime = "20151002 0000"
				return j
			},
			wantCode:  outcome.CodeBadFileType,
			wantState: StateFailed,
		},
		{
			name:      "records out of time order",
			job:       func() FileJob { return job(unordered) },
			wantCode:  outcome.CodeUnexpected,
			wantState: StateFailed,
		},
		{
			name: "good end before start",
			job: func() FileJob {
				j := job(seaFile)
				j.GoodStart = "20150824 1301"
				j.GoodEnd = "20150824 1300"
				return j
			},
			wantCode:  outcome.CodeChronology,
			wantState: StateFailed,
		},
		{
			name: "unknown zone",
			job: func() FileJob {
				j := job(seaFile)
				j.TimeZone = "Mars/Olympus_Mons"
				return j
			},
			wantCode:  outcome.CodeUnexpected,
			wantState: StateFailed,
		},
		{
			name: "malformed good start",
			job: func() FileJob {
				j := job(seaFile)
				j.GoodStart = "yesterday"
				return j
			},
			wantCode:  outcome.CodeUnexpected,
			wantState: StateFailed,
		},
		{
			name: "unknown instrument",
			job: func() FileJob {
				j := job(seaFile)
				j.Instrument = "Davis Vantage Pro2"
				return j
			},
			wantCode:  outcome.CodeUnexpected,
			wantState: StateFailed,
		},
	}

	r := newTestRunner()
	store := archive.NewStore(archive.DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.ProcessFile(context.Background(), tt.job())
			if res.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (err = %v)", res.Code, tt.wantCode, res.Err)
			}
			if res.State != tt.wantState {
				t.Errorf("state = %s, want %s", res.State, tt.wantState)
			}
			if tt.wantLen == 0 {
				return
			}
			chopped, err := store.Read(res.ChoppedPath)
			if err != nil {
				t.Fatal(err)
			}
			if chopped.Len() != tt.wantLen {
				t.Errorf("chopped length = %d, want %d", chopped.Len(), tt.wantLen)
			}
			if chopped.Meta.StationNumber != "" || chopped.Meta.InstrumentName != instruments.TruBlue255 {
				t.Errorf("chopped metadata = %+v", chopped.Meta)
			}
		})
	}
}

func TestProcessStormRejectsMissingArchive(t *testing.T) {
	dir := t.TempDir()
	paths := NewPaths(dir, "x")
	res := newTestRunner().ProcessStorm(context.Background(), StormJob{
		SeaPath: paths.Chopped(RoleSea),
		AirPath: filepath.Join(dir, "air.csv"),
		Paths:   paths,
	})
	if res.Code != outcome.CodeBadFileType {
		t.Errorf("code = %d, want %d (err = %v)", res.Code, outcome.CodeBadFileType, res.Err)
	}
	if !errors.Is(res.Err, outcome.ErrInvalidFileType) {
		t.Errorf("err = %v", res.Err)
	}
}

func TestStateString(t *testing.T) {
	if StateStatistics.String() != "STATISTICS" || State(99).String() != "UNKNOWN" {
		t.Errorf("unexpected state names %q %q", StateStatistics, State(99))
	}
}
