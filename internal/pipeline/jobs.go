package pipeline

import (
	"github.com/chrissnell/stormtide/internal/report"
	"github.com/chrissnell/stormtide/internal/stats"
	"github.com/chrissnell/stormtide/internal/storm"
	"github.com/chrissnell/stormtide/internal/types"
)

// Role names which side of the pair a file sub-run handles.
type Role string

const (
	RoleSea Role = "sea"
	RoleAir Role = "air"
)

// Reference reports whether the role is the atmospheric reference channel.
func (r Role) Reference() bool {
	return r == RoleAir
}

// FileJob converts one instrument export into an archive and chops it to the
// good-data window.
type FileJob struct {
	Role       Role
	InputPath  string
	Instrument string

	// Meta is copied onto the converted series. Adapter-derived fields
	// (instrument name, units, sampling rate) take precedence.
	Meta types.Metadata

	TimeZone        string
	DaylightSavings bool

	// Deployment, retrieval and good-data bounds, dates.LayoutSTN. Empty
	// strings leave the bound unset.
	DeploymentTime string
	RetrievalTime  string
	GoodStart      string
	GoodEnd        string

	ArchivePath string
	ChoppedPath string
}

// FileResult is the outcome of a file sub-run.
type FileResult struct {
	Role        Role
	Code        int
	State       State
	ArchivePath string
	ChoppedPath string
	Window      types.ValidWindow
	Range       types.IndexRange
	Samples     int
	BadData     bool
	Err         error
}

// StormJob pairs two chopped archives into storm products.
type StormJob struct {
	RunID      string
	OutputName string
	SeaPath    string
	AirPath    string
	Paths      Paths

	Derive storm.Options

	// Statistics are computed only for high-frequency sea records.
	Sea4Hz       bool
	Selection    stats.Selection
	StatsOptions stats.Options

	Formats          []string
	WaterLevelLimits *report.Limits
	BaroLimits       *report.Limits
}

// StormResult is the outcome of the storm sub-run.
type StormResult struct {
	Code     int
	State    State
	Window   types.OverlapWindow
	SeaRange types.IndexRange
	AirRange types.IndexRange
	Trimmed  bool
	Products *storm.Products
	Bundle   *stats.Bundle
	Outputs  []string
	Err      error
}

// RunResult holds the three externally reported codes plus the detail
// behind them.
type RunResult struct {
	RunID     string
	SeaCode   int
	AirCode   int
	StormCode int

	Sea   FileResult
	Air   FileResult
	Storm StormResult
}

// Codes returns the sea, air and storm codes in reporting order.
func (r RunResult) Codes() [3]int {
	return [3]int{r.SeaCode, r.AirCode, r.StormCode}
}

// FirstError returns the first sub-run error, sea first.
func (r RunResult) FirstError() error {
	for _, err := range []error{r.Sea.Err, r.Air.Err, r.Storm.Err} {
		if err != nil {
			return err
		}
	}
	return nil
}
