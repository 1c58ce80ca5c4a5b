// Package instruments reads raw pressure logger exports into time series.
//
// The set of supported loggers is closed. Each one is described by a Format
// (where its header sits, how dates are written, which column holds pressure
// and in which unit) and looked up by the name users put in their run
// configuration.
package instruments

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/chrissnell/stormtide/internal/dates"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/types"
)

// Reading is the result of parsing one logger export.
type Reading struct {
	Series types.TimeSeries
	// BadData is set when any row's pressure could not be used.
	BadData bool
}

// Adapter converts one instrument's raw export into a pressure series in dbar.
type Adapter interface {
	Name() string
	Read(ctx context.Context, r io.Reader, parser *dates.Parser) (*Reading, error)
}

// Instrument names as they appear in run configuration.
const (
	LevelTroll   = "LevelTroll"
	RBRSolo      = "RBRSolo"
	WaveGuage    = "Wave Guage"
	USGSHomebrew = "USGS Homebrew"
	TruBlue255   = "MS TruBlue 255"
	HoboU20      = "Onset Hobo U20"
)

var registry = map[string]Format{
	LevelTroll: {
		HeaderMarker:   []string{"Date and Time"},
		DateLayout:     "01/02/2006 15:04:05",
		DateColumn:     0,
		TimeColumn:     -1,
		PressureColumn: 2,
		Unit:           PSI,
	},
	RBRSolo: {
		HeaderMarker:   []string{"Time"},
		DateLayout:     "2006-01-02 15:04:05.000",
		DateColumn:     0,
		TimeColumn:     -1,
		PressureColumn: 1,
		Unit:           Decibar,
	},
	WaveGuage: {
		HeaderMarker:   []string{"Date", "Time"},
		DateLayout:     "2006-01-02 15:04:05",
		DateColumn:     0,
		TimeColumn:     1,
		PressureColumn: 2,
		Unit:           PSI,
	},
	USGSHomebrew: {
		HeaderMarker:   []string{"TimeUTC"},
		DateLayout:     "2006-01-02 15:04:05",
		DateColumn:     0,
		TimeColumn:     -1,
		PressureColumn: 1,
		Unit:           Millibar,
	},
	TruBlue255: {
		HeaderMarker:   []string{"ID", "Date"},
		DateLayout:     "01/02/2006 15:04:05",
		DateColumn:     1,
		TimeColumn:     2,
		PressureColumn: 3,
		Unit:           PSI,
	},
	HoboU20: {
		HeaderMarker:   []string{"#"},
		DateLayout:     "01/02/06 03:04:05 PM",
		DateColumn:     1,
		TimeColumn:     -1,
		PressureColumn: 2,
		Unit:           Kilopascal,
	},
}

// Lookup returns the adapter registered under name.
func Lookup(name string) (Adapter, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", outcome.ErrUnknownInstrument, name)
	}
	return &csvAdapter{name: name, format: f}, nil
}

// Names lists every supported instrument, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
