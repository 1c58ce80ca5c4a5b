// Package dates parses instrument and operator date strings into epoch
// milliseconds in a named time zone.
package dates

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/chrissnell/stormtide/internal/outcome"
)

// LayoutSTN is the layout operators use for deployment, retrieval and
// good-data boundaries ("20151002 0000").
const LayoutSTN = "20060102 1504"

// Parser converts wall-clock strings recorded in one zone.
type Parser struct {
	loc *time.Location
	dst bool
}

// NewParser loads the named zone. dst states whether the recorded wall clock
// was on daylight time; it only matters for the repeated hour at the end of
// daylight saving.
func NewParser(tzName string, dst bool) (*Parser, error) {
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q: %v", outcome.ErrMalformedDate, tzName, err)
	}
	return &Parser{loc: loc, dst: dst}, nil
}

// Location returns the parser's zone.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// ParseMillis parses value with the given layout.
func (p *Parser) ParseMillis(value, layout string) (int64, error) {
	t, err := p.Parse(value, layout)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// Parse parses value with the given layout, resolving an ambiguous wall
// clock toward the requested daylight-saving state.
func (p *Parser) Parse(value, layout string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", outcome.ErrMalformedDate, value, err)
	}

	if t.IsDST() == p.dst {
		return t, nil
	}
	for _, shift := range []time.Duration{-time.Hour, time.Hour} {
		alt := t.Add(shift)
		if alt.IsDST() == p.dst && sameWallClock(alt, t) {
			return alt, nil
		}
	}
	return t, nil
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

// ParseMillis is a one-shot helper for callers parsing a single value.
func ParseMillis(value, layout, tzName string, dst bool) (int64, error) {
	p, err := NewParser(tzName, dst)
	if err != nil {
		return 0, err
	}
	return p.ParseMillis(value, layout)
}
