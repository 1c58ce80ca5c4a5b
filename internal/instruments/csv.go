package instruments

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chrissnell/stormtide/internal/dates"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/types"
)

// Format describes the CSV layout of one logger's export.
type Format struct {
	// HeaderMarker is matched against the leading fields of each record;
	// data starts on the record after the first match.
	HeaderMarker []string
	DateLayout   string
	DateColumn   int
	// TimeColumn is joined to the date with a space when the logger splits
	// date and time into separate columns. -1 when unused.
	TimeColumn     int
	PressureColumn int
	Unit           Unit
}

// ErrHeaderNotFound is returned when an export never reaches its column header.
var ErrHeaderNotFound = errors.New("column header not found")

// ErrUnorderedRecords is returned when a record is timestamped before the one
// preceding it.
var ErrUnorderedRecords = errors.New("records are not in time order")

const ctxCheckInterval = 4096

type csvAdapter struct {
	name   string
	format Format
}

func (a *csvAdapter) Name() string { return a.name }

func (a *csvAdapter) Read(ctx context.Context, r io.Reader, parser *dates.Parser) (*Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	if err := a.skipToHeader(cr); err != nil {
		return nil, err
	}

	reading := &Reading{
		Series: types.TimeSeries{
			Meta: types.Metadata{
				InstrumentName: a.name,
				Units:          types.UnitsDecibar,
			},
		},
	}

	var prev int64
	for row := 0; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read record: %w", a.name, err)
		}
		if blank(record) {
			continue
		}

		line, _ := cr.FieldPos(0)
		ts, err := a.timestamp(record, parser)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", a.name, line, err)
		}
		if len(reading.Series.Samples) > 0 && ts < prev {
			return nil, fmt.Errorf("%s: line %d: %w", a.name, line, ErrUnorderedRecords)
		}
		prev = ts

		sample := types.Sample{TimestampMs: ts, Quality: types.QualityGood}
		if v, ok := a.pressure(record); ok {
			sample.Value = a.format.Unit.ToDecibar(v)
		} else {
			sample.Value = math.NaN()
			sample.Quality = types.QualityBad
			reading.BadData = true
		}
		reading.Series.Samples = append(reading.Series.Samples, sample)
	}

	if len(reading.Series.Samples) == 0 {
		return nil, fmt.Errorf("%s: %w", a.name, outcome.ErrEmptySeries)
	}
	reading.Series.Meta.SamplingRateHz = reading.Series.SamplingRateHz()
	return reading, nil
}

func (a *csvAdapter) skipToHeader(cr *csv.Reader) error {
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return fmt.Errorf("%s: %w (expected %q)", a.name, ErrHeaderNotFound, strings.Join(a.format.HeaderMarker, ","))
		}
		if err != nil {
			return fmt.Errorf("%s: read header: %w", a.name, err)
		}
		if a.isHeader(record) {
			return nil
		}
	}
}

func (a *csvAdapter) isHeader(record []string) bool {
	if len(record) < len(a.format.HeaderMarker) {
		return false
	}
	for i, want := range a.format.HeaderMarker {
		if !strings.EqualFold(strings.TrimSpace(record[i]), want) {
			return false
		}
	}
	return true
}

func (a *csvAdapter) timestamp(record []string, parser *dates.Parser) (int64, error) {
	f := a.format
	if f.DateColumn >= len(record) {
		return 0, fmt.Errorf("%w: missing date column %d", outcome.ErrMalformedDate, f.DateColumn)
	}
	value := strings.TrimSpace(record[f.DateColumn])
	if f.TimeColumn >= 0 {
		if f.TimeColumn >= len(record) {
			return 0, fmt.Errorf("%w: missing time column %d", outcome.ErrMalformedDate, f.TimeColumn)
		}
		value += " " + strings.TrimSpace(record[f.TimeColumn])
	}
	return parser.ParseMillis(value, f.DateLayout)
}

func (a *csvAdapter) pressure(record []string) (float64, bool) {
	if a.format.PressureColumn >= len(record) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[a.format.PressureColumn]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
