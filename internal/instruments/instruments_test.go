package instruments

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/stormtide/internal/dates"
	"github.com/chrissnell/stormtide/internal/outcome"
	"github.com/chrissnell/stormtide/internal/types"
)

const epsilon = 1e-9

const hoboExport = `"Plot Title: NCCAR12248"
"#","Date Time, GMT-04:00","Abs Pres, kPa","Temp, °C"
1,08/24/15 01:00:00 PM,101.325,25.1
2,08/24/15 01:00:30 PM,101.300,25.0

3,08/24/15 01:01:00 PM,101.250,24.9
`

const truBlueExport = `Serial Number,1511451
Sample Rate,4Hz
ID,Date,Time,Pressure(psi)
1,08/24/2015,13:00:00.00,14.7
2,08/24/2015,13:00:00.25,14.8
3,08/24/2015,13:00:00.50,n/a
4,08/24/2015,13:00:00.75,14.6
`

func utcParser(t *testing.T) *dates.Parser {
	t.Helper()
	p, err := dates.NewParser("UTC", false)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUnitToDecibar(t *testing.T) {
	tests := []struct {
		unit Unit
		in   float64
		want float64
	}{
		{Decibar, 10, 10},
		{PSI, 14.7, 10.1352932163},
		{Millibar, 1013.25, 10.1325},
		{Kilopascal, 101.325, 10.1325},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			if got := tt.unit.ToDecibar(tt.in); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ToDecibar(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		a, err := Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
			continue
		}
		if a.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, a.Name())
		}
	}
	if len(Names()) != 6 {
		t.Errorf("got %d instruments, want 6", len(Names()))
	}

	_, err := Lookup("Davis Vantage Pro2")
	if !errors.Is(err, outcome.ErrUnknownInstrument) {
		t.Errorf("unknown instrument error = %v, want ErrUnknownInstrument", err)
	}
}

func TestReadHobo(t *testing.T) {
	a, _ := Lookup(HoboU20)
	reading, err := a.Read(context.Background(), strings.NewReader(hoboExport), utcParser(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if reading.BadData {
		t.Error("BadData set for a clean export")
	}

	s := reading.Series
	if s.Len() != 3 {
		t.Fatalf("got %d samples, want 3", s.Len())
	}
	if s.First() != 1440421200000 {
		t.Errorf("first timestamp = %d, want 1440421200000", s.First())
	}
	if s.Samples[1].TimestampMs-s.Samples[0].TimestampMs != 30000 {
		t.Errorf("sample interval = %d ms, want 30000", s.Samples[1].TimestampMs-s.Samples[0].TimestampMs)
	}
	if math.Abs(s.Samples[0].Value-10.1325) > epsilon {
		t.Errorf("first value = %v dbar, want 10.1325", s.Samples[0].Value)
	}
	if s.Meta.InstrumentName != HoboU20 || s.Meta.Units != types.UnitsDecibar {
		t.Errorf("metadata = %+v", s.Meta)
	}
	if math.Abs(s.Meta.SamplingRateHz-1.0/30) > epsilon {
		t.Errorf("sampling rate = %v, want 1/30 Hz", s.Meta.SamplingRateHz)
	}
}

func TestReadTruBlueFlagsBadRows(t *testing.T) {
	a, _ := Lookup(TruBlue255)
	reading, err := a.Read(context.Background(), strings.NewReader(truBlueExport), utcParser(t))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reading.BadData {
		t.Error("BadData not set for an unparsable pressure")
	}

	s := reading.Series
	if s.Len() != 4 {
		t.Fatalf("got %d samples, want 4", s.Len())
	}
	wantQuality := []types.QualityFlag{types.QualityGood, types.QualityGood, types.QualityBad, types.QualityGood}
	for i, q := range wantQuality {
		if s.Samples[i].Quality != q {
			t.Errorf("sample %d quality = %v, want %v", i, s.Samples[i].Quality, q)
		}
	}
	if !math.IsNaN(s.Samples[2].Value) {
		t.Errorf("bad sample value = %v, want NaN", s.Samples[2].Value)
	}
	if got := s.Samples[3].TimestampMs - s.Samples[0].TimestampMs; got != 750 {
		t.Errorf("span = %d ms, want 750", got)
	}
	if math.Abs(s.Meta.SamplingRateHz-4) > epsilon {
		t.Errorf("sampling rate = %v, want 4 Hz", s.Meta.SamplingRateHz)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name       string
		instrument string
		input      string
		wantErr    error
	}{
		{
			name:       "missing header",
			instrument: TruBlue255,
			input:      "a,b,c\n1,2,3\n",
			wantErr:    ErrHeaderNotFound,
		},
		{
			name:       "malformed date",
			instrument: TruBlue255,
			input:      "ID,Date,Time,Pressure\n1,24/08/2015,13:00:00,14.7\n",
			wantErr:    outcome.ErrMalformedDate,
		},
		{
			name:       "out of order",
			instrument: TruBlue255,
			input:      "ID,Date,Time,Pressure\n1,08/24/2015,13:00:01,14.7\n2,08/24/2015,13:00:00,14.7\n",
			wantErr:    ErrUnorderedRecords,
		},
		{
			name:       "header only",
			instrument: HoboU20,
			input:      "#,Date Time,Abs Pres\n",
			wantErr:    outcome.ErrEmptySeries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := Lookup(tt.instrument)
			_, err := a.Read(context.Background(), strings.NewReader(tt.input), utcParser(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := Lookup(HoboU20)
	if _, err := a.Read(ctx, strings.NewReader(hoboExport), utcParser(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want context.Canceled", err)
	}
}

func TestCheckFileType(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"csv extension", write("sea.csv", "anything"), false},
		{"upper-case extension", write("SEA.CSV", "anything"), false},
		{"no extension delimited", write("sea", truBlueExport), false},
		{"no extension tab delimited", write("air", "a\tb\tc\n1\t2\t3\n4\t5\t6\n"), false},
		{"no extension prose", write("notes", "storm notes\nnothing tabular here\n"), true},
		{"binary", write("blob", "\x00\x01\x02,\x03"), true},
		{"wrong extension", write("sea.xlsx", "a,b\n1,2\n"), true},
		{"missing file", filepath.Join(dir, "missing"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFileType(tt.path)
			if tt.wantErr {
				if !errors.Is(err, outcome.ErrInvalidFileType) {
					t.Errorf("got %v, want ErrInvalidFileType", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
