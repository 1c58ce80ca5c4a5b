package dates

import (
	"errors"
	"testing"
	"time"

	"github.com/chrissnell/stormtide/internal/outcome"
)

func TestParseMillis(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		tz       string
		dst      bool
		expected time.Time
	}{
		{
			name:     "utc",
			value:    "20151002 0000",
			tz:       "UTC",
			expected: time.Date(2015, 10, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "central daylight",
			value:    "20151002 0000",
			tz:       "US/Central",
			dst:      true,
			expected: time.Date(2015, 10, 2, 5, 0, 0, 0, time.UTC),
		},
		{
			name:     "central standard",
			value:    "20151210 0800",
			tz:       "US/Central",
			expected: time.Date(2015, 12, 10, 14, 0, 0, 0, time.UTC),
		},
		{
			// 01:30 happens twice on 2015-11-01 in US/Central
			name:     "repeated hour on daylight time",
			value:    "20151101 0130",
			tz:       "US/Central",
			dst:      true,
			expected: time.Date(2015, 11, 1, 6, 30, 0, 0, time.UTC),
		},
		{
			name:     "repeated hour on standard time",
			value:    "20151101 0130",
			tz:       "US/Central",
			dst:      false,
			expected: time.Date(2015, 11, 1, 7, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMillis(tt.value, LayoutSTN, tt.tz, tt.dst)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected.UnixMilli() {
				t.Errorf("ParseMillis = %s, expected %s",
					time.UnixMilli(got).UTC(), tt.expected)
			}
		})
	}
}

func TestParseMillisMalformed(t *testing.T) {
	if _, err := ParseMillis("2015-10-02", LayoutSTN, "UTC", false); !errors.Is(err, outcome.ErrMalformedDate) {
		t.Errorf("expected ErrMalformedDate for bad value, got %v", err)
	}
	if _, err := ParseMillis("20151002 0000", LayoutSTN, "Mars/Olympus", false); !errors.Is(err, outcome.ErrMalformedDate) {
		t.Errorf("expected ErrMalformedDate for bad zone, got %v", err)
	}
}
