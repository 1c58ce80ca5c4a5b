package stats

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies one statistic the engine can produce.
// Kinds are bits so a set of them fits in a Selection.
type Kind uint16

const (
	// SignificantWaveHeight is H1/3, the mean of the highest third of waves.
	SignificantWaveHeight Kind = 1 << iota
	// TenthWaveHeight is H10%, the mean of the highest tenth of waves.
	TenthWaveHeight
	// HundredthWaveHeight is H1%, the mean of the highest hundredth of waves.
	HundredthWaveHeight
	MaxWaveHeight
	RMSWaveHeight
	// AverageZeroCrossPeriod is the mean time between upward zero crossings.
	AverageZeroCrossPeriod
	// PeakWavePeriod is the period at the spectral peak inside the wave band.
	PeakWavePeriod
	// SpectralWaveHeight is Hm0 = 4·sqrt(m0) over the wave band.
	SpectralWaveHeight
	// PSDContour produces the averaged power spectral density and its
	// time-resolved contour.
	PSDContour
)

var kindNames = map[Kind]string{
	SignificantWaveHeight:  "H1/3",
	TenthWaveHeight:        "H10%",
	HundredthWaveHeight:    "H1%",
	MaxWaveHeight:          "Hmax",
	RMSWaveHeight:          "RMS Wave Height",
	AverageZeroCrossPeriod: "Average Z Cross",
	PeakWavePeriod:         "Peak Wave Period",
	SpectralWaveHeight:     "Hm0",
	PSDContour:             "PSD Contour",
}

var allKinds = []Kind{
	SignificantWaveHeight,
	TenthWaveHeight,
	HundredthWaveHeight,
	MaxWaveHeight,
	RMSWaveHeight,
	AverageZeroCrossPeriod,
	PeakWavePeriod,
	SpectralWaveHeight,
	PSDContour,
}

// String returns the toggle name used in configuration and reports.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Unit returns the unit label a kind's scalar is reported in.
func (k Kind) Unit() string {
	switch k {
	case AverageZeroCrossPeriod, PeakWavePeriod:
		return "s"
	case PSDContour:
		return "m^2/Hz"
	default:
		return "m"
	}
}

// Selection is a set of statistic kinds.
type Selection uint16

// Has checks if a kind is in the set.
func (s Selection) Has(k Kind) bool {
	return uint16(s)&uint16(k) != 0
}

// Add adds a kind to the set.
func (s *Selection) Add(k Kind) {
	*s = Selection(uint16(*s) | uint16(k))
}

// Remove removes a kind from the set.
func (s *Selection) Remove(k Kind) {
	*s = Selection(uint16(*s) &^ uint16(k))
}

// IsEmpty returns true if nothing is selected.
func (s Selection) IsEmpty() bool {
	return s == 0
}

// List returns the selected kinds in a stable order.
func (s Selection) List() []Kind {
	var kinds []Kind
	for _, k := range allKinds {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s Selection) String() string {
	kinds := s.List()
	if len(kinds) == 0 {
		return "None"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

func (s Selection) needsWaves() bool {
	return s.Has(SignificantWaveHeight) || s.Has(TenthWaveHeight) || s.Has(HundredthWaveHeight) ||
		s.Has(MaxWaveHeight) || s.Has(RMSWaveHeight)
}

func (s Selection) needsSpectrum() bool {
	return s.Has(PSDContour) || s.Has(PeakWavePeriod) || s.Has(SpectralWaveHeight)
}

// ParseSelection converts named toggles into a Selection. Toggles that are
// false or absent are not computed; unknown names are an error.
func ParseSelection(toggles map[string]bool) (Selection, error) {
	var sel Selection
	var unknown []string
	for name, on := range toggles {
		k, ok := KindByName(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if on {
			sel.Add(k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return 0, fmt.Errorf("unknown statistics: %s", strings.Join(unknown, ", "))
	}
	return sel, nil
}

// KindByName looks up a kind by its toggle name.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
