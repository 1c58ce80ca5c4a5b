// Package tidephase classifies an instant by where it falls in the
// spring/neap tidal cycle, from the Sun-Moon elongation and the distance to
// the nearest new or full moon.
package tidephase

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
)

// SynodicMonth is the mean lunation length in days.
const SynodicMonth = 29.530588853

// Tide classes.
type Class int

const (
	Intermediate Class = iota
	Spring
	Neap
)

func (c Class) String() string {
	switch c {
	case Spring:
		return "Spring"
	case Neap:
		return "Neap"
	default:
		return "Intermediate"
	}
}

// Day thresholds from the nearest syzygy. A quarter moon sits about 7.4
// days from one.
const (
	springWithinDays = 2.5
	neapBeyondDays   = 4.9
)

// Phase describes the lunar forcing at an instant.
type Phase struct {
	Elongation   float64   `json:"elongation_deg"`
	Illumination float64   `json:"illumination"`
	MoonPhase    string    `json:"moon_phase"`
	Syzygy       time.Time `json:"nearest_syzygy"`
	DaysToSyzygy float64   `json:"days_to_syzygy"`
	Class        Class     `json:"class"`
}

// ClassName returns the tide class as a string.
func (p Phase) ClassName() string {
	return p.Class.String()
}

// Calculate returns the tidal phase at t.
func Calculate(t time.Time) Phase {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	elong := normalize(moonLongitude(T) - sunLongitude(T))
	illum := (1 - math.Cos(rad(elong))) / 2

	year := 2000 + (jd-2451545.0)/365.25
	syzygy := nearest(jd, moonphase.New(year), moonphase.Full(year))
	days := math.Abs(jd - syzygy)

	p := Phase{
		Elongation:   elong,
		Illumination: illum,
		MoonPhase:    moonPhaseName(illum, elong < 180),
		Syzygy:       julian.JDToTime(syzygy).Round(time.Minute),
		DaysToSyzygy: days,
	}
	switch {
	case days <= springWithinDays:
		p.Class = Spring
	case days >= neapBeyondDays:
		p.Class = Neap
	}
	return p
}

func nearest(jd float64, candidates ...float64) float64 {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if math.Abs(jd-c) < math.Abs(jd-best) {
			best = c
		}
	}
	return best
}

func moonPhaseName(illum float64, waxing bool) string {
	switch {
	case illum < 0.01:
		return "New Moon"
	case illum > 0.99:
		return "Full Moon"
	case illum >= 0.49 && illum <= 0.51:
		if waxing {
			return "First Quarter"
		}
		return "Third Quarter"
	case illum < 0.5:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// sunLongitude is the Sun's apparent ecliptic longitude in degrees, low precision.
func sunLongitude(T float64) float64 {
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T
	M := rad(normalize(357.52911 + 35999.05029*T - 0.0001537*T*T))
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(M) +
		(0.019993-0.000101*T)*math.Sin(2*M) +
		0.000289*math.Sin(3*M)
	return normalize(L0 + C)
}

// moonLongitude keeps the five largest periodic terms.
func moonLongitude(T float64) float64 {
	T2, T3, T4 := T*T, T*T*T, T*T*T*T
	L := 218.3164477 + 481267.88123421*T - 0.0015786*T2 + T3/538841 - T4/65194000
	D := rad(normalize(297.8501921 + 445267.1114034*T - 0.0018819*T2 + T3/545868 - T4/113065000))
	M := rad(normalize(134.9633964 + 477198.8675055*T + 0.0087414*T2 + T3/69699 - T4/14712000))

	return normalize(L +
		6.289*math.Sin(M) +
		1.274*math.Sin(2*D-M) +
		0.658*math.Sin(2*D) +
		0.214*math.Sin(2*M) +
		0.110*math.Sin(D))
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}
