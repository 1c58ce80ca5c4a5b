package storm

import (
	"errors"
	"fmt"
	"strings"
)

// Water densities in kg/m³.
const (
	FreshWaterDensity    = 1000.0
	BrackishWaterDensity = 1012.5
	SaltWaterDensity     = 1027.0
)

// Gravity is standard gravity in m/s².
const Gravity = 9.80665

// Salinity labels accepted in run configuration.
const (
	SalinityFresh    = "Fresh Water (< .5 ppt)"
	SalinityBrackish = "Brackish Water (.5 - 30 ppt)"
	SalinitySalt     = "Salt Water (> 30 ppt)"
)

var ErrUnknownSalinity = errors.New("unknown salinity")

// Density returns the water density for a salinity label. Only the leading
// word of the label is significant.
func Density(salinity string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(salinity))
	switch {
	case strings.HasPrefix(s, "fresh"):
		return FreshWaterDensity, nil
	case strings.HasPrefix(s, "brackish"):
		return BrackishWaterDensity, nil
	case strings.HasPrefix(s, "salt"):
		return SaltWaterDensity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSalinity, salinity)
	}
}

// DecibarToMetres converts a pressure difference to a water column height.
func DecibarToMetres(dbar, density float64) float64 {
	return dbar * 10000 / (density * Gravity)
}
