package hail

import "math"

// Rain/hail reflectivity boundaries (dBZ).
const (
	reflLower = 40.0
	reflUpper = 50.0
	reflLimit = 100.0
)

// Hail kinetic energy coefficients, Witt et al. 1998.
const (
	keCoeff    = 5.0e-6
	keExponent = 0.084
)

// C-band correction, Brook et al. 2023.
const (
	cbandSlope     = 1.113
	cbandIntercept = -3.929
)

// ReflectivityWeight is the linear ramp from 0 at 40 dBZ to 1 at 50 dBZ.
// Missing reflectivity weighs 0.
func ReflectivityWeight(z float64) float64 {
	switch {
	case math.IsNaN(z), z <= reflLower:
		return 0
	case z >= reflUpper:
		return 1
	}
	return clamp((z-reflLower)/(reflUpper-reflLower), 0, 1)
}

// KineticEnergy returns the hail kinetic energy flux (Jm-2s-1) for reflectivity
// z in dBZ. z is limited to ±100 dBZ before the power law; the result is never
// negative and is 0 for missing reflectivity.
func KineticEnergy(z float64) float64 {
	w := ReflectivityWeight(z)
	if w == 0 {
		return 0
	}
	z = clamp(z, -reflLimit, reflLimit)
	return keCoeff * math.Pow(10, keExponent*z) * w
}

// TemperatureWeight is the linear ramp from 0 at the melt layer to 1 at the
// -20 °C layer for a height h (m AMSL).
func TemperatureWeight(h, melt, minus20 float64) float64 {
	switch {
	case math.IsNaN(h):
		return 0
	case h >= minus20:
		return 1
	case h <= melt:
		return 0
	}
	return clamp((h-melt)/(minus20-melt), 0, 1)
}

// CorrectCBand maps C-band reflectivity (dBZ) onto the S-band scale for hail.
func CorrectCBand(z float64) float64 {
	return cbandSlope*z + cbandIntercept
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
