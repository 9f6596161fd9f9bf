package weather

import (
	"fmt"
	"math"
)

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9/5 + 32
}

// FToC converts Fahrenheit to Celsius.
func FToC(f float64) float64 {
	return (f - 32) * 5 / 9
}

// MsToKmh converts a wind speed reported in m/s to km/h.
func MsToKmh(ms float64) float64 {
	return ms * 3.6
}

// DisplayTemperature converts an internal Celsius value to the display unit,
// rounded to the nearest whole degree. Conversion happens at render time
// only; snapshots always store Celsius.
func DisplayTemperature(celsius float64, unit Unit) int {
	v := celsius
	if unit == Fahrenheit {
		v = CToF(celsius)
	}
	return int(math.Round(v))
}

// DisplayWind formats an internal km/h wind speed for display, rounded to
// the nearest whole unit.
func DisplayWind(kmh float64) string {
	if math.IsNaN(kmh) {
		return "—"
	}
	return fmt.Sprintf("%d km/h", int(math.Round(kmh)))
}

// UnitSuffix returns the degree suffix for the given unit.
func UnitSuffix(unit Unit) string {
	if unit == Fahrenheit {
		return "°F"
	}
	return "°C"
}
