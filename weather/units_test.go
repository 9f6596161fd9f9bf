package weather

import (
	"math"
	"testing"
)

func TestTemperatureConversion(t *testing.T) {
	tests := []struct {
		name    string
		celsius float64
		wantF   float64
	}{
		{"freezing point", 0, 32},
		{"room temperature", 20, 68},
		{"body temperature", 37, 98.6},
		{"below zero", -40, -40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CToF(tt.celsius)
			if math.Abs(got-tt.wantF) > 0.001 {
				t.Errorf("CToF(%v) = %v, want %v", tt.celsius, got, tt.wantF)
			}
			back := FToC(got)
			if math.Abs(back-tt.celsius) > 0.001 {
				t.Errorf("FToC(CToF(%v)) = %v, want %v", tt.celsius, back, tt.celsius)
			}
		})
	}
}

// Converting to Fahrenheit, re-rounding, and converting back must stay
// within one degree of the original rounded Celsius value.
func TestRoundTripWithinOneDegree(t *testing.T) {
	for c := -30.0; c <= 45.0; c += 0.7 {
		displayF := DisplayTemperature(c, Fahrenheit)
		back := FToC(float64(displayF))
		if math.Abs(back-c) > 1.0 {
			t.Errorf("round trip drifted more than 1 degree: %.2fC -> %dF -> %.2fC", c, displayF, back)
		}
	}
}

func TestDisplayTemperature(t *testing.T) {
	tests := []struct {
		celsius float64
		unit    Unit
		want    int
	}{
		{20, Celsius, 20},
		{20, Fahrenheit, 68},
		{20.4, Celsius, 20},
		{20.5, Celsius, 21},
		{-0.4, Celsius, 0},
		{0, Fahrenheit, 32},
	}

	for _, tt := range tests {
		if got := DisplayTemperature(tt.celsius, tt.unit); got != tt.want {
			t.Errorf("DisplayTemperature(%v, %s) = %d, want %d", tt.celsius, tt.unit, got, tt.want)
		}
	}
}

func TestMsToKmh(t *testing.T) {
	if got := MsToKmh(10); math.Abs(got-36) > 0.001 {
		t.Errorf("MsToKmh(10) = %v, want 36", got)
	}
}

func TestDisplayWind(t *testing.T) {
	if got := DisplayWind(15.4); got != "15 km/h" {
		t.Errorf("DisplayWind(15.4) = %q, want \"15 km/h\"", got)
	}
	if got := DisplayWind(math.NaN()); got != "—" {
		t.Errorf("DisplayWind(NaN) = %q, want dash", got)
	}
}

func TestUnitSuffix(t *testing.T) {
	if UnitSuffix(Celsius) != "°C" || UnitSuffix(Fahrenheit) != "°F" {
		t.Error("unexpected unit suffixes")
	}
}
