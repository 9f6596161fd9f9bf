package weather

import "testing"

func TestCacheKeyFormat(t *testing.T) {
	got := CacheKey(40.7357, -74.1724)
	if got != "40.7357,-74.1724" {
		t.Errorf("CacheKey = %q, want \"40.7357,-74.1724\"", got)
	}
}

// Jitter below the rounding precision must collapse to the same key so GPS
// noise reuses one cache entry.
func TestCacheKeyIdempotentUnderJitter(t *testing.T) {
	base := CacheKey(40.7357, -74.1724)
	jittered := CacheKey(40.7357+0.00001, -74.1724)
	if base != jittered {
		t.Errorf("jittered key %q should equal base key %q", jittered, base)
	}

	moved := CacheKey(40.7358, -74.1724)
	if base == moved {
		t.Error("a full 4dp step should produce a distinct key")
	}
}

func TestPlaceCacheKey(t *testing.T) {
	p := Place{Lat: 40.73571, Lon: -74.17239}
	if p.CacheKey() != "40.7357,-74.1724" {
		t.Errorf("Place.CacheKey = %q", p.CacheKey())
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"f", Fahrenheit},
		{"F", Fahrenheit},
		{"fahrenheit", Fahrenheit},
		{"c", Celsius},
		{"celsius", Celsius},
		{"", Celsius},
		{"kelvin", Celsius},
	}
	for _, tt := range tests {
		if got := ParseUnit(tt.in); got != tt.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUnitToggle(t *testing.T) {
	if Celsius.Toggle() != Fahrenheit || Fahrenheit.Toggle() != Celsius {
		t.Error("Toggle should flip between the two units")
	}
}
