package weather

import (
	"fmt"
	"time"
)

// PlaceSource identifies how a Place was resolved.
type PlaceSource string

const (
	SourceVenue    PlaceSource = "venue"    // geocoded venue address
	SourceDevice   PlaceSource = "device"   // device/browser geolocation
	SourceOverride PlaceSource = "override" // explicit coordinates from configuration or request
	SourceFallback PlaceSource = "fallback" // static configured fallback
)

// Place is a resolved geospatial anchor. It is immutable once constructed:
// a new address edit or geolocation result produces a new Place, never a
// mutation of an existing one.
type Place struct {
	Lat          float64     `json:"lat"`
	Lon          float64     `json:"lon"`
	TimezoneHint string      `json:"timezoneHint"` // IANA name or "auto"
	DisplayName  string      `json:"displayName"`
	Source       PlaceSource `json:"source"`
}

// CacheKey derives the cache key for this place. Coordinates are rounded to
// 4 decimal degrees (~11m) so minor GPS jitter maps to the same entry.
func (p Place) CacheKey() string {
	return CacheKey(p.Lat, p.Lon)
}

// CacheKey builds the canonical "{lat4dp},{lon4dp}" location key.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// CurrentConditions is the normalized current-conditions block of a snapshot.
// Temperatures are Celsius and wind speeds km/h internally, always.
type CurrentConditions struct {
	Time          time.Time `json:"time"`
	TemperatureC  float64   `json:"temperatureC"`
	FeelsLikeC    float64   `json:"feelsLikeC"`
	ConditionCode int       `json:"conditionCode"`
	HumidityPct   float64   `json:"humidityPct"`
	WindSpeedKmh  float64   `json:"windSpeedKmh"`
	IsDay         bool      `json:"isDay"`
}

// HourlyEntry is one hour of the normalized hourly series.
type HourlyEntry struct {
	Time          time.Time `json:"time"`
	TemperatureC  float64   `json:"temperatureC"`
	ConditionCode int       `json:"conditionCode"`
	FeelsLikeC    float64   `json:"feelsLikeC"`
	PrecipProbPct float64   `json:"precipProbPct"`
	WindSpeedKmh  float64   `json:"windSpeedKmh"`
}

// DailyEntry is one day of the normalized daily series.
type DailyEntry struct {
	Date          string    `json:"date"` // local calendar date, YYYY-MM-DD
	TempMaxC      float64   `json:"tempMaxC"`
	TempMinC      float64   `json:"tempMinC"`
	ConditionCode int       `json:"conditionCode"`
	Sunrise       time.Time `json:"sunrise"`
	Sunset        time.Time `json:"sunset"`
	PrecipSumMm   float64   `json:"precipSumMm"`
}

// ForecastSnapshot is one normalized forecast response at a point in time.
// Produced only by the fetcher; read-only downstream. Values are stored in
// internal units (Celsius, km/h) regardless of the display unit.
type ForecastSnapshot struct {
	FetchedAt time.Time         `json:"fetchedAt"`
	Current   CurrentConditions `json:"current"`
	Hourly    []HourlyEntry     `json:"hourly"`
	Daily     []DailyEntry      `json:"daily"`
}

// Age reports how old the snapshot is relative to now.
func (s *ForecastSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Unit is the process-wide temperature display preference.
type Unit string

const (
	Celsius    Unit = "c"
	Fahrenheit Unit = "f"
)

// ParseUnit normalizes a stored or user-supplied unit string. Anything that
// is not Fahrenheit is treated as Celsius.
func ParseUnit(s string) Unit {
	if s == string(Fahrenheit) || s == "F" || s == "fahrenheit" {
		return Fahrenheit
	}
	return Celsius
}

// Toggle returns the other unit.
func (u Unit) Toggle() Unit {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}
