package weather

import "time"

// Theme is the visual styling family a condition code maps to.
type Theme string

const (
	ThemeClear    Theme = "clear"
	ThemePartly   Theme = "partly"
	ThemeOvercast Theme = "overcast"
	ThemeRain     Theme = "rain"
	ThemeStorm    Theme = "storm"
	ThemeSnow     Theme = "snow"
	ThemeFog      Theme = "fog"
)

// conditionEntry pairs the human label and theme for a WMO weather code.
type conditionEntry struct {
	label string
	theme Theme
}

// wmoConditions is the fixed table of WMO weather interpretation codes used
// by Open-Meteo. Unknown codes fall back to a generic overcast entry.
var wmoConditions = map[int]conditionEntry{
	0:  {"Clear", ThemeClear},
	1:  {"Partly cloudy", ThemePartly},
	2:  {"Partly cloudy", ThemePartly},
	3:  {"Partly cloudy", ThemeOvercast},
	45: {"Fog", ThemeFog},
	48: {"Fog", ThemeFog},
	51: {"Drizzle", ThemeRain},
	53: {"Drizzle", ThemeRain},
	55: {"Drizzle", ThemeRain},
	56: {"Freezing drizzle", ThemeRain},
	57: {"Freezing drizzle", ThemeRain},
	61: {"Rain", ThemeRain},
	63: {"Rain", ThemeRain},
	65: {"Rain", ThemeRain},
	66: {"Freezing rain", ThemeRain},
	67: {"Freezing rain", ThemeRain},
	71: {"Snow", ThemeSnow},
	73: {"Snow", ThemeSnow},
	75: {"Snow", ThemeSnow},
	77: {"Snow grains", ThemeSnow},
	80: {"Rain showers", ThemeRain},
	81: {"Rain showers", ThemeRain},
	82: {"Rain showers", ThemeRain},
	85: {"Snow showers", ThemeSnow},
	86: {"Snow showers", ThemeSnow},
	95: {"Thunderstorm", ThemeStorm},
	96: {"Thunderstorm (hail)", ThemeStorm},
	99: {"Thunderstorm (hail)", ThemeStorm},
}

// ConditionLabel maps a provider condition code to its display label.
func ConditionLabel(code int) string {
	if e, ok := wmoConditions[code]; ok {
		return e.label
	}
	return "Weather"
}

// ConditionTheme maps a provider condition code to its visual theme.
func ConditionTheme(code int) Theme {
	if e, ok := wmoConditions[code]; ok {
		return e.theme
	}
	return ThemeOvercast
}

// IsNight reports whether the given moment falls outside the sunrise/sunset
// window. Callers should prefer the provider's own is_day flag when the
// snapshot carries one; this heuristic covers daily entries that don't.
func IsNight(at, sunrise, sunset time.Time) bool {
	if sunrise.IsZero() || sunset.IsZero() {
		return false
	}
	return at.Before(sunrise) || !at.Before(sunset)
}
