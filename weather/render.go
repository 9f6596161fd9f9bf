package weather

import (
	"fmt"
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/schedule"
)

const (
	hourlyStripLen = 12
	dailyListLen   = 5

	unavailable = "—"
)

// HourView is one cell of the hourly strip, fully formatted for display.
type HourView struct {
	Label         string `json:"label"` // "3 PM"
	Temperature   string `json:"temperature"`
	Condition     string `json:"condition"`
	Theme         Theme  `json:"theme"`
	PrecipProbPct int    `json:"precipProbPct"`
}

// DayView is one row of the daily outlook list.
type DayView struct {
	Label     string `json:"label"` // "Sat 9/6"
	High      string `json:"high"`
	Low       string `json:"low"`
	Condition string `json:"condition"`
	Theme     Theme  `json:"theme"`
}

// EventView is one row of the multi-event outlook. Unavailable values
// render as a dash instead of dropping the row.
type EventView struct {
	Label      string `json:"label"`
	Date       string `json:"date"`
	High       string `json:"high"`
	Low        string `json:"low"`
	Condition  string `json:"condition"`
	PrecipProb string `json:"precipProb"`
}

// PanelView is the complete render payload for one forecast panel. Every
// numeric value is already converted to the display unit and formatted;
// the consumer applies no further logic.
type PanelView struct {
	Place     string      `json:"place"`
	Source    PlaceSource `json:"source"`
	Available bool        `json:"available"`

	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feelsLike"`
	Condition   string `json:"condition"`
	Theme       Theme  `json:"theme"`
	Night       bool   `json:"night"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Sunrise     string `json:"sunrise"`
	Sunset      string `json:"sunset"`

	Mode   AnchorMode  `json:"mode"`
	Hourly []HourView  `json:"hourly,omitempty"`
	Daily  []DayView   `json:"daily,omitempty"`
	Events []EventView `json:"events,omitempty"`

	Stale   bool   `json:"stale"`
	Updated string `json:"updated"`
}

// Render maps a snapshot onto the display payload for one panel. A nil
// snapshot produces the explicit "forecast unavailable" shape; it is the
// only case where Available is false.
func Render(place Place, snapshot *ForecastSnapshot, events []schedule.Event, unit Unit, stale bool) PanelView {
	view := PanelView{
		Place:  place.DisplayName,
		Source: place.Source,
		Stale:  stale,
	}
	if snapshot == nil {
		view.Condition = "Forecast unavailable"
		view.Theme = ThemeOvercast
		return view
	}
	view.Available = true

	cur := snapshot.Current
	view.Temperature = formatTemp(cur.TemperatureC, unit)
	view.FeelsLike = formatTemp(cur.FeelsLikeC, unit)
	view.Condition = ConditionLabel(cur.ConditionCode)
	view.Theme = ConditionTheme(cur.ConditionCode)
	view.Night = !cur.IsDay
	view.Humidity = fmt.Sprintf("%d%%", int(cur.HumidityPct))
	view.Wind = DisplayWind(cur.WindSpeedKmh)
	view.Updated = "Updated " + localClock(snapshot, snapshot.FetchedAt)

	if len(snapshot.Daily) > 0 {
		view.Sunrise = clockOrDash(snapshot.Daily[0].Sunrise)
		view.Sunset = clockOrDash(snapshot.Daily[0].Sunset)
	} else {
		view.Sunrise, view.Sunset = unavailable, unavailable
	}

	anchored := Anchor(snapshot, events)
	view.Mode = anchored.Mode

	switch anchored.Mode {
	case AnchorEventHour:
		view.Hourly = hourViews(anchored.HourlyWindow, unit)
	case AnchorMultiEvent:
		view.Events = eventViews(anchored.Events, unit)
	case AnchorEventDay:
		if anchored.Day != nil {
			view.Daily = []DayView{dayView(*anchored.Day, unit)}
		}
	}

	// The ambient hourly strip renders in every mode that did not anchor
	// its own hourly window, multi-event included: the event rows replace
	// the daily outlook list only, and the strip keeps showing the next
	// hours at the venue. The strip and outlook also keep the panel
	// useful when the event date is out of horizon.
	if view.Hourly == nil {
		view.Hourly = hourViews(upcomingHours(snapshot), unit)
	}
	if view.Daily == nil && anchored.Mode != AnchorMultiEvent {
		view.Daily = dayViews(upcomingDays(snapshot), unit)
	}
	return view
}

// upcomingHours slices the hourly series to the strip starting at the hour
// nearest the current conditions timestamp.
func upcomingHours(snapshot *ForecastSnapshot) []HourlyEntry {
	if len(snapshot.Hourly) == 0 {
		return nil
	}
	start := 0
	if !snapshot.Current.Time.IsZero() {
		if idx, ok := nearestHourlyIndex(snapshot.Hourly, snapshot.Current.Time); ok {
			start = idx
		}
	}
	end := min(start+hourlyStripLen, len(snapshot.Hourly))
	return snapshot.Hourly[start:end]
}

// upcomingDays skips today (index 0, already shown as current conditions)
// and returns the next days of the outlook.
func upcomingDays(snapshot *ForecastSnapshot) []DailyEntry {
	if len(snapshot.Daily) <= 1 {
		return nil
	}
	end := min(1+dailyListLen, len(snapshot.Daily))
	return snapshot.Daily[1:end]
}

func hourViews(entries []HourlyEntry, unit Unit) []HourView {
	if len(entries) == 0 {
		return nil
	}
	views := make([]HourView, len(entries))
	for i, h := range entries {
		views[i] = HourView{
			Label:         h.Time.Format("3 PM"),
			Temperature:   formatTemp(h.TemperatureC, unit),
			Condition:     ConditionLabel(h.ConditionCode),
			Theme:         ConditionTheme(h.ConditionCode),
			PrecipProbPct: int(h.PrecipProbPct),
		}
	}
	return views
}

func dayViews(entries []DailyEntry, unit Unit) []DayView {
	if len(entries) == 0 {
		return nil
	}
	views := make([]DayView, len(entries))
	for i, d := range entries {
		views[i] = dayView(d, unit)
	}
	return views
}

func dayView(d DailyEntry, unit Unit) DayView {
	return DayView{
		Label:     dayLabel(d.Date),
		High:      formatTemp(d.TempMaxC, unit),
		Low:       formatTemp(d.TempMinC, unit),
		Condition: ConditionLabel(d.ConditionCode),
		Theme:     ConditionTheme(d.ConditionCode),
	}
}

func eventViews(summaries []EventSummary, unit Unit) []EventView {
	views := make([]EventView, len(summaries))
	for i, s := range summaries {
		v := EventView{
			Label:      s.Label,
			Date:       dayLabel(s.Date),
			High:       unavailable,
			Low:        unavailable,
			Condition:  unavailable,
			PrecipProb: unavailable,
		}
		if s.TempMaxC != nil {
			v.High = formatTemp(*s.TempMaxC, unit)
		}
		if s.TempMinC != nil {
			v.Low = formatTemp(*s.TempMinC, unit)
		}
		if s.ConditionCode != nil {
			v.Condition = ConditionLabel(*s.ConditionCode)
		}
		if s.PrecipProbPct != nil {
			v.PrecipProb = fmt.Sprintf("%d%%", int(*s.PrecipProbPct))
		}
		views[i] = v
	}
	return views
}

func formatTemp(celsius float64, unit Unit) string {
	return fmt.Sprintf("%d%s", DisplayTemperature(celsius, unit), UnitSuffix(unit))
}

// dayLabel renders a YYYY-MM-DD date as "Sat 9/6"; unparseable dates pass
// through untouched.
func dayLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d/%d", t.Format("Mon"), int(t.Month()), t.Day())
}

// localClock formats an instant in the snapshot's local timezone.
func localClock(snapshot *ForecastSnapshot, t time.Time) string {
	if len(snapshot.Hourly) > 0 {
		t = t.In(snapshot.Hourly[0].Time.Location())
	}
	return t.Format("15:04")
}

func clockOrDash(t time.Time) string {
	if t.IsZero() {
		return unavailable
	}
	return t.Format("15:04")
}
