package weather

import (
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/schedule"
)

// Window size of the hourly strip centered on a single event's start hour.
const eventWindowSize = 5

// AnchorMode describes which shape of anchoring a result carries.
type AnchorMode string

const (
	AnchorToday      AnchorMode = "today"       // no dated events: first daily entry + current block
	AnchorEventHour  AnchorMode = "event-hour"  // one dated event with a start time: hourly window
	AnchorEventDay   AnchorMode = "event-day"   // one dated event without a start time: daily high/low
	AnchorMultiEvent AnchorMode = "multi-event" // several dated events: per-event summaries
)

// EventSummary is the per-event record produced in multi-event mode. Nil
// fields mean the value falls outside the fetched horizon and renders as
// unavailable rather than failing the whole result.
type EventSummary struct {
	Label         string   `json:"label,omitempty"`
	Date          string   `json:"date"`
	TempMaxC      *float64 `json:"tempMaxC,omitempty"`
	TempMinC      *float64 `json:"tempMinC,omitempty"`
	ConditionCode *int     `json:"conditionCode,omitempty"`
	PrecipProbPct *float64 `json:"precipProbPct,omitempty"`
}

// AnchorResult aligns a snapshot to the schedule events it was requested
// for. Exactly one of the mode-specific fields is populated.
type AnchorResult struct {
	Mode AnchorMode `json:"mode"`

	// Hourly window around the event start (AnchorEventHour).
	HourlyWindow []HourlyEntry `json:"hourlyWindow,omitempty"`

	// Daily entry for the anchored date (AnchorEventDay, AnchorToday).
	// Nil when the date is outside the fetched daily horizon.
	Day *DailyEntry `json:"day,omitempty"`

	// Per-event summaries in the events' input order (AnchorMultiEvent).
	Events []EventSummary `json:"events,omitempty"`
}

// Anchor selects the snapshot slice relevant to the given schedule events.
// Events without a date are ignored; the mode is decided by how many dated
// events remain. Dates beyond the fetched horizon yield unavailable fields,
// never an error.
func Anchor(snapshot *ForecastSnapshot, events []schedule.Event) AnchorResult {
	dated := make([]schedule.Event, 0, len(events))
	for _, ev := range events {
		if ev.Date != "" {
			dated = append(dated, ev)
		}
	}

	switch len(dated) {
	case 0:
		return anchorToday(snapshot)
	case 1:
		return anchorSingle(snapshot, dated[0])
	default:
		return anchorMulti(snapshot, dated)
	}
}

func anchorToday(snapshot *ForecastSnapshot) AnchorResult {
	res := AnchorResult{Mode: AnchorToday}
	if len(snapshot.Daily) > 0 {
		day := snapshot.Daily[0]
		res.Day = &day
	}
	return res
}

func anchorSingle(snapshot *ForecastSnapshot, ev schedule.Event) AnchorResult {
	if ev.StartTime == "" {
		// No start time: fall back to the daily high/low for the date.
		res := AnchorResult{Mode: AnchorEventDay}
		if day := dailyFor(snapshot, ev.Date); day != nil {
			res.Day = day
		}
		return res
	}

	target, ok := eventInstant(snapshot, ev)
	if !ok {
		return AnchorResult{Mode: AnchorEventHour}
	}
	idx, ok := nearestHourlyIndex(snapshot.Hourly, target)
	if !ok {
		return AnchorResult{Mode: AnchorEventHour}
	}

	start := idx - eventWindowSize/2
	end := start + eventWindowSize
	if start < 0 {
		start = 0
		end = min(eventWindowSize, len(snapshot.Hourly))
	}
	if end > len(snapshot.Hourly) {
		end = len(snapshot.Hourly)
		start = max(0, end-eventWindowSize)
	}

	window := make([]HourlyEntry, end-start)
	copy(window, snapshot.Hourly[start:end])
	return AnchorResult{Mode: AnchorEventHour, HourlyWindow: window}
}

func anchorMulti(snapshot *ForecastSnapshot, events []schedule.Event) AnchorResult {
	// One summary per event, in input order. The schedule UI controls
	// ordering; chronological sorting is deliberately not applied here.
	summaries := make([]EventSummary, 0, len(events))
	for _, ev := range events {
		s := EventSummary{Label: ev.Label, Date: ev.Date}
		if day := dailyFor(snapshot, ev.Date); day != nil {
			maxC, minC, code := day.TempMaxC, day.TempMinC, day.ConditionCode
			s.TempMaxC = &maxC
			s.TempMinC = &minC
			s.ConditionCode = &code
		}
		if ev.StartTime != "" {
			if target, ok := eventInstant(snapshot, ev); ok {
				if idx, ok := nearestHourlyIndex(snapshot.Hourly, target); ok {
					p := snapshot.Hourly[idx].PrecipProbPct
					s.PrecipProbPct = &p
				}
			}
		}
		summaries = append(summaries, s)
	}
	return AnchorResult{Mode: AnchorMultiEvent, Events: summaries}
}

// dailyFor finds the daily entry matching a YYYY-MM-DD date, or nil when
// the date is outside the fetched horizon.
func dailyFor(snapshot *ForecastSnapshot, date string) *DailyEntry {
	for i := range snapshot.Daily {
		if snapshot.Daily[i].Date == date {
			day := snapshot.Daily[i]
			return &day
		}
	}
	return nil
}

// eventInstant combines an event's date and start time into an absolute
// instant in the snapshot's local timezone.
func eventInstant(snapshot *ForecastSnapshot, ev schedule.Event) (time.Time, bool) {
	loc := time.Local
	if len(snapshot.Hourly) > 0 {
		loc = snapshot.Hourly[0].Time.Location()
	} else if !snapshot.Current.Time.IsZero() {
		loc = snapshot.Current.Time.Location()
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", ev.Date+" "+ev.StartTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// nearestHourlyIndex returns the index whose timestamp is nearest the
// target by absolute distance. An exact tie between two candidates picks
// the earlier index; this is a documented policy, not an accident.
func nearestHourlyIndex(hourly []HourlyEntry, target time.Time) (int, bool) {
	if len(hourly) == 0 {
		return 0, false
	}
	best := 0
	bestDist := absDuration(hourly[0].Time.Sub(target))
	for i := 1; i < len(hourly); i++ {
		d := absDuration(hourly[i].Time.Sub(target))
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
