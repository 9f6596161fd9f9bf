// Package schedule models the inquiry form's schedule builder rows: the
// event dates the forecast display anchors to, plus the plain-text summary
// the form submits.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Event is one schedule builder row. All fields are optional; the forecast
// engine only reads events, it never mutates them.
type Event struct {
	Label           string `json:"label,omitempty" validate:"max=80"`
	Date            string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime       string `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	DurationMinutes int    `json:"durationMinutes,omitempty" validate:"min=0,max=1440"`
}

// HasDate reports whether the event carries a calendar date.
func (e Event) HasDate() bool {
	return e.Date != ""
}

// Validate checks field formats and, for dated events, enforces the
// builder's minimum date of tomorrow (no past or same-day bookings).
func (e Event) Validate(now time.Time) error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	if e.Date == "" {
		return nil
	}
	d, err := time.ParseInLocation("2006-01-02", e.Date, now.Location())
	if err != nil {
		return fmt.Errorf("invalid event date %q: %w", e.Date, err)
	}
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	if d.Before(tomorrow) {
		return fmt.Errorf("event date %s is before the earliest bookable date %s", e.Date, tomorrow.Format("2006-01-02"))
	}
	return nil
}

// Active returns the event the forecast should anchor to: the first dated
// event in input order, or false when none carries a date.
func Active(events []Event) (Event, bool) {
	for _, ev := range events {
		if ev.HasDate() {
			return ev, true
		}
	}
	return Event{}, false
}

// Dated filters the events that carry a calendar date, preserving order.
func Dated(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if ev.HasDate() {
			out = append(out, ev)
		}
	}
	return out
}

// BuildSummary renders the numbered plain-text summary the inquiry form
// embeds in its submission, one line per non-empty row:
//
//	1. Mehndi • 2026-06-01 • 14:30 • 4h
//
// Rows with no values at all are skipped. An empty schedule yields "".
func BuildSummary(events []Event) string {
	var lines []string
	for _, ev := range events {
		bits := make([]string, 0, 4)
		if s := strings.TrimSpace(ev.Label); s != "" {
			bits = append(bits, s)
		}
		if ev.Date != "" {
			bits = append(bits, ev.Date)
		}
		if ev.StartTime != "" {
			bits = append(bits, ev.StartTime)
		}
		if ev.DurationMinutes > 0 {
			bits = append(bits, formatDuration(ev.DurationMinutes))
		}
		if len(bits) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s", len(lines)+1, strings.Join(bits, " • ")))
	}
	return strings.Join(lines, "\n")
}

// formatDuration renders minutes as whole or half hours, the granularity
// the builder's duration input accepts.
func formatDuration(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}
