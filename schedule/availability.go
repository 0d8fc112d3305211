package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// Defaults applied when an availability record is present but one of its
	// time bounds is missing.
	defaultStartMinutes = 9 * 60  // 09:00
	defaultEndMinutes   = 18 * 60 // 18:00

	// A match occupies a full hour; kickoff candidates must leave room for it.
	matchDurationMinutes = 60
)

// TimeWindow is a wall-clock interval in minutes since midnight, timezone-free.
type TimeWindow struct {
	Start int
	End   int
}

func (w TimeWindow) IsEmpty() bool {
	return w.End <= w.Start
}

// Overlaps reports whether the two windows intersect in a non-empty interval.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// Intersect returns the shared sub-window. Call Overlaps first; the result is
// empty when the windows are disjoint.
func (w TimeWindow) Intersect(other TimeWindow) TimeWindow {
	out := TimeWindow{Start: w.Start, End: w.End}
	if other.Start > out.Start {
		out.Start = other.Start
	}
	if other.End < out.End {
		out.End = other.End
	}
	return out
}

// TeamSchedule is one team's normalized weekly availability: only days the
// team marked available appear in Days.
type TeamSchedule struct {
	TeamID   int
	TeamName string
	Days     map[time.Weekday]TimeWindow
}

// AvailableDays returns the available weekdays in Sunday-first order.
func (s TeamSchedule) AvailableDays() []time.Weekday {
	days := make([]time.Weekday, 0, len(s.Days))
	for d := range s.Days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func (s TeamSchedule) AvailableDayCount() int {
	return len(s.Days)
}

// FirstAvailableDay returns the earliest available weekday (Sunday-first) and
// false when the team has no available day at all.
func (s TeamSchedule) FirstAvailableDay() (time.Weekday, bool) {
	days := s.AvailableDays()
	if len(days) == 0 {
		return 0, false
	}
	return days[0], true
}

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDayOfWeek maps a stored day-of-week string to a time.Weekday.
// Matching is case-insensitive; unknown values are an error so the caller can
// log and skip the row without aborting the run.
func ParseDayOfWeek(value string) (time.Weekday, error) {
	day, ok := dayNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return 0, fmt.Errorf("unrecognized day of week %q", value)
	}
	return day, nil
}

// ParseClock parses "HH:MM:SS" (seconds optional) into minutes since midnight.
func ParseClock(value string) (int, error) {
	var h, m, s int
	n, err := fmt.Sscanf(value, "%d:%d:%d", &h, &m, &s)
	if err != nil && n < 2 {
		return 0, fmt.Errorf("unparseable clock value %q", value)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, fmt.Errorf("clock value %q out of range", value)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM:SS".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// NormalizeWindow applies the availability defaults: a missing or unparseable
// start becomes 09:00, a missing or unparseable end becomes 18:00.
func NormalizeWindow(start, end *string) TimeWindow {
	w := TimeWindow{Start: defaultStartMinutes, End: defaultEndMinutes}
	if start != nil && *start != "" {
		if v, err := ParseClock(*start); err == nil {
			w.Start = v
		}
	}
	if end != nil && *end != "" {
		if v, err := ParseClock(*end); err == nil {
			w.End = v
		}
	}
	return w
}

// KickoffCandidates enumerates candidate kickoff times (minutes since
// midnight) for the given overlap window: hourly steps from the window start
// while a full match still fits strictly before the window end. When no hourly
// boundary fits but the window is non-empty, the window start is offered as
// the single candidate.
func KickoffCandidates(w TimeWindow) []int {
	var out []int
	for t := w.Start; t+matchDurationMinutes < w.End; t += 60 {
		out = append(out, t)
	}
	if len(out) == 0 && !w.IsEmpty() {
		out = append(out, w.Start)
	}
	return out
}
