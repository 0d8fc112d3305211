package schedule

import (
	"fmt"
	"time"
)

// AvailabilityPolicy decides whether a team's weekly availability is broad
// enough to absorb a fallback slot when no common conflict-free slot exists.
// Two revisions of the bar are in circulation; which one applies is a
// deployment choice (CALENDAR_AVAILABILITY_POLICY).
type AvailabilityPolicy interface {
	Name() string
	Meets(s TeamSchedule) bool
}

const (
	PolicyStrict  = "strict"
	PolicyLenient = "lenient"
)

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (AvailabilityPolicy, error) {
	switch name {
	case PolicyStrict, "":
		return StrictPolicy{}, nil
	case PolicyLenient:
		return LenientPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown availability policy %q", name)
	}
}

// StrictPolicy: at least 3 available weekdays AND (some weekday open until
// 21:00 or later, OR some weekend day open from 09:00 or earlier through
// 12:00 or later).
type StrictPolicy struct{}

func (StrictPolicy) Name() string { return PolicyStrict }

func (StrictPolicy) Meets(s TeamSchedule) bool {
	weekdays := 0
	lateWeekday := false
	validWeekend := false
	for day, w := range s.Days {
		if day >= time.Monday && day <= time.Friday {
			weekdays++
			if w.End >= 21*60 {
				lateWeekday = true
			}
		} else {
			if w.Start <= 9*60 && w.End >= 12*60 {
				validWeekend = true
			}
		}
	}
	return weekdays >= 3 && (lateWeekday || validWeekend)
}

// LenientPolicy: the later, simpler revision — any 2 available days.
type LenientPolicy struct{}

func (LenientPolicy) Name() string { return PolicyLenient }

func (LenientPolicy) Meets(s TeamSchedule) bool {
	return s.AvailableDayCount() >= 2
}
