package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTimeWindowOverlaps(t *testing.T) {
	base := TimeWindow{Start: 10 * 60, End: 14 * 60}

	assert.True(t, base.Overlaps(TimeWindow{Start: 12 * 60, End: 16 * 60}))
	assert.True(t, base.Overlaps(TimeWindow{Start: 8 * 60, End: 11 * 60}))
	assert.True(t, base.Overlaps(TimeWindow{Start: 11 * 60, End: 12 * 60}))

	// Touching endpoints do not count as overlap.
	assert.False(t, base.Overlaps(TimeWindow{Start: 14 * 60, End: 16 * 60}))
	assert.False(t, base.Overlaps(TimeWindow{Start: 8 * 60, End: 10 * 60}))
}

func TestTimeWindowIntersect(t *testing.T) {
	a := TimeWindow{Start: 10 * 60, End: 14 * 60}
	b := TimeWindow{Start: 12 * 60, End: 16 * 60}
	assert.Equal(t, TimeWindow{Start: 12 * 60, End: 14 * 60}, a.Intersect(b))
	assert.Equal(t, TimeWindow{Start: 12 * 60, End: 14 * 60}, b.Intersect(a))
}

func TestParseDayOfWeek(t *testing.T) {
	day, err := ParseDayOfWeek("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, day)

	day, err = ParseDayOfWeek("  saturday ")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, day)

	_, err = ParseDayOfWeek("someday")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		wantErr bool
	}{
		{"09:00:00", 9 * 60, false},
		{"18:30:00", 18*60 + 30, false},
		{"21:00", 21 * 60, false},
		{"00:00:00", 0, false},
		{"23:59:59", 23*60 + 59, false},
		{"24:00:00", 0, true},
		{"12:61:00", 0, true},
		{"noon", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.minutes, got, "input %q", tc.in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00:00", FormatClock(9*60))
	assert.Equal(t, "18:30:00", FormatClock(18*60+30))
	assert.Equal(t, "00:00:00", FormatClock(0))
}

func TestNormalizeWindowDefaults(t *testing.T) {
	// Missing bounds fall back to 09:00-18:00.
	assert.Equal(t, TimeWindow{Start: 9 * 60, End: 18 * 60}, NormalizeWindow(nil, nil))

	// One bound present, the other defaulted.
	w := NormalizeWindow(strPtr("10:00:00"), nil)
	assert.Equal(t, TimeWindow{Start: 10 * 60, End: 18 * 60}, w)

	w = NormalizeWindow(nil, strPtr("21:30:00"))
	assert.Equal(t, TimeWindow{Start: 9 * 60, End: 21*60 + 30}, w)

	// Unparseable values also fall back to the defaults.
	w = NormalizeWindow(strPtr("garbage"), strPtr("25:00:00"))
	assert.Equal(t, TimeWindow{Start: 9 * 60, End: 18 * 60}, w)
}

func TestKickoffCandidates(t *testing.T) {
	// 10:00-14:00: hourly starts that leave a full hour strictly inside.
	got := KickoffCandidates(TimeWindow{Start: 10 * 60, End: 14 * 60})
	assert.Equal(t, []int{10 * 60, 11 * 60, 12 * 60}, got)

	// Two-hour window yields exactly one candidate at the window start.
	got = KickoffCandidates(TimeWindow{Start: 9 * 60, End: 11 * 60})
	assert.Equal(t, []int{9 * 60}, got)

	// Non-empty window too short for an hourly step still offers its start.
	got = KickoffCandidates(TimeWindow{Start: 9 * 60, End: 9*60 + 30})
	assert.Equal(t, []int{9 * 60}, got)

	// Empty window has no candidates.
	assert.Empty(t, KickoffCandidates(TimeWindow{Start: 12 * 60, End: 12 * 60}))
}

func TestTeamScheduleDays(t *testing.T) {
	s := TeamSchedule{
		TeamID: 1,
		Days: map[time.Weekday]TimeWindow{
			time.Friday: {Start: 9 * 60, End: 18 * 60},
			time.Monday: {Start: 9 * 60, End: 18 * 60},
			time.Sunday: {Start: 9 * 60, End: 12 * 60},
		},
	}
	assert.Equal(t, []time.Weekday{time.Sunday, time.Monday, time.Friday}, s.AvailableDays())
	assert.Equal(t, 3, s.AvailableDayCount())

	day, ok := s.FirstAvailableDay()
	require.True(t, ok)
	assert.Equal(t, time.Sunday, day)

	_, ok = TeamSchedule{TeamID: 2}.FirstAvailableDay()
	assert.False(t, ok)
}
