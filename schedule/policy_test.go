package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleWithDays(days map[time.Weekday]TimeWindow) TeamSchedule {
	return TeamSchedule{TeamID: 1, Days: days}
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p.Name())

	p, err = PolicyByName("strict")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p.Name())

	p, err = PolicyByName("lenient")
	require.NoError(t, err)
	assert.Equal(t, PolicyLenient, p.Name())

	_, err = PolicyByName("generous")
	assert.Error(t, err)
}

func TestStrictPolicy(t *testing.T) {
	evening := TimeWindow{Start: 18 * 60, End: 21 * 60}
	office := TimeWindow{Start: 9 * 60, End: 18 * 60}
	weekendMorning := TimeWindow{Start: 9 * 60, End: 13 * 60}

	tests := []struct {
		name string
		days map[time.Weekday]TimeWindow
		want bool
	}{
		{
			name: "three weekdays with a late evening",
			days: map[time.Weekday]TimeWindow{
				time.Monday:    evening,
				time.Tuesday:   office,
				time.Wednesday: office,
			},
			want: true,
		},
		{
			name: "three weekdays plus qualifying weekend day",
			days: map[time.Weekday]TimeWindow{
				time.Monday:    office,
				time.Tuesday:   office,
				time.Wednesday: office,
				time.Saturday:  weekendMorning,
			},
			want: true,
		},
		{
			name: "three weekdays but neither late evening nor weekend",
			days: map[time.Weekday]TimeWindow{
				time.Monday:    office,
				time.Tuesday:   office,
				time.Wednesday: office,
			},
			want: false,
		},
		{
			name: "late evening but only two weekdays",
			days: map[time.Weekday]TimeWindow{
				time.Monday:  evening,
				time.Tuesday: evening,
			},
			want: false,
		},
		{
			name: "weekend day starting too late does not qualify",
			days: map[time.Weekday]TimeWindow{
				time.Monday:    office,
				time.Tuesday:   office,
				time.Wednesday: office,
				time.Sunday:    {Start: 10 * 60, End: 14 * 60},
			},
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StrictPolicy{}.Meets(scheduleWithDays(tc.days)))
		})
	}
}

func TestLenientPolicy(t *testing.T) {
	office := TimeWindow{Start: 9 * 60, End: 18 * 60}

	assert.False(t, LenientPolicy{}.Meets(scheduleWithDays(nil)))
	assert.False(t, LenientPolicy{}.Meets(scheduleWithDays(map[time.Weekday]TimeWindow{
		time.Monday: office,
	})))
	assert.True(t, LenientPolicy{}.Meets(scheduleWithDays(map[time.Weekday]TimeWindow{
		time.Monday: office,
		time.Sunday: office,
	})))
}
