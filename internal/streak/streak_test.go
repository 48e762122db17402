package streak

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *civil.Date {
	return &civil.Date{Year: y, Month: m, Day: d}
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestUpdateAt_FirstActivity(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)

	got := tr.UpdateAt(State{}, at(2024, 1, 10, 7), at(2024, 1, 10, 8))

	assert.Equal(t, 1, got.Count)
	require.NotNil(t, got.LastActivityDate)
	assert.Equal(t, *date(2024, 1, 10), *got.LastActivityDate)
}

func TestUpdateAt_FirstActivityIgnoresToday(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)

	for _, today := range []time.Time{at(2020, 5, 1, 0), at(2024, 1, 10, 23), at(2030, 12, 31, 12)} {
		got := tr.UpdateAt(State{}, at(2024, 1, 10, 7), today)
		assert.Equal(t, 1, got.Count)
		assert.Equal(t, *date(2024, 1, 10), *got.LastActivityDate)
	}
}

func TestUpdateAt_Transitions(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)

	tests := []struct {
		name     string
		state    State
		activity time.Time
		today    time.Time
		want     State
	}{
		{
			name:     "no history",
			state:    State{},
			activity: at(2024, 1, 10, 9),
			today:    at(2024, 1, 10, 9),
			want:     State{Count: 1, LastActivityDate: date(2024, 1, 10)},
		},
		{
			name:     "same day repeat",
			state:    State{Count: 3, LastActivityDate: date(2024, 1, 10)},
			activity: at(2024, 1, 10, 21),
			today:    at(2024, 1, 10, 21),
			want:     State{Count: 3, LastActivityDate: date(2024, 1, 10)},
		},
		{
			name:     "consecutive day",
			state:    State{Count: 3, LastActivityDate: date(2024, 1, 10)},
			activity: at(2024, 1, 11, 6),
			today:    at(2024, 1, 11, 6),
			want:     State{Count: 4, LastActivityDate: date(2024, 1, 11)},
		},
		{
			name:     "two day gap",
			state:    State{Count: 4, LastActivityDate: date(2024, 1, 10)},
			activity: at(2024, 1, 13, 6),
			today:    at(2024, 1, 13, 6),
			want:     State{Count: 1, LastActivityDate: date(2024, 1, 13)},
		},
		{
			name:     "backdated before last day",
			state:    State{Count: 5, LastActivityDate: date(2024, 1, 10)},
			activity: at(2024, 1, 8, 6),
			today:    at(2024, 1, 10, 6),
			want:     State{Count: 1, LastActivityDate: date(2024, 1, 8)},
		},
		{
			name:     "month boundary",
			state:    State{Count: 9, LastActivityDate: date(2024, 1, 31)},
			activity: at(2024, 2, 1, 0),
			today:    at(2024, 2, 1, 0),
			want:     State{Count: 10, LastActivityDate: date(2024, 2, 1)},
		},
		{
			name:     "leap day",
			state:    State{Count: 2, LastActivityDate: date(2024, 2, 28)},
			activity: at(2024, 2, 29, 12),
			today:    at(2024, 2, 29, 12),
			want:     State{Count: 3, LastActivityDate: date(2024, 2, 29)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.UpdateAt(tt.state, tt.activity, tt.today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateAt_SameDayIsIdempotent(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)
	state := State{Count: 2, LastActivityDate: date(2024, 1, 9)}
	activity := at(2024, 1, 10, 8)
	today := at(2024, 1, 10, 8)

	once := tr.UpdateAt(state, activity, today)
	twice := tr.UpdateAt(once, activity, today)

	assert.Equal(t, once, twice)
	assert.Equal(t, 3, twice.Count)
}

func TestUpdateAt_ResultIsAlwaysUnchangedIncrementOrReset(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)
	last := date(2024, 3, 15)
	base := at(2024, 3, 15, 12)

	for count := 1; count <= 5; count++ {
		for activityOffset := -3; activityOffset <= 3; activityOffset++ {
			for todayOffset := -1; todayOffset <= 3; todayOffset++ {
				state := State{Count: count, LastActivityDate: last}
				got := tr.UpdateAt(state, base.AddDate(0, 0, activityOffset), base.AddDate(0, 0, todayOffset))
				assert.Contains(t, []int{count, count + 1, 1}, got.Count)
				assert.NotNil(t, got.LastActivityDate)
			}
		}
	}
}

func TestUpdateAt_BackdatedUsesTodayBasisByDefault(t *testing.T) {
	// Streak active on Jan 10; on Jan 12 an activity is recorded for Jan 11.
	state := State{Count: 4, LastActivityDate: date(2024, 1, 10)}
	activity := at(2024, 1, 11, 20)
	today := at(2024, 1, 12, 9)

	byToday := NewTracker(time.UTC, ContinuityToday).UpdateAt(state, activity, today)
	assert.Equal(t, 1, byToday.Count)

	byActivity := NewTracker(time.UTC, ContinuityActivity).UpdateAt(state, activity, today)
	assert.Equal(t, 5, byActivity.Count)
	assert.Equal(t, *date(2024, 1, 11), *byActivity.LastActivityDate)
}

func TestUpdateAt_DoesNotMutateInput(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)
	last := date(2024, 1, 10)
	state := State{Count: 3, LastActivityDate: last}

	_ = tr.UpdateAt(state, at(2024, 1, 11, 8), at(2024, 1, 11, 8))

	assert.Equal(t, 3, state.Count)
	assert.Equal(t, *date(2024, 1, 10), *last)
}

func TestDay_UsesReferenceTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on Jan 10 is 05:00 on Jan 11 in Tokyo.
	ts := at(2024, 1, 10, 20)

	assert.Equal(t, *date(2024, 1, 10), NewTracker(time.UTC, ContinuityToday).Day(ts))
	assert.Equal(t, *date(2024, 1, 11), NewTracker(tokyo, ContinuityToday).Day(ts))
}

func TestUpdate_UsesInjectedClock(t *testing.T) {
	tr := &Tracker{
		Location: time.UTC,
		Now:      func() time.Time { return at(2024, 1, 11, 10) },
	}
	state := State{Count: 3, LastActivityDate: date(2024, 1, 10)}

	got := tr.Update(state, at(2024, 1, 11, 9))

	assert.Equal(t, 4, got.Count)
}

func TestZeroTrackerDefaultsToUTC(t *testing.T) {
	var tr Tracker
	got := tr.UpdateAt(State{}, at(2024, 1, 10, 23), at(2024, 1, 10, 23))
	assert.Equal(t, *date(2024, 1, 10), *got.LastActivityDate)
}

func TestParseContinuity(t *testing.T) {
	c, err := ParseContinuity("")
	require.NoError(t, err)
	assert.Equal(t, ContinuityToday, c)

	c, err = ParseContinuity("activity")
	require.NoError(t, err)
	assert.Equal(t, ContinuityActivity, c)

	_, err = ParseContinuity("weekly")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	tr := NewTracker(ny, ContinuityToday)

	// 03:00 UTC on Jan 11 is still Jan 10 in New York.
	got := tr.StartOfDay(at(2024, 1, 11, 3))

	assert.True(t, got.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, ny)))
}

func TestStartOfToday_UsesClock(t *testing.T) {
	tr := NewTracker(time.UTC, ContinuityToday)
	tr.Now = func() time.Time { return at(2024, 3, 5, 18) }

	assert.True(t, tr.StartOfToday().Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
}
