// Package streak folds completed meditation sessions into a per-user count
// of consecutive calendar days.
package streak

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Continuity selects the day a stored last-activity date must equal for a
// new activity to extend the streak.
type Continuity string

const (
	// ContinuityToday extends the streak when the last recorded day is the
	// day before "today".
	ContinuityToday Continuity = "today"
	// ContinuityActivity extends the streak when the last recorded day is
	// the day before the new activity's own day.
	ContinuityActivity Continuity = "activity"
)

// ParseContinuity validates a configured continuity basis.
func ParseContinuity(s string) (Continuity, error) {
	switch Continuity(s) {
	case "", ContinuityToday:
		return ContinuityToday, nil
	case ContinuityActivity:
		return ContinuityActivity, nil
	}
	return "", fmt.Errorf("unknown streak continuity %q (want %q or %q)", s, ContinuityToday, ContinuityActivity)
}

// State is the streak bookkeeping stored on a user.
// Count is zero exactly when LastActivityDate is nil.
type State struct {
	Count            int
	LastActivityDate *civil.Date
}

// HasHistory reports whether any activity has been folded in yet.
func (s State) HasHistory() bool {
	return s.LastActivityDate != nil
}

// Tracker computes streak transitions. The zero value uses UTC, the
// wall clock and ContinuityToday.
type Tracker struct {
	Location   *time.Location
	Continuity Continuity
	Now        func() time.Time
}

// NewTracker returns a tracker that truncates instants to days in loc.
func NewTracker(loc *time.Location, continuity Continuity) *Tracker {
	return &Tracker{Location: loc, Continuity: continuity, Now: time.Now}
}

// Day truncates t to its calendar date in the tracker's reference timezone.
func (t *Tracker) Day(ts time.Time) civil.Date {
	loc := time.UTC
	if t != nil && t.Location != nil {
		loc = t.Location
	}
	return civil.DateOf(ts.In(loc))
}

// StartOfDay returns the first instant of ts's calendar day in the
// reference timezone.
func (t *Tracker) StartOfDay(ts time.Time) time.Time {
	loc := time.UTC
	if t != nil && t.Location != nil {
		loc = t.Location
	}
	return t.Day(ts).In(loc)
}

func (t *Tracker) now() time.Time {
	if t != nil && t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// StartOfToday is StartOfDay of the tracker's clock.
func (t *Tracker) StartOfToday() time.Time {
	return t.StartOfDay(t.now())
}

// Update folds an activity completed at activity into state using the
// tracker's clock for "today".
func (t *Tracker) Update(state State, activity time.Time) State {
	return t.UpdateAt(state, activity, t.now())
}

// UpdateAt folds an activity completed at activity into state, treating
// today as the current instant. It never fails and does not mutate state.
func (t *Tracker) UpdateAt(state State, activity, today time.Time) State {
	day := t.Day(activity)

	if state.LastActivityDate == nil {
		return State{Count: 1, LastActivityDate: &day}
	}

	last := *state.LastActivityDate
	if day == last {
		return state
	}

	var yesterday civil.Date
	if t != nil && t.Continuity == ContinuityActivity {
		yesterday = day.AddDays(-1)
	} else {
		yesterday = t.Day(today).AddDays(-1)
	}

	if last == yesterday {
		return State{Count: state.Count + 1, LastActivityDate: &day}
	}

	return State{Count: 1, LastActivityDate: &day}
}
