package models

// ProfileUpdate holds the settings a user may change on PUT /api/auth/me.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	DailyGoal               *int    // Minutes per day
	PreferredMeditationType *string // One of the Meditation* constants
}
