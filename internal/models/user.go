package models

import (
	"time"

	"github.com/google/uuid"
)

// Meditation types accepted for sessions and user preferences
const (
	MeditationFocus          = "focus"
	MeditationLovingKindness = "loving-kindness"
	MeditationMindfulness    = "mindfulness"
	MeditationGratitude      = "gratitude"
	MeditationOther          = "other"
)

// DefaultDailyGoal is the default daily meditation goal in minutes
const DefaultDailyGoal = 15

// ValidMeditationType reports whether t is one of the known meditation types
func ValidMeditationType(t string) bool {
	switch t {
	case MeditationFocus, MeditationLovingKindness, MeditationMindfulness, MeditationGratitude, MeditationOther:
		return true
	}
	return false
}

// User represents a registered meditator
type User struct {
	ID                      uuid.UUID   `json:"id" db:"id"`
	Username                string      `json:"username" db:"username"`
	Email                   string      `json:"email" db:"email"`
	PasswordHash            string      `json:"-" db:"password_hash"`
	DailyGoal               int         `json:"daily_goal" db:"daily_goal"` // Minutes per day
	PreferredMeditationType string      `json:"preferred_meditation_type" db:"preferred_meditation_type"`
	Streak                  int         `json:"streak" db:"streak"`
	LongestStreak           int         `json:"longest_streak" db:"longest_streak"`
	LastMeditationDate      *time.Time  `json:"last_meditation_date,omitempty" db:"last_meditation_date"` // DATE, midnight UTC
	Groups                  []uuid.UUID `json:"groups" db:"-"`
	CreatedAt               time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at" db:"updated_at"`
}

// UserResponse is the public representation returned by the auth endpoints
type UserResponse struct {
	ID                      uuid.UUID   `json:"id"`
	Username                string      `json:"username"`
	Email                   string      `json:"email"`
	Groups                  []uuid.UUID `json:"groups"`
	DailyGoal               int         `json:"daily_goal"`
	PreferredMeditationType string      `json:"preferred_meditation_type"`
	Streak                  int         `json:"streak"`
	LongestStreak           int         `json:"longest_streak"`
	LastMeditationDate      *string     `json:"last_meditation_date,omitempty"` // YYYY-MM-DD
	CreatedAt               string      `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	groups := u.Groups
	if groups == nil {
		groups = []uuid.UUID{}
	}

	var last *string
	if u.LastMeditationDate != nil {
		s := u.LastMeditationDate.Format("2006-01-02")
		last = &s
	}

	return UserResponse{
		ID:                      u.ID,
		Username:                u.Username,
		Email:                   u.Email,
		Groups:                  groups,
		DailyGoal:               u.DailyGoal,
		PreferredMeditationType: u.PreferredMeditationType,
		Streak:                  u.Streak,
		LongestStreak:           u.LongestStreak,
		LastMeditationDate:      last,
		CreatedAt:               u.CreatedAt.Format(time.RFC3339),
	}
}

// UserSummary is the minimal user view embedded in group responses
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
