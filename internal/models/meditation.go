package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Meditation is a single timed session
type Meditation struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	StartTime      time.Time  `json:"start_time" db:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty" db:"end_time"`
	Duration       int        `json:"duration" db:"duration"` // Minutes
	Completed      bool       `json:"completed" db:"completed"`
	Abandoned      bool       `json:"abandoned" db:"abandoned"`
	MeditationType string     `json:"meditation_type" db:"meditation_type"`
	Notes          *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// DurationMinutes rounds the elapsed time between start and end to whole minutes
func DurationMinutes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(math.Round(end.Sub(start).Minutes()))
}

// MeditationResponse is the API response format for a session
type MeditationResponse struct {
	ID             uuid.UUID `json:"id"`
	StartTime      string    `json:"start_time"`
	EndTime        *string   `json:"end_time,omitempty"`
	Duration       int       `json:"duration"`
	Completed      bool      `json:"completed"`
	MeditationType string    `json:"meditation_type"`
	Notes          *string   `json:"notes,omitempty"`
}

// ToResponse converts Meditation to MeditationResponse
func (m *Meditation) ToResponse() MeditationResponse {
	var end *string
	if m.EndTime != nil {
		s := m.EndTime.Format(time.RFC3339)
		end = &s
	}
	return MeditationResponse{
		ID:             m.ID,
		StartTime:      m.StartTime.Format(time.RFC3339),
		EndTime:        end,
		Duration:       m.Duration,
		Completed:      m.Completed,
		MeditationType: m.MeditationType,
		Notes:          m.Notes,
	}
}

// UserStats summarizes a user's completed sessions
type UserStats struct {
	TotalSessions int     `json:"total_sessions"`
	TotalDuration int     `json:"total_duration"`
	TodaySessions int     `json:"today_sessions"`
	AvgDuration   float64 `json:"avg_duration"`
	Streak        int     `json:"streak"`
	LongestStreak int     `json:"longest_streak"`
}

// Pagination describes a page of history results
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// CompletionResult is returned when a session is ended
type CompletionResult struct {
	Meditation Meditation
	Streak     int
}
