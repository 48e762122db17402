package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberProgress is one member's position on a group's leaderboard
type MemberProgress struct {
	Rank           int        `json:"rank"`
	UserID         uuid.UUID  `json:"user_id"`
	Username       string     `json:"username"`
	TotalSessions  int        `json:"total_sessions"`
	TotalDuration  int        `json:"total_duration"` // Minutes
	TodaySessions  int        `json:"today_sessions"`
	LastMeditation *time.Time `json:"last_meditation,omitempty"`
	IsActive       bool       `json:"is_active"` // Has an open session right now
	Streak         int        `json:"streak"`
}

// GroupProgressResponse is the API response for a group's leaderboard
type GroupProgressResponse struct {
	GroupID      uuid.UUID        `json:"group_id"`
	GroupName    string           `json:"group_name"`
	WeeklyGoal   int              `json:"weekly_goal"`
	Members      []MemberProgress `json:"members"`
	TotalMembers int              `json:"total_members"`
	ActiveNow    int              `json:"active_now"`
}
