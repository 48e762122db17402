package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxMembers is the default group capacity
const DefaultMaxMembers = 4

// Group represents a small meditation group joined by code
type Group struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	CreatedBy   uuid.UUID     `json:"created_by" db:"created_by"`
	MaxMembers  int           `json:"max_members" db:"max_members"`
	WeeklyGoal  int           `json:"weekly_goal" db:"weekly_goal"` // Minutes per week for the group
	JoinCode    string        `json:"join_code" db:"join_code"`
	Members     []UserSummary `json:"members" db:"-"`
	Creator     *UserSummary  `json:"creator,omitempty" db:"-"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// IsFull reports whether the group has reached its capacity
func (g *Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

// HasMember reports whether userID is a member of the group
func (g *Group) HasMember(userID uuid.UUID) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// GroupUpdate holds the optional fields the creator may change
type GroupUpdate struct {
	Name        *string
	Description *string
	WeeklyGoal  *int
}
