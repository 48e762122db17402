package handlers

import (
	"errors"
	"net/http"

	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/gin-gonic/gin"
)

// GetGroupProgress returns the group's leaderboard: per-member totals,
// today's sessions and who is meditating right now
func GetGroupProgress(groups GroupStore, clock DayClock) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		groupID, ok := parseIDParam(c, "id", "Invalid group ID")
		if !ok {
			return
		}

		group, err := groups.GetByID(c.Request.Context(), groupID)
		if err != nil {
			if errors.Is(err, repository.ErrGroupNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
				return
			}
			serverError(c, "Failed to query group", err)
			return
		}

		if !group.HasMember(userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this group"})
			return
		}

		members, err := groups.Progress(c.Request.Context(), groupID, clock.StartOfToday())
		if err != nil {
			serverError(c, "Failed to query group progress", err)
			return
		}

		active := 0
		for _, m := range members {
			if m.IsActive {
				active++
			}
		}

		c.JSON(http.StatusOK, models.GroupProgressResponse{
			GroupID:      group.ID,
			GroupName:    group.Name,
			WeeklyGoal:   group.WeeklyGoal,
			Members:      members,
			TotalMembers: len(members),
			ActiveNow:    active,
		})
	}
}
