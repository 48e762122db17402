package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Karansehgal0611/meditation-app/internal/models"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/gin-gonic/gin"
)

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=200"`
	WeeklyGoal  *int   `json:"weeklyGoal" binding:"omitempty,min=0"`
}

type JoinGroupRequest struct {
	JoinCode string `json:"joinCode" binding:"required"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description" binding:"omitempty,max=200"`
	WeeklyGoal  *int    `json:"weeklyGoal" binding:"omitempty,min=0"`
}

// CreateGroup creates a group with the caller as its first member
func CreateGroup(groups GroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req CreateGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
			return
		}

		group := &models.Group{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			CreatedBy:   userID,
			MaxMembers:  models.DefaultMaxMembers,
		}
		if req.WeeklyGoal != nil {
			group.WeeklyGoal = *req.WeeklyGoal
		}

		if err := groups.Create(c.Request.Context(), group); err != nil {
			serverError(c, "Failed to create group", err)
			return
		}

		created, err := groups.GetByID(c.Request.Context(), group.ID)
		if err != nil {
			serverError(c, "Failed to load group", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "group": created})
	}
}

// ListGroups returns every group the caller belongs to
func ListGroups(groups GroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		list, err := groups.ListForUser(c.Request.Context(), userID)
		if err != nil {
			serverError(c, "Failed to query groups", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "groups": list})
	}
}

// GetGroup returns one group the caller belongs to
func GetGroup(groups GroupStore) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
	}
}

// JoinGroup adds the caller to the group with the given join code
func JoinGroup(groups GroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req JoinGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		group, err := groups.Join(c.Request.Context(), strings.TrimSpace(req.JoinCode), userID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrInvalidJoinCode):
				c.JSON(http.StatusNotFound, gin.H{"error": "Invalid join code"})
			case errors.Is(err, repository.ErrGroupFull):
				c.JSON(http.StatusBadRequest, gin.H{"error": "This group is already full"})
			case errors.Is(err, repository.ErrAlreadyMember):
				c.JSON(http.StatusBadRequest, gin.H{"error": "You are already a member of this group"})
			default:
				serverError(c, "Failed to join group", err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
	}
}

// LeaveGroup removes the caller from a group
func LeaveGroup(groups GroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		groupID, ok := parseIDParam(c, "id", "Invalid group ID")
		if !ok {
			return
		}

		if err := groups.Leave(c.Request.Context(), groupID, userID); err != nil {
			switch {
			case errors.Is(err, repository.ErrGroupNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			case errors.Is(err, repository.ErrNotMember):
				c.JSON(http.StatusBadRequest, gin.H{"error": "You are not a member of this group"})
			default:
				serverError(c, "Failed to leave group", err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully left the group"})
	}
}

// UpdateGroup changes group settings; only the creator may call it
func UpdateGroup(groups GroupStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}
		groupID, ok := parseIDParam(c, "id", "Invalid group ID")
		if !ok {
			return
		}

		var req UpdateGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		group, err := groups.Update(c.Request.Context(), groupID, userID, models.GroupUpdate{
			Name:        req.Name,
			Description: req.Description,
			WeeklyGoal:  req.WeeklyGoal,
		})
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrGroupNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			case errors.Is(err, repository.ErrNotGroupCreator):
				c.JSON(http.StatusForbidden, gin.H{"error": "Only the group creator can update settings"})
			default:
				serverError(c, "Failed to update group", err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
	}
}
