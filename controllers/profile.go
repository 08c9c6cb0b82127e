package controllers

import (
	"net/http"
	"strings"

	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UpdateProfileInput struct {
	Name            *string `json:"name"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" binding:"omitempty,min=8"`
}

type ProfileController struct {
	backend store.Backend
}

func NewProfileController(backend store.Backend) *ProfileController {
	return &ProfileController{backend: backend}
}

func (pc *ProfileController) currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return uuid.Nil, false
	}
	return id, true
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	userID, ok := pc.currentUser(c)
	if !ok {
		return
	}

	user, err := pc.backend.UserByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"lastLogin": user.LastLogin,
	})
}

// UpdateProfile changes the display name and, given the current password, the password
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	userID, ok := pc.currentUser(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	if input.NewPassword != nil {
		user, err := pc.backend.UserByID(c.Request.Context(), userID)
		if err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
	}

	if _, err := pc.backend.UpdateUser(c.Request.Context(), userID, input.Name, input.NewPassword); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
