// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"carcool-backend/services"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenCookie = "token"

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Platform string `json:"platform"` // "web" gets a session cookie
}

type AuthController struct {
	backend      store.Backend
	sessions     services.SessionStore
	secret       string
	ttl          time.Duration
	secureCookie bool
}

func NewAuthController(backend store.Backend, sessions services.SessionStore, secret string, ttl time.Duration, secureCookie bool) *AuthController {
	return &AuthController{
		backend:      backend,
		sessions:     sessions,
		secret:       secret,
		ttl:          ttl,
		secureCookie: secureCookie,
	}
}

// Login issues a token. Web clients get a session cookie, apps a persistent one.
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := ac.backend.UserByEmail(c.Request.Context(), strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, claims, err := utils.GenerateToken(ac.secret, user.ID.String(), ac.ttl)
	if err != nil {
		zap.L().Error("failed to sign token", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := ac.backend.TouchLogin(c.Request.Context(), user.ID, time.Now()); err != nil {
		zap.L().Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	// A zero max age leaves out Max-Age, so browsers drop the cookie on close.
	maxAge := int(ac.ttl.Seconds())
	if strings.EqualFold(input.Platform, "web") {
		maxAge = 0
	}
	c.SetCookie(tokenCookie, token, maxAge, "/", "", ac.secureCookie, true)

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": claims.ExpiresAt.Time,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Logout revokes the current token until it would have expired anyway
func (ac *AuthController) Logout(c *gin.Context) {
	tokenID := c.GetString("tokenId")
	until := time.Now().Add(ac.ttl)
	if expiry, ok := c.Get("tokenExpiry"); ok {
		if t, ok := expiry.(time.Time); ok {
			until = t
		}
	}

	if tokenID != "" {
		if err := ac.sessions.Revoke(c.Request.Context(), tokenID, until); err != nil {
			zap.L().Error("failed to revoke session", zap.Error(err))
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to log out")
			return
		}
	}

	c.SetCookie(tokenCookie, "", -1, "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	user, err := ac.backend.UserByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}
