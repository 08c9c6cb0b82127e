package controllers

import (
	"net/http"
	"strings"
	"time"

	"carcool-backend/utils"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// intQuery reads a non-negative integer query parameter, falling back on garbage.
func intQuery(c *gin.Context, name string, fallback, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// timeQuery accepts any date layout dateparse understands, in local time.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseLocal(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func ownerID(c *gin.Context) string {
	return c.GetString("userId")
}
