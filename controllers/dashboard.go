package controllers

import (
	"net/http"
	"time"

	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	backend store.Backend
	now     func() time.Time
}

func NewDashboardController(backend store.Backend) *DashboardController {
	return &DashboardController{backend: backend, now: time.Now}
}

// GetDashboardOverview returns today's bill count and revenue and this month's bill count
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	stats, err := dc.backend.DashboardStats(c.Request.Context(), dc.now())
	if err != nil {
		zap.L().Error("failed to load dashboard stats", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}
