// controllers/service.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"carcool-backend/models"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	ServiceName string `json:"serviceName" binding:"required"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	ServiceName *string `json:"serviceName"`
	IsActive    *bool   `json:"isActive"`
}

type ServiceController struct {
	backend store.Backend
}

func NewServiceController(backend store.Backend) *ServiceController {
	return &ServiceController{backend: backend}
}

// GetCatalog loads everything the bill wizard offers in one round trip
func (sc *ServiceController) GetCatalog(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		services []models.Service
		problems []models.ProblemType
		products []models.InventoryProduct
		variants []models.InventoryVariant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		services, err = sc.backend.ActiveServices(gctx)
		return err
	})
	g.Go(func() (err error) {
		problems, err = sc.backend.ProblemTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = sc.backend.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		variants, err = sc.backend.ListVariants(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"services":  services,
		"problems":  problems,
		"products":  products,
		"inventory": groupVariants(variants),
	})
}

// GetServices retrieves the catalog services; ?all=true includes inactive ones
func (sc *ServiceController) GetServices(c *gin.Context) {
	var (
		services []models.Service
		err      error
	)
	if c.Query("all") == "true" {
		services, err = sc.backend.ListServices(c.Request.Context())
	} else {
		services, err = sc.backend.ActiveServices(c.Request.Context())
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}
	c.JSON(http.StatusOK, services)
}

func (sc *ServiceController) GetProblemTypes(c *gin.Context) {
	problems, err := sc.backend.ProblemTypes(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve problems")
		return
	}
	c.JSON(http.StatusOK, problems)
}

// CreateService adds a new active service to the catalog
func (sc *ServiceController) CreateService(c *gin.Context) {
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if strings.TrimSpace(input.ServiceName) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Service name is required")
		return
	}

	service, err := sc.backend.CreateService(c.Request.Context(), input.ServiceName)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, service)
}

// UpdateService renames or deactivates a service. Services are never deleted
// because past bills reference them.
func (sc *ServiceController) UpdateService(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.ServiceName != nil && strings.TrimSpace(*input.ServiceName) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Service name is required")
		return
	}

	service, err := sc.backend.UpdateService(c.Request.Context(), id, input.ServiceName, input.IsActive)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		}
		return
	}
	c.JSON(http.StatusOK, service)
}
