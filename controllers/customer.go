package controllers

import (
	"errors"
	"net/http"

	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomerController exposes the customers and cars created by bill submissions.
// There is no create endpoint; customers only come into being through a bill.
type CustomerController struct {
	backend store.Backend
}

func NewCustomerController(backend store.Backend) *CustomerController {
	return &CustomerController{backend: backend}
}

// GetCustomers searches customers by name or mobile
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	limit := intQuery(c, "limit", 50, 200)
	offset := intQuery(c, "offset", 0, 0)

	customers, total, err := cc.backend.ListCustomers(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		zap.L().Error("failed to list customers", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetCustomer retrieves a customer with their cars
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	customer, err := cc.backend.GetCustomer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetVehicle looks a car up by its number, normalising it the same way submission does
func (cc *CustomerController) GetVehicle(c *gin.Context) {
	number := utils.NormalizeCarNumber(c.Param("carNumber"))
	if number == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Car number is required")
		return
	}

	car, err := cc.backend.VehicleByNumber(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Car not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.JSON(http.StatusOK, car)
}
