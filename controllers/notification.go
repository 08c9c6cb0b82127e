// controllers/notification.go
package controllers

import (
	"net/http"
	"strings"

	"carcool-backend/models"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
)

var templateTypes = map[string]bool{
	models.TemplateInvoiceReady: true,
}

// UpdateTemplateInput patches the message or active flag of a template
type UpdateTemplateInput struct {
	Message  *string `json:"message"`
	IsActive *bool   `json:"isActive"`
}

type NotificationController struct {
	backend store.Backend
}

func NewNotificationController(backend store.Backend) *NotificationController {
	return &NotificationController{backend: backend}
}

// GetTemplates lists stored templates, falling back to the built-in invoice message
func (nc *NotificationController) GetTemplates(c *gin.Context) {
	templates, err := nc.backend.NotificationTemplates(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	stored := map[string]bool{}
	for _, t := range templates {
		stored[t.Type] = true
	}
	if !stored[models.TemplateInvoiceReady] {
		templates = append(templates, models.NotificationTemplate{
			Type:     models.TemplateInvoiceReady,
			Message:  models.DefaultInvoiceMessage,
			IsActive: true,
		})
	}

	c.JSON(http.StatusOK, templates)
}

// UpdateTemplate creates or patches the template of the given type
func (nc *NotificationController) UpdateTemplate(c *gin.Context) {
	kind := c.Param("type")
	if !templateTypes[kind] {
		utils.RespondWithError(c, http.StatusNotFound, "Unknown template type")
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Message != nil && strings.TrimSpace(*input.Message) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	template, err := nc.backend.SaveNotificationTemplate(c.Request.Context(), kind, input.Message, input.IsActive)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}
	c.JSON(http.StatusOK, template)
}
