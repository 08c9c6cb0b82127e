package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"carcool-backend/draft"
	"carcool-backend/services"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type VehicleInput struct {
	CarNumber    string `json:"carNumber"`
	CustomerName string `json:"customerName"`
	Mobile       string `json:"mobile"`
	CarModel     string `json:"carModel"`
}

type LookupInput struct {
	CarNumber *string `json:"carNumber"`
}

type ProblemsInput struct {
	ProblemIDs    []string `json:"problemIds"`
	OtherSelected bool     `json:"otherSelected"`
	OtherProblem  string   `json:"otherProblem"`
}

type ChargeInput struct {
	Charge decimal.Decimal `json:"charge"`
}

type PartInput struct {
	VariantID    uuid.UUID       `json:"variantId" binding:"required"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

type ChargesInput struct {
	LaborCharge decimal.Decimal `json:"laborCharge"`
	ExtraCharge decimal.Decimal `json:"extraCharge"`
	Remarks     string          `json:"remarks"`
}

// DraftController exposes the bill creation wizard. Drafts belong to the signed-in user.
type DraftController struct {
	drafts  draft.Store
	lookup  *services.LookupService
	billing *services.BillingService
	backend store.Backend
	mode    draft.Mode
}

func NewDraftController(drafts draft.Store, lookup *services.LookupService, billing *services.BillingService, backend store.Backend, mode draft.Mode) *DraftController {
	return &DraftController{drafts: drafts, lookup: lookup, billing: billing, backend: backend, mode: mode}
}

func respondDraft(c *gin.Context, status int, d draft.Draft) {
	c.JSON(status, gin.H{"draft": d, "previewTotal": d.PreviewTotal()})
}

func respondValidation(c *gin.Context, ve *draft.ValidationError) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Message, "field": ve.Field})
}

// respondTransitionError maps the errors a draft transition can return.
func respondTransitionError(c *gin.Context, err error) {
	if ve, ok := draft.IsValidation(err); ok {
		respondValidation(c, ve)
		return
	}
	switch {
	case errors.Is(err, draft.ErrServiceNotSelected):
		utils.RespondWithError(c, http.StatusBadRequest, "Service is not selected")
	case errors.Is(err, draft.ErrPartNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Part not found")
	case errors.Is(err, draft.ErrLastStep):
		utils.RespondWithError(c, http.StatusBadRequest, "Already at the last step")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update draft")
	}
}

func (dc *DraftController) load(c *gin.Context) (draft.Draft, bool) {
	d, err := dc.drafts.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if errors.Is(err, draft.ErrNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Draft not found")
		return draft.Draft{}, false
	}
	if err != nil {
		zap.L().Error("failed to load draft", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load draft")
		return draft.Draft{}, false
	}
	return d, true
}

func (dc *DraftController) save(c *gin.Context, d draft.Draft) {
	if err := dc.drafts.Save(c.Request.Context(), ownerID(c), d); err != nil {
		zap.L().Error("failed to save draft", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save draft")
		return
	}
	respondDraft(c, http.StatusOK, d)
}

// update loads the draft, applies fn and stores the result. A rejected transition
// leaves the stored draft unchanged.
func (dc *DraftController) update(c *gin.Context, fn func(draft.Draft) (draft.Draft, error)) {
	d, ok := dc.load(c)
	if !ok {
		return
	}
	next, err := fn(d)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	dc.save(c, next)
}

func (dc *DraftController) Create(c *gin.Context) {
	d := draft.New(uuid.NewString(), dc.mode)
	if err := dc.drafts.Save(c.Request.Context(), ownerID(c), d); err != nil {
		zap.L().Error("failed to create draft", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create draft")
		return
	}
	respondDraft(c, http.StatusCreated, d)
}

func (dc *DraftController) Get(c *gin.Context) {
	d, ok := dc.load(c)
	if !ok {
		return
	}
	respondDraft(c, http.StatusOK, d)
}

func (dc *DraftController) Discard(c *gin.Context) {
	if err := dc.drafts.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to discard draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

func (dc *DraftController) SetVehicle(c *gin.Context) {
	var input VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.SetVehicle(draft.Vehicle(input)), nil
	})
}

// Lookup fills name, mobile and model from a known car. A failed query leaves the
// draft exactly as it was.
func (dc *DraftController) Lookup(c *gin.Context) {
	var input LookupInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}

	d, ok := dc.load(c)
	if !ok {
		return
	}
	if input.CarNumber != nil {
		v := d.Vehicle
		v.CarNumber = *input.CarNumber
		d = d.SetVehicle(v)
	}
	if strings.TrimSpace(d.Vehicle.CarNumber) == "" {
		respondValidation(c, &draft.ValidationError{Field: "carNumber", Message: "Car number is required"})
		return
	}

	result, err := dc.lookup.LookupVehicle(c.Request.Context(), d.Vehicle.CarNumber)
	if err != nil {
		zap.L().Warn("vehicle lookup failed", zap.Error(err))
		utils.RespondWithError(c, http.StatusBadGateway, "Error fetching car")
		return
	}
	dc.save(c, d.ApplyLookup(result))
}

func (dc *DraftController) SetProblems(c *gin.Context) {
	var input ProblemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.SetProblems(input.ProblemIDs, input.OtherSelected, input.OtherProblem), nil
	})
}

func (dc *DraftController) ToggleService(c *gin.Context) {
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}
	service, err := dc.backend.GetService(c.Request.Context(), serviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.ToggleService(service.ID, service.ServiceName), nil
	})
}

func (dc *DraftController) SetServiceCharge(c *gin.Context) {
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}
	var input ChargeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.SetServiceCharge(serviceID, input.Charge)
	})
}

// AddPart remembers the variant's current stock for the soft quantity check.
func (dc *DraftController) AddPart(c *gin.Context) {
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}
	var input PartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	variant, err := dc.backend.GetVariant(c.Request.Context(), input.VariantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Inventory item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	part := draft.Part{
		VariantID:    variant.ID,
		VariantName:  variant.VariantName,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.AddPart(serviceID, part, variant.Quantity)
	})
}

func (dc *DraftController) RemovePart(c *gin.Context) {
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid part index")
		return
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.RemovePart(serviceID, index)
	})
}

func (dc *DraftController) SetCharges(c *gin.Context) {
	var input ChargesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.SetCharges(input.LaborCharge, input.ExtraCharge, input.Remarks)
	})
}

func (dc *DraftController) Next(c *gin.Context) {
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.Next()
	})
}

func (dc *DraftController) Back(c *gin.Context) {
	dc.update(c, func(d draft.Draft) (draft.Draft, error) {
		return d.Back(), nil
	})
}

// Submit creates the bill. The draft is discarded on success and kept on failure so
// the user can retry. A client that goes away does not stop the chain.
func (dc *DraftController) Submit(c *gin.Context) {
	d, ok := dc.load(c)
	if !ok {
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result, err := dc.billing.Submit(ctx, d)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	if err := dc.drafts.Delete(ctx, ownerID(c), d.ID); err != nil {
		zap.L().Warn("failed to discard submitted draft", zap.String("draft_id", d.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, result)
}

func respondSubmitError(c *gin.Context, err error) {
	if ve, ok := draft.IsValidation(err); ok {
		respondValidation(c, ve)
		return
	}
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		utils.RespondWithError(c, http.StatusConflict, "Not enough stock: "+errorDetail(err))
	case errors.Is(err, store.ErrUnknownService), errors.Is(err, store.ErrUnknownVariant), errors.Is(err, store.ErrInvalidBill):
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid bill: "+errorDetail(err))
	default:
		zap.L().Error("bill submission failed", zap.Error(err))
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to create bill, please try again")
	}
}

// errorDetail strips the stage prefix and sentinel text from a submission error.
func errorDetail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
