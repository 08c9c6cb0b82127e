// controllers/bill.go
package controllers

import (
	"errors"
	"net/http"

	"carcool-backend/services"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BillController serves the service history and invoice documents
type BillController struct {
	backend  store.Backend
	invoices *services.InvoiceService
	notifier services.Notifier
}

// NewBillController accepts a nil notifier.
func NewBillController(backend store.Backend, invoices *services.InvoiceService, notifier services.Notifier) *BillController {
	return &BillController{backend: backend, invoices: invoices, notifier: notifier}
}

// GetBills lists bills newest first with customer, car and services
func (bc *BillController) GetBills(c *gin.Context) {
	from, err := timeQuery(c, "from")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date")
		return
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date")
		return
	}
	if to != nil {
		end := utils.EndOfDay(*to)
		to = &end
	}

	filter := store.BillFilter{
		From:   from,
		To:     to,
		Limit:  intQuery(c, "limit", 50, 200),
		Offset: intQuery(c, "offset", 0, 0),
	}
	bills, total, err := bc.backend.ListBills(c.Request.Context(), filter)
	if err != nil {
		zap.L().Error("failed to list bills", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bills")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bills":  bills,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetBill returns one bill with everything printed on its invoice
func (bc *BillController) GetBill(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	bill, err := bc.backend.BillBreakdown(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Bill not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.JSON(http.StatusOK, bill)
}

// GetInvoiceHTML renders the invoice for on-screen preview
func (bc *BillController) GetInvoiceHTML(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	html, err := bc.invoices.Preview(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Bill not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render invoice")
		}
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// RegenerateInvoice renders and uploads the PDF again
func (bc *BillController) RegenerateInvoice(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := bc.invoices.Generate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Bill not found")
		} else {
			utils.RespondWithError(c, http.StatusBadGateway, "Failed to generate invoice")
		}
		return
	}

	if bc.notifier != nil && c.Query("notify") == "true" {
		if err := bc.notifier.NotifyInvoice(c.Request.Context(), out.Bill, out.URL); err != nil {
			zap.L().Warn("invoice notification failed", zap.String("bill_id", id.String()), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"billId":    id,
		"invoiceNo": out.Bill.InvoiceNo,
		"pdfUrl":    out.URL,
	})
}

// GetBillNotifications lists the messages sent for a bill
func (bc *BillController) GetBillNotifications(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	logs, err := bc.backend.NotificationLogs(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, logs)
}
