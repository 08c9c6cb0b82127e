// controllers/report.go
package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carcool-backend/models"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportController handles bill totals and exports
type ReportController struct {
	backend store.Backend
	now     func() time.Time
}

func NewReportController(backend store.Backend) *ReportController {
	return &ReportController{backend: backend, now: time.Now}
}

func (rc *ReportController) dateRange(c *gin.Context) (time.Time, time.Time, string, bool) {
	filter := strings.ToUpper(c.DefaultQuery("filter", utils.FilterThisMonth))
	start, end, err := utils.DateRange(filter, c.Query("month"), rc.now())
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, "", false
	}
	return start, end, filter, true
}

// GetTotals returns bill count, revenue and per-month totals for a date filter
func (rc *ReportController) GetTotals(c *gin.Context) {
	start, end, filter, ok := rc.dateRange(c)
	if !ok {
		return
	}

	totals, err := rc.backend.BillTotals(c.Request.Context(), start, end)
	if err != nil {
		zap.L().Error("failed to load bill totals", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load totals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filter":    filter,
		"from":      start,
		"to":        end,
		"billCount": totals.BillCount,
		"revenue":   totals.Revenue,
		"monthly":   totals.Monthly,
	})
}

// ExportBills streams the bills of a date filter as an xlsx workbook
func (rc *ReportController) ExportBills(c *gin.Context) {
	start, end, _, ok := rc.dateRange(c)
	if !ok {
		return
	}

	bills, err := rc.backend.BillsBetween(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load bills")
		return
	}

	buf, err := billsWorkbook(bills)
	if err != nil {
		zap.L().Error("failed to build bills workbook", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export bills")
		return
	}

	name := fmt.Sprintf("bills-%s-%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func billsWorkbook(bills []models.Bill) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bills"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Invoice No", "Date", "Customer", "Mobile", "Car Number", "Car Model",
		"Labor Charge", "Extra Charge", "Total", "Invoice Status",
	}
	for i, header := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%c1", 'A'+i), header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, b := range bills {
		row := rowIndex + 2
		var customer, mobile, carNumber, carModel string
		if b.Customer != nil {
			customer, mobile = b.Customer.Name, b.Customer.Mobile
		}
		if b.Car != nil {
			carNumber, carModel = b.Car.CarNumber, b.Car.CarModel
		}
		values := []interface{}{
			b.InvoiceNo,
			b.CreatedAt.Format("2006-01-02 15:04"),
			customer,
			mobile,
			carNumber,
			carModel,
			b.LaborCharge.InexactFloat64(),
			b.ExtraCharge.InexactFloat64(),
			b.TotalAmount.InexactFloat64(),
			b.InvoiceStatus,
		}
		for colIndex, value := range values {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+colIndex, row), value)
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 16)
	}
	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return &buf, nil
}
