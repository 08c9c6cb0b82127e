// Package invoice turns a stored bill into the customer-facing invoice document.
package invoice

import (
	"strings"
	"time"

	"carcool-backend/models"

	"github.com/shopspring/decimal"
)

type PartLine struct {
	Name         string
	Quantity     int
	PricePerUnit decimal.Decimal
	Total        decimal.Decimal
}

type ServiceLine struct {
	Name     string
	Charge   decimal.Decimal
	Parts    []PartLine
	Subtotal decimal.Decimal
}

// View is everything printed on an invoice. It is always built from the stored bill.
type View struct {
	BusinessName string
	InvoiceNo    string
	Date         time.Time

	CustomerName string
	Mobile       string
	CarNumber    string
	CarModel     string

	Problems []string
	Services []ServiceLine

	LaborCharge decimal.Decimal
	ExtraCharge decimal.Decimal
	Remarks     string
	Total       decimal.Decimal
}

// NewView flattens a bill loaded with BillBreakdown.
func NewView(businessName string, b *models.Bill) View {
	v := View{
		BusinessName: businessName,
		InvoiceNo:    b.InvoiceNo,
		Date:         b.CreatedAt,
		LaborCharge:  b.LaborCharge,
		ExtraCharge:  b.ExtraCharge,
		Remarks:      strings.TrimSpace(b.Remarks),
		Total:        b.TotalAmount,
	}
	if b.Customer != nil {
		v.CustomerName = b.Customer.Name
		v.Mobile = b.Customer.Mobile
	}
	if b.Car != nil {
		v.CarNumber = b.Car.CarNumber
		v.CarModel = b.Car.CarModel
	}
	for _, p := range b.Problems {
		v.Problems = append(v.Problems, p.ProblemName)
	}
	for _, s := range b.Services {
		line := ServiceLine{Charge: s.ServiceCharge, Subtotal: s.ServiceTotal}
		if s.Service != nil {
			line.Name = s.Service.ServiceName
		}
		for _, p := range s.Parts {
			part := PartLine{
				Name:         p.VariantName,
				Quantity:     p.Quantity,
				PricePerUnit: p.PricePerUnit,
				Total:        p.PricePerUnit.Mul(decimal.NewFromInt(int64(p.Quantity))),
			}
			line.Parts = append(line.Parts, part)
		}
		v.Services = append(v.Services, line)
	}
	return v
}

// ObjectPath is where the PDF of an invoice is stored.
func ObjectPath(invoiceNo string) string {
	return "invoices/" + invoiceNo + ".pdf"
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
