package services

import (
	"context"
	"fmt"
	"strings"

	"carcool-backend/draft"
	"carcool-backend/metrics"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	StatusCompleted      = "completed"
	StatusInvoicePending = "invoice_pending"
)

// StageError is a submission that stopped before a bill existed.
type StageError struct {
	Stage string // validate, catalog, customer, car, bill
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type SubmissionResult struct {
	BillID       uuid.UUID       `json:"billId"`
	InvoiceNo    string          `json:"invoiceNo"`
	Total        decimal.Decimal `json:"total"`
	PreviewTotal decimal.Decimal `json:"previewTotal"`
	PDFURL       string          `json:"pdfUrl,omitempty"`
	Status       string          `json:"status"`
	InvoiceError string          `json:"invoiceError,omitempty"`
}

type invoiceGenerator interface {
	Generate(ctx context.Context, billID uuid.UUID) (*GeneratedInvoice, error)
}

// BillingService turns a finished draft into a stored bill with its invoice.
type BillingService struct {
	backend  store.Backend
	invoices invoiceGenerator
	notifier Notifier
}

// NewBillingService accepts a nil notifier.
func NewBillingService(backend store.Backend, invoices invoiceGenerator, notifier Notifier) *BillingService {
	return &BillingService{backend: backend, invoices: invoices, notifier: notifier}
}

// Submit runs validate, customer upsert, car upsert, bill creation, invoice and
// notification in that order. Failures up to bill creation return a StageError and
// leave nothing behind. An invoice failure still returns the bill, with status
// invoice_pending.
func (s *BillingService) Submit(ctx context.Context, d draft.Draft) (*SubmissionResult, error) {
	if err := d.Validate(); err != nil {
		return nil, &StageError{Stage: "validate", Err: err}
	}

	catalog, err := s.problemCatalog(ctx)
	if err != nil {
		return nil, &StageError{Stage: "catalog", Err: err}
	}

	v := d.Vehicle
	customer, err := s.backend.UpsertCustomer(ctx, strings.TrimSpace(v.CustomerName), strings.TrimSpace(v.Mobile))
	if err != nil {
		return nil, &StageError{Stage: "customer", Err: err}
	}

	car, err := s.backend.UpsertCar(ctx, utils.NormalizeCarNumber(v.CarNumber), strings.TrimSpace(v.CarModel), customer.ID)
	if err != nil {
		return nil, &StageError{Stage: "car", Err: err}
	}

	created, err := s.backend.CreateFullBill(ctx, billInput(d, customer.ID, car.ID, catalog))
	if err != nil {
		return nil, &StageError{Stage: "bill", Err: err}
	}
	metrics.BillsCreated.Inc()

	result := &SubmissionResult{
		BillID:       created.ID,
		InvoiceNo:    created.InvoiceNo,
		Total:        created.Total,
		PreviewTotal: d.PreviewTotal(),
		Status:       StatusInvoicePending,
	}
	if !result.Total.Equal(result.PreviewTotal) {
		zap.L().Warn("bill total differs from preview",
			zap.String("bill_id", created.ID.String()),
			zap.String("total", created.Total.String()),
			zap.String("preview", result.PreviewTotal.String()))
	}

	generated, err := s.invoices.Generate(ctx, created.ID)
	if err != nil {
		result.InvoiceError = err.Error()
		return result, nil
	}
	result.PDFURL = generated.URL
	result.Status = StatusCompleted

	if s.notifier != nil {
		if err := s.notifier.NotifyInvoice(ctx, generated.Bill, generated.URL); err != nil {
			zap.L().Warn("invoice notification failed", zap.String("bill_id", created.ID.String()), zap.Error(err))
		}
	}
	return result, nil
}

func (s *BillingService) problemCatalog(ctx context.Context) (map[string]string, error) {
	problems, err := s.backend.ProblemTypes(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]string, len(problems))
	for _, p := range problems {
		catalog[p.ID.String()] = p.Name
	}
	return catalog, nil
}

func billInput(d draft.Draft, customerID, carID uuid.UUID, catalog map[string]string) store.BillInput {
	in := store.BillInput{
		CustomerID:  customerID,
		CarID:       carID,
		Problems:    d.ResolvedProblems(catalog),
		LaborCharge: d.LaborCharge,
		ExtraCharge: d.ExtraCharge,
		Remarks:     strings.TrimSpace(d.Remarks),
	}
	for _, sel := range d.Services {
		line := store.ServiceLine{ServiceID: sel.ServiceID, Charge: sel.Charge}
		for _, p := range sel.Parts {
			line.Parts = append(line.Parts, store.PartLine{
				VariantID:    p.VariantID,
				Quantity:     p.Quantity,
				PricePerUnit: p.PricePerUnit,
			})
		}
		in.Services = append(in.Services, line)
	}
	return in
}
