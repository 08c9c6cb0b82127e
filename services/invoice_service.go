package services

import (
	"context"
	"fmt"

	"carcool-backend/invoice"
	"carcool-backend/metrics"
	"carcool-backend/models"
	"carcool-backend/storage"
	"carcool-backend/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceError is a failed invoice generation. The bill itself is kept.
type InvoiceError struct {
	Stage string // breakdown, render, upload, record
	Err   error
}

func (e *InvoiceError) Error() string {
	return fmt.Sprintf("invoice %s failed: %v", e.Stage, e.Err)
}

func (e *InvoiceError) Unwrap() error { return e.Err }

type GeneratedInvoice struct {
	Bill *models.Bill
	URL  string
}

// InvoiceService renders, uploads and records invoice PDFs.
type InvoiceService struct {
	backend      store.Backend
	storage      storage.ObjectStorage
	businessName string
}

func NewInvoiceService(backend store.Backend, objects storage.ObjectStorage, businessName string) *InvoiceService {
	return &InvoiceService{backend: backend, storage: objects, businessName: businessName}
}

// Generate rebuilds the invoice from the stored bill. On any failure the bill is
// marked failed with the attempt counted and the error is returned.
func (s *InvoiceService) Generate(ctx context.Context, billID uuid.UUID) (*GeneratedInvoice, error) {
	bill, err := s.backend.BillBreakdown(ctx, billID)
	if err != nil {
		return nil, s.fail(ctx, billID, "breakdown", err)
	}

	pdf, err := invoice.RenderPDF(invoice.NewView(s.businessName, bill))
	if err != nil {
		return nil, s.fail(ctx, billID, "render", err)
	}

	url, err := s.storage.Upload(ctx, invoice.ObjectPath(bill.InvoiceNo), "application/pdf", pdf)
	if err != nil {
		return nil, s.fail(ctx, billID, "upload", err)
	}

	if err := s.backend.RecordInvoiceFile(ctx, billID, url); err != nil {
		return nil, s.fail(ctx, billID, "record", err)
	}

	metrics.InvoicesGenerated.Inc()
	zap.L().Info("invoice generated",
		zap.String("bill_id", billID.String()),
		zap.String("invoice_no", bill.InvoiceNo),
		zap.String("url", url))
	return &GeneratedInvoice{Bill: bill, URL: url}, nil
}

func (s *InvoiceService) fail(ctx context.Context, billID uuid.UUID, stage string, cause error) error {
	metrics.InvoiceFailures.WithLabelValues(stage).Inc()
	invErr := &InvoiceError{Stage: stage, Err: cause}

	if stage != "breakdown" || !store.ErrIsNotFound(cause) {
		if err := s.backend.MarkInvoiceFailed(ctx, billID, invErr.Error()); err != nil {
			zap.L().Error("failed to record invoice failure",
				zap.String("bill_id", billID.String()), zap.Error(err))
		}
	}
	zap.L().Warn("invoice generation failed",
		zap.String("bill_id", billID.String()),
		zap.String("stage", stage),
		zap.Error(cause))
	return invErr
}

// Preview renders the invoice as HTML without touching storage.
func (s *InvoiceService) Preview(ctx context.Context, billID uuid.UUID) ([]byte, error) {
	bill, err := s.backend.BillBreakdown(ctx, billID)
	if err != nil {
		return nil, err
	}
	return invoice.RenderHTML(invoice.NewView(s.businessName, bill))
}
