package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carcool-backend/models"
	"carcool-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PartLine struct {
	VariantID    uuid.UUID
	Quantity     int
	PricePerUnit decimal.Decimal
}

type ServiceLine struct {
	ServiceID uuid.UUID
	Charge    decimal.Decimal
	Parts     []PartLine
}

// BillInput is the payload of CreateFullBill.
type BillInput struct {
	CustomerID  uuid.UUID
	CarID       uuid.UUID
	Problems    []string
	Services    []ServiceLine
	LaborCharge decimal.Decimal
	ExtraCharge decimal.Decimal
	Remarks     string
}

type CreatedBill struct {
	ID        uuid.UUID       `json:"billId"`
	InvoiceNo string          `json:"invoiceNo"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

type BillFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

const invoiceNumberAttempts = 3

// CreateFullBill writes the bill with its problems, services and parts and decrements
// stock, all in one transaction. A part whose variant cannot cover the quantity rolls
// the whole bill back. The stored total is computed here, never taken from the caller.
func (s *GormBackend) CreateFullBill(ctx context.Context, in BillInput) (*CreatedBill, error) {
	if in.LaborCharge.IsNegative() || in.ExtraCharge.IsNegative() {
		return nil, fmt.Errorf("%w: negative charge", ErrInvalidBill)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	created, err := createFullBill(tx, in)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return created, nil
}

func createFullBill(tx *gorm.DB, in BillInput) (*CreatedBill, error) {
	var customer models.Customer
	if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
		return nil, fmt.Errorf("customer %s: %w", in.CustomerID, notFound(err))
	}
	var car models.Car
	if err := tx.First(&car, "id = ?", in.CarID).Error; err != nil {
		return nil, fmt.Errorf("car %s: %w", in.CarID, notFound(err))
	}

	now := time.Now()
	invoiceNo, err := nextInvoiceNumber(tx, now)
	if err != nil {
		return nil, err
	}

	bill := models.Bill{
		ID:            uuid.New(),
		InvoiceNo:     invoiceNo,
		CustomerID:    customer.ID,
		CarID:         car.ID,
		LaborCharge:   in.LaborCharge,
		ExtraCharge:   in.ExtraCharge,
		Remarks:       in.Remarks,
		InvoiceStatus: models.InvoicePending,
		CreatedAt:     now,
	}

	total := in.LaborCharge.Add(in.ExtraCharge)
	services := make([]models.BillService, 0, len(in.Services))
	for _, line := range in.Services {
		if line.Charge.IsNegative() {
			return nil, fmt.Errorf("%w: negative service charge", ErrInvalidBill)
		}
		var svc models.Service
		if err := tx.First(&svc, "id = ?", line.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownService, line.ServiceID)
			}
			return nil, err
		}

		serviceTotal := line.Charge
		parts := make([]models.BillServicePart, 0, len(line.Parts))
		for _, p := range line.Parts {
			if p.Quantity <= 0 || p.PricePerUnit.IsNegative() {
				return nil, fmt.Errorf("%w: part quantity and price", ErrInvalidBill)
			}
			variant, err := decrementStock(tx, p.VariantID, p.Quantity)
			if err != nil {
				return nil, err
			}
			serviceTotal = serviceTotal.Add(p.PricePerUnit.Mul(decimal.NewFromInt(int64(p.Quantity))))
			part := models.BillServicePart{
				InventoryVariantID: p.VariantID,
				VariantName:        variant.VariantName,
				Quantity:           p.Quantity,
				PricePerUnit:       p.PricePerUnit,
			}
			if variant.Product != nil {
				part.ProductName = variant.Product.Name
			}
			parts = append(parts, part)
		}

		total = total.Add(serviceTotal)
		services = append(services, models.BillService{
			BillID:        bill.ID,
			ServiceID:     svc.ID,
			ServiceCharge: line.Charge,
			ServiceTotal:  serviceTotal,
			Parts:         parts,
		})
	}
	bill.TotalAmount = total

	if err := tx.Omit("Customer", "Car", "Problems", "Services", "Files").Create(&bill).Error; err != nil {
		return nil, err
	}

	for _, name := range in.Problems {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if err := tx.Create(&models.Problem{BillID: bill.ID, ProblemName: name}).Error; err != nil {
			return nil, err
		}
	}

	for i := range services {
		if err := tx.Omit("Service", "Parts").Create(&services[i]).Error; err != nil {
			return nil, err
		}
		for j := range services[i].Parts {
			part := services[i].Parts[j]
			part.BillServiceID = services[i].ID
			if err := tx.Create(&part).Error; err != nil {
				return nil, err
			}
		}
	}

	return &CreatedBill{ID: bill.ID, InvoiceNo: bill.InvoiceNo, Total: total, CreatedAt: bill.CreatedAt}, nil
}

// decrementStock takes quantity units from a variant only if they are all there and
// returns the variant as it was before the update.
func decrementStock(tx *gorm.DB, variantID uuid.UUID, quantity int) (*models.InventoryVariant, error) {
	var variant models.InventoryVariant
	if err := tx.Preload("Product").First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variantID)
		}
		return nil, err
	}

	res := tx.Model(&models.InventoryVariant{}).
		Where("id = ? AND quantity >= ?", variantID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s (requested %d)", ErrInsufficientStock, variant.VariantName, quantity)
	}
	return &variant, nil
}

func nextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	for i := 0; i < invoiceNumberAttempts; i++ {
		candidate := utils.InvoiceNumber(now)
		var count int64
		if err := tx.Model(&models.Bill{}).Where("invoice_no = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("could not allocate a unique invoice number")
}

// BillBreakdown refetches everything the invoice needs from the stored bill.
func (s *GormBackend) BillBreakdown(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Car").
		Preload("Problems").
		Preload("Services.Service").
		Preload("Services.Parts").
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &bill, nil
}

// ListBills is the service history, newest first.
func (s *GormBackend) ListBills(ctx context.Context, f BillFilter) ([]models.Bill, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Bill{})
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	var bills []models.Bill
	err := q.Preload("Customer").
		Preload("Car").
		Preload("Services.Service").
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// RecordInvoiceFile stores the public PDF location and marks the invoice generated.
func (s *GormBackend) RecordInvoiceFile(ctx context.Context, billID uuid.UUID, url string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Bill{}).
			Where("id = ?", billID).
			Updates(map[string]interface{}{
				"invoice_status":   models.InvoiceGenerated,
				"invoice_attempts": gorm.Expr("invoice_attempts + 1"),
				"invoice_error":    "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&models.BillFile{BillID: billID, PdfURL: url}).Error
	})
}

func (s *GormBackend) MarkInvoiceFailed(ctx context.Context, billID uuid.UUID, reason string) error {
	res := s.db.WithContext(ctx).Model(&models.Bill{}).
		Where("id = ?", billID).
		Updates(map[string]interface{}{
			"invoice_status":   models.InvoiceFailed,
			"invoice_attempts": gorm.Expr("invoice_attempts + 1"),
			"invoice_error":    reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingInvoices lists bills still without a PDF, oldest first.
func (s *GormBackend) PendingInvoices(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Bill{}).
		Where("invoice_status IN ?", []string{models.InvoicePending, models.InvoiceFailed}).
		Where("created_at < ? AND invoice_attempts < ?", olderThan, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
