package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoicePending   = "pending"
	InvoiceGenerated = "generated"
	InvoiceFailed    = "failed"
)

type Bill struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo  string    `gorm:"uniqueIndex;not null" json:"invoiceNo"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	CarID      uuid.UUID `gorm:"type:uuid;index;not null" json:"carId"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	LaborCharge decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"laborCharge"`
	ExtraCharge decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"extraCharge"`
	Remarks     string          `gorm:"type:text" json:"remarks"`

	// Invoice artifact state; a bill may exist without a PDF.
	InvoiceStatus   string `gorm:"size:16;index;not null;default:'pending'" json:"invoiceStatus"`
	InvoiceAttempts int    `gorm:"not null;default:0" json:"invoiceAttempts"`
	InvoiceError    string `gorm:"type:text" json:"invoiceError,omitempty"`

	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Car      *Car          `gorm:"foreignKey:CarID" json:"car,omitempty"`
	Problems []Problem     `gorm:"foreignKey:BillID" json:"problems,omitempty"`
	Services []BillService `gorm:"foreignKey:BillID" json:"services,omitempty"`
	Files    []BillFile    `gorm:"foreignKey:BillID" json:"files,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Bill) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

type Problem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BillID      uuid.UUID `gorm:"type:uuid;index;not null" json:"billId"`
	ProblemName string    `gorm:"not null" json:"problemName"`
}

func (p *Problem) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// BillService is one selected catalog service on a bill. ServiceTotal is the charge
// plus every part line of the service.
type BillService struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BillID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"billId"`
	ServiceID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"serviceId"`
	ServiceCharge decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"serviceCharge"`
	ServiceTotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"serviceTotal"`

	Service *Service          `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Parts   []BillServicePart `gorm:"foreignKey:BillServiceID" json:"parts,omitempty"`
}

func (s *BillService) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// BillServicePart copies the product and variant names at billing time. The variant id
// is kept for reference only and is not a foreign key, so stock rows can be deleted
// without touching past bills.
type BillServicePart struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BillServiceID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"billServiceId"`
	InventoryVariantID uuid.UUID       `gorm:"type:uuid;index;not null" json:"inventoryVariantId"`
	ProductName        string          `gorm:"not null;default:''" json:"productName"`
	VariantName        string          `gorm:"not null;default:''" json:"variantName"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	PricePerUnit       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"pricePerUnit"`
}

func (p *BillServicePart) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type BillFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BillID    uuid.UUID `gorm:"type:uuid;index;not null" json:"billId"`
	PdfURL    string    `gorm:"not null" json:"pdfUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *BillFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
