package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TemplateInvoiceReady = "invoice_ready"

// DefaultInvoiceMessage is used until a shop stores its own template.
const DefaultInvoiceMessage = "Hi [CustomerName], thank you for visiting [BusinessName]. Your invoice [InvoiceNo] for Rs. [Total] is ready: [Link]"

type NotificationTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"type"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	IsActive bool      `gorm:"default:true" json:"isActive"`
}

func (t *NotificationTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
