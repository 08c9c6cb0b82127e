package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryProduct struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null;uniqueIndex" json:"name"`

	Variants []InventoryVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (p *InventoryProduct) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// InventoryVariant is a stocked version of a product. Quantity is decremented by
// bill creation only.
type InventoryVariant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	VariantName string    `gorm:"not null" json:"variantName"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`

	Product *InventoryProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (v *InventoryVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
