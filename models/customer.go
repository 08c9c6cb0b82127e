package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"not null" json:"name"`
	Mobile string    `gorm:"size:15;not null;uniqueIndex" json:"mobile"`

	Cars  []Car  `gorm:"foreignKey:CustomerID" json:"cars,omitempty"`
	Bills []Bill `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type Car struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CarNumber  string    `gorm:"size:32;not null;uniqueIndex" json:"carNumber"`
	CarModel   string    `json:"carModel"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Car) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
