package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a catalog entry a bill line refers to, e.g. "Gas Refill".
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceName string    `gorm:"not null" json:"serviceName"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// ProblemType is a catalog complaint offered in step 2 of bill creation.
type ProblemType struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null" json:"name"`
}

func (p *ProblemType) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
