package store

import (
	"context"
	"strings"

	"carcool-backend/models"

	"github.com/google/uuid"
)

var defaultServices = []string{
	"AC Gas Refill",
	"AC Service",
	"Compressor Repair",
	"Cooling Coil Cleaning",
	"Condenser Replacement",
	"Blower Motor Repair",
}

var defaultProblemTypes = []string{
	"No cooling",
	"Low cooling",
	"Noise from AC",
	"Water leakage",
	"Bad smell",
	"Blower not working",
}

func (s *GormBackend) ActiveServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("service_name ASC").Find(&services).Error
	return services, err
}

func (s *GormBackend) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := s.db.WithContext(ctx).Order("service_name ASC").Find(&services).Error
	return services, err
}

func (s *GormBackend) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &service, nil
}

func (s *GormBackend) CreateService(ctx context.Context, name string) (*models.Service, error) {
	service := models.Service{ServiceName: strings.TrimSpace(name), IsActive: true}
	if err := s.db.WithContext(ctx).Create(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// UpdateService renames or (de)activates a catalog service. Bills keep pointing at it.
func (s *GormBackend) UpdateService(ctx context.Context, id uuid.UUID, name *string, active *bool) (*models.Service, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["service_name"] = strings.TrimSpace(*name)
	}
	if active != nil {
		updates["is_active"] = *active
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetService(ctx, id)
}

func (s *GormBackend) ProblemTypes(ctx context.Context) ([]models.ProblemType, error) {
	var problems []models.ProblemType
	err := s.db.WithContext(ctx).Order("name ASC").Find(&problems).Error
	return problems, err
}

// SeedCatalog fills an empty service catalog and problem list with the shop defaults.
func (s *GormBackend) SeedCatalog(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		for _, name := range defaultServices {
			if err := db.Create(&models.Service{ServiceName: name, IsActive: true}).Error; err != nil {
				return err
			}
		}
	}

	if err := db.Model(&models.ProblemType{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		for _, name := range defaultProblemTypes {
			if err := db.Create(&models.ProblemType{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
