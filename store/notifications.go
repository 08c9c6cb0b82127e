package store

import (
	"context"
	"errors"

	"carcool-backend/models"

	"github.com/google/uuid"
)

func (s *GormBackend) NotificationTemplates(ctx context.Context) ([]models.NotificationTemplate, error) {
	var templates []models.NotificationTemplate
	err := s.db.WithContext(ctx).Order("type ASC").Find(&templates).Error
	return templates, err
}

func (s *GormBackend) NotificationTemplate(ctx context.Context, kind string) (*models.NotificationTemplate, error) {
	var template models.NotificationTemplate
	if err := s.db.WithContext(ctx).Where("type = ?", kind).First(&template).Error; err != nil {
		return nil, notFound(err)
	}
	return &template, nil
}

// SaveNotificationTemplate creates the template of the given type on first save and
// patches it afterwards.
func (s *GormBackend) SaveNotificationTemplate(ctx context.Context, kind string, message *string, active *bool) (*models.NotificationTemplate, error) {
	template, err := s.NotificationTemplate(ctx, kind)
	if errors.Is(err, ErrNotFound) {
		template = &models.NotificationTemplate{Type: kind, Message: models.DefaultInvoiceMessage, IsActive: true}
	} else if err != nil {
		return nil, err
	}

	if message != nil {
		template.Message = *message
	}
	if active != nil {
		template.IsActive = *active
	}

	db := s.db.WithContext(ctx)
	if template.ID == uuid.Nil {
		if err := db.Create(template).Error; err != nil {
			return nil, err
		}
		// default:true would override an explicit false on insert
		if !template.IsActive {
			if err := db.Model(template).Update("is_active", false).Error; err != nil {
				return nil, err
			}
		}
		return template, nil
	}
	if err := db.Save(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

func (s *GormBackend) LogNotification(ctx context.Context, entry *models.NotificationLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormBackend) NotificationLogs(ctx context.Context, billID uuid.UUID) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := s.db.WithContext(ctx).Where("bill_id = ?", billID).Order("sent_at DESC").Find(&logs).Error
	return logs, err
}
