package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"carcool-backend/models"
	"carcool-backend/utils"

	"github.com/google/uuid"
)

func (s *GormBackend) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormBackend) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// EnsureUser creates the account when the email is unknown; an existing account is
// returned unchanged.
func (s *GormBackend) EnsureUser(ctx context.Context, email, password, name string) (*models.User, error) {
	existing, err := s.UserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := models.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
		Name:     name,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormBackend) UpdateUser(ctx context.Context, id uuid.UUID, name *string, password *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = strings.TrimSpace(*name)
	}
	if password != nil {
		hashed, err := utils.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.UserByID(ctx, id)
}

func (s *GormBackend) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}
