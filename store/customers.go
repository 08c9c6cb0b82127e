package store

import (
	"context"
	"strings"

	"carcool-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// UpsertCustomer creates the customer or refreshes the name of the one already holding
// the mobile number. The row is re-read by mobile so the returned id is always the
// stored one.
func (s *GormBackend) UpsertCustomer(ctx context.Context, name, mobile string) (*models.Customer, error) {
	db := s.db.WithContext(ctx)
	customer := models.Customer{Name: name, Mobile: mobile}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mobile"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&customer).Error
	if err != nil {
		return nil, err
	}

	var stored models.Customer
	if err := db.Where("mobile = ?", mobile).First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

// UpsertCar creates the car or moves an existing car number to the given model and owner.
func (s *GormBackend) UpsertCar(ctx context.Context, carNumber, carModel string, customerID uuid.UUID) (*models.Car, error) {
	db := s.db.WithContext(ctx)
	car := models.Car{CarNumber: carNumber, CarModel: carModel, CustomerID: customerID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "car_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"car_model", "customer_id", "updated_at"}),
	}).Create(&car).Error
	if err != nil {
		return nil, err
	}

	var stored models.Car
	if err := db.Where("car_number = ?", carNumber).First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

// VehicleByNumber returns the car with its owner. The number must already be normalized.
func (s *GormBackend) VehicleByNumber(ctx context.Context, carNumber string) (*models.Car, error) {
	var car models.Car
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("car_number = ?", carNumber).
		First(&car).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &car, nil
}

func (s *GormBackend) ListCustomers(ctx context.Context, search string, limit, offset int) ([]models.Customer, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR mobile LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	err := q.Preload("Cars").
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (s *GormBackend) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Preload("Cars").
		First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}
