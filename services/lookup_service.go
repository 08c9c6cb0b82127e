package services

import (
	"context"
	"errors"

	"carcool-backend/draft"
	"carcool-backend/store"
	"carcool-backend/utils"
)

type LookupService struct {
	backend store.Backend
}

func NewLookupService(backend store.Backend) *LookupService {
	return &LookupService{backend: backend}
}

// LookupVehicle finds the car's owner and model. An unknown car is a normal result
// with Found=false; only query failures are errors.
func (s *LookupService) LookupVehicle(ctx context.Context, carNumber string) (draft.LookupResult, error) {
	number := utils.NormalizeCarNumber(carNumber)
	if number == "" {
		return draft.LookupResult{}, nil
	}

	car, err := s.backend.VehicleByNumber(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return draft.LookupResult{}, nil
	}
	if err != nil {
		return draft.LookupResult{}, err
	}

	result := draft.LookupResult{Found: true, CarModel: car.CarModel}
	if car.Customer != nil {
		result.CustomerName = car.Customer.Name
		result.Mobile = car.Customer.Mobile
	}
	return result, nil
}
