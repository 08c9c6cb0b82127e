package services

import (
	"context"
	"testing"

	"carcool-backend/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupVehicle(t *testing.T) {
	ctx := context.Background()
	backend := storetest.New(t)
	customer, err := backend.UpsertCustomer(ctx, "Ravi", "9876543210")
	require.NoError(t, err)
	_, err = backend.UpsertCar(ctx, "MH12AB1234", "Swift", customer.ID)
	require.NoError(t, err)

	s := NewLookupService(backend)

	got, err := s.LookupVehicle(ctx, " mh12ab1234 ")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, "Ravi", got.CustomerName)
	assert.Equal(t, "9876543210", got.Mobile)
	assert.Equal(t, "Swift", got.CarModel)

	miss, err := s.LookupVehicle(ctx, "KA01ZZ0001")
	require.NoError(t, err)
	assert.False(t, miss.Found)

	empty, err := s.LookupVehicle(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, empty.Found)
}
