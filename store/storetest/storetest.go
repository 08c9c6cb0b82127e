// Package storetest opens a migrated in-memory sqlite backend for tests.
package storetest

import (
	"testing"

	"carcool-backend/models"
	"carcool-backend/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(t *testing.T) *store.GormBackend {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, store.Migrate(db))
	return store.New(db)
}

// Service inserts an active catalog service.
func Service(t *testing.T, b *store.GormBackend, name string) models.Service {
	t.Helper()
	svc := models.Service{ServiceName: name, IsActive: true}
	require.NoError(t, b.DB().Create(&svc).Error)
	return svc
}

// Variant inserts a product with one variant holding quantity units.
func Variant(t *testing.T, b *store.GormBackend, product, variant string, quantity int) models.InventoryVariant {
	t.Helper()
	p := models.InventoryProduct{Name: product}
	require.NoError(t, b.DB().Create(&p).Error)
	v := models.InventoryVariant{ProductID: p.ID, VariantName: variant, Quantity: quantity}
	require.NoError(t, b.DB().Create(&v).Error)
	v.Product = &p
	return v
}

// Quantity reads a variant's current stock.
func Quantity(t *testing.T, b *store.GormBackend, variant models.InventoryVariant) int {
	t.Helper()
	var v models.InventoryVariant
	require.NoError(t, b.DB().First(&v, "id = ?", variant.ID).Error)
	return v.Quantity
}
