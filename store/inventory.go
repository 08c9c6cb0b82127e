package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"carcool-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *GormBackend) ListProducts(ctx context.Context) ([]models.InventoryProduct, error) {
	var products []models.InventoryProduct
	err := s.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (s *GormBackend) CreateProduct(ctx context.Context, name string) (*models.InventoryProduct, error) {
	name = strings.TrimSpace(name)
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.InventoryProduct{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("product %q: %w", name, ErrDuplicate)
	}

	product := models.InventoryProduct{Name: name}
	if err := db.Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListVariants returns variants with their product, sorted by product then variant name.
func (s *GormBackend) ListVariants(ctx context.Context, productID *uuid.UUID) ([]models.InventoryVariant, error) {
	q := s.db.WithContext(ctx).Preload("Product")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}

	var variants []models.InventoryVariant
	if err := q.Find(&variants).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(variants, func(i, j int) bool {
		pi, pj := productName(variants[i]), productName(variants[j])
		if pi != pj {
			return pi < pj
		}
		return variants[i].VariantName < variants[j].VariantName
	})
	return variants, nil
}

func productName(v models.InventoryVariant) string {
	if v.Product == nil {
		return ""
	}
	return v.Product.Name
}

func (s *GormBackend) GetVariant(ctx context.Context, id uuid.UUID) (*models.InventoryVariant, error) {
	var variant models.InventoryVariant
	err := s.db.WithContext(ctx).Preload("Product").First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &variant, nil
}

func (s *GormBackend) CreateVariant(ctx context.Context, productID uuid.UUID, name string, quantity int) (*models.InventoryVariant, error) {
	if quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}
	db := s.db.WithContext(ctx)

	var product models.InventoryProduct
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, notFound(err))
	}

	variant := models.InventoryVariant{
		ProductID:   product.ID,
		VariantName: strings.TrimSpace(name),
		Quantity:    quantity,
	}
	if err := db.Omit("Product").Create(&variant).Error; err != nil {
		return nil, err
	}
	variant.Product = &product
	return &variant, nil
}

// UpdateVariantQuantity only ever touches the quantity.
func (s *GormBackend) UpdateVariantQuantity(ctx context.Context, id uuid.UUID, quantity int) (*models.InventoryVariant, error) {
	if quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}
	res := s.db.WithContext(ctx).Model(&models.InventoryVariant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetVariant(ctx, id)
}

// DeleteVariant is a hard delete.
func (s *GormBackend) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.InventoryVariant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// StockLevel buckets a quantity the way the inventory screen colours it.
func StockLevel(quantity int) string {
	switch {
	case quantity < 5:
		return "low"
	case quantity < 10:
		return "medium"
	default:
		return "ok"
	}
}

// ErrIsNotFound reports whether err is a missing row from any backend call.
func ErrIsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
