package controllers

import (
	"errors"
	"net/http"
	"strings"

	"carcool-backend/models"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateProductInput struct {
	Name string `json:"name" binding:"required"`
}

type CreateVariantInput struct {
	ProductID   uuid.UUID `json:"productId" binding:"required"`
	VariantName string    `json:"variantName" binding:"required"`
	Quantity    int       `json:"quantity" binding:"min=0"`
}

// UpdateVariantInput only carries the quantity; names are fixed once created
type UpdateVariantInput struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

type StockItem struct {
	ID          uuid.UUID `json:"id"`
	VariantName string    `json:"variantName"`
	Quantity    int       `json:"quantity"`
	Level       string    `json:"level"`
}

type StockGroup struct {
	ProductID   uuid.UUID   `json:"productId"`
	ProductName string      `json:"productName"`
	Variants    []StockItem `json:"variants"`
}

type stockRow struct {
	Product  string `csv:"product"`
	Variant  string `csv:"variant"`
	Quantity int    `csv:"quantity"`
	Level    string `csv:"level"`
}

type InventoryController struct {
	backend store.Backend
}

func NewInventoryController(backend store.Backend) *InventoryController {
	return &InventoryController{backend: backend}
}

// groupVariants keeps the backend's product order.
func groupVariants(variants []models.InventoryVariant) []StockGroup {
	groups := []StockGroup{}
	index := map[uuid.UUID]int{}
	for _, v := range variants {
		i, ok := index[v.ProductID]
		if !ok {
			name := ""
			if v.Product != nil {
				name = v.Product.Name
			}
			groups = append(groups, StockGroup{ProductID: v.ProductID, ProductName: name, Variants: []StockItem{}})
			i = len(groups) - 1
			index[v.ProductID] = i
		}
		groups[i].Variants = append(groups[i].Variants, StockItem{
			ID:          v.ID,
			VariantName: v.VariantName,
			Quantity:    v.Quantity,
			Level:       store.StockLevel(v.Quantity),
		})
	}
	return groups
}

// GetInventory returns every variant grouped by product with its stock level
func (ic *InventoryController) GetInventory(c *gin.Context) {
	variants, err := ic.backend.ListVariants(c.Request.Context(), nil)
	if err != nil {
		zap.L().Error("failed to list inventory", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve inventory")
		return
	}
	c.JSON(http.StatusOK, groupVariants(variants))
}

func (ic *InventoryController) GetProducts(c *gin.Context) {
	products, err := ic.backend.ListProducts(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (ic *InventoryController) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Product name is required")
		return
	}

	product, err := ic.backend.CreateProduct(c.Request.Context(), input.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.RespondWithError(c, http.StatusConflict, "Product already exists")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (ic *InventoryController) GetProductVariants(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	variants, err := ic.backend.ListVariants(c.Request.Context(), &productID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve variants")
		return
	}
	c.JSON(http.StatusOK, variants)
}

func (ic *InventoryController) CreateVariant(c *gin.Context) {
	var input CreateVariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	variant, err := ic.backend.CreateVariant(c.Request.Context(), input.ProductID, input.VariantName, input.Quantity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Product not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create variant")
		}
		return
	}
	c.JSON(http.StatusCreated, variant)
}

func (ic *InventoryController) UpdateVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input UpdateVariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	variant, err := ic.backend.UpdateVariantQuantity(c.Request.Context(), id, *input.Quantity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Variant not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update variant")
		}
		return
	}
	c.JSON(http.StatusOK, variant)
}

// DeleteVariant cannot be undone
func (ic *InventoryController) DeleteVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := ic.backend.DeleteVariant(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Variant not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete variant")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted successfully"})
}

func (ic *InventoryController) ExportCSV(c *gin.Context) {
	variants, err := ic.backend.ListVariants(c.Request.Context(), nil)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve inventory")
		return
	}

	rows := make([]*stockRow, 0, len(variants))
	for _, v := range variants {
		row := &stockRow{Variant: v.VariantName, Quantity: v.Quantity, Level: store.StockLevel(v.Quantity)}
		if v.Product != nil {
			row.Product = v.Product.Name
		}
		rows = append(rows, row)
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export inventory")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
