// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/shop-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page           int    `form:"page,default=1"`
	Limit          int    `form:"limit,default=20"`
	CategoryID     uint   `form:"category_id"`
	ManufacturerID uint   `form:"manufacturer_id"`
	Search         string `form:"search"`
	SortBy         string `form:"sort_by,default=created_at"`
	SortOrder      string `form:"sort_order,default=desc"`
	MinPrice       int64  `form:"min_price"`
	MaxPrice       int64  `form:"max_price"`
	IsActive       *bool  `form:"is_active"`
	IsFeatured     *bool  `form:"is_featured"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU               string `json:"sku" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	Price             int64  `json:"price" binding:"required"`
	ComparePrice      int64  `json:"compare_price"`
	CategoryID        uint   `json:"category_id" binding:"required"`
	ManufacturerID    *uint  `json:"manufacturer_id"`
	IsActive          bool   `json:"is_active"`
	IsFeatured        bool   `json:"is_featured"`
	TrackQuantity     bool   `json:"track_quantity"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	Tags              string `json:"tags"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Price             *int64  `json:"price"`
	ComparePrice      *int64  `json:"compare_price"`
	CategoryID        *uint   `json:"category_id"`
	ManufacturerID    *uint   `json:"manufacturer_id"`
	IsActive          *bool   `json:"is_active"`
	IsFeatured        *bool   `json:"is_featured"`
	TrackQuantity     *bool   `json:"track_quantity"`
	Quantity          *int    `json:"quantity"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	Tags              *string `json:"tags"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Manufacturer")

	// Apply filters
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.ManufacturerID > 0 {
		query = query.Where("manufacturer_id = ?", req.ManufacturerID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", search, search, search)
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting and pagination
	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("Manufacturer").
		Preload("Variants", "is_active = ?", true).
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("Manufacturer").
		Preload("Variants", "is_active = ?", true).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// GetActiveProduct retrieves an active product by ID, for cart and bundle use
func (s *Service) GetActiveProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found or inactive")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &product, nil
}

// GetActiveVariant retrieves an active variant belonging to a product
func (s *Service) GetActiveVariant(productID, variantID uint) (*ProductVariant, error) {
	var variant ProductVariant
	result := s.db.Where("id = ? AND product_id = ? AND is_active = ?",
		variantID, productID, true).First(&variant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product variant not found or inactive")
		}
		return nil, fmt.Errorf("failed to retrieve product variant: %w", result.Error)
	}
	return &variant, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	var existing Product
	if result := s.db.Where("sku = ?", req.SKU).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("product with SKU %s already exists", req.SKU)
	}

	product := Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Slug:              s.generateSlug(req.Name),
		Description:       req.Description,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		CategoryID:        req.CategoryID,
		ManufacturerID:    req.ManufacturerID,
		IsActive:          req.IsActive,
		IsFeatured:        req.IsFeatured,
		TrackQuantity:     req.TrackQuantity,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Tags:              req.Tags,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Load relationships
	s.db.Preload("Category").Preload("Manufacturer").First(&product, product.ID)

	return &product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = s.generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.ManufacturerID != nil {
		updates["manufacturer_id"] = *req.ManufacturerID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.TrackQuantity != nil {
		updates["track_quantity"] = *req.TrackQuantity
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Load updated product with relationships
	s.db.Preload("Category").Preload("Manufacturer").First(&product, product.ID)

	return &product, nil
}

// DeleteProduct soft deletes a product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// UpdateInventory updates product inventory
func (s *Service) UpdateInventory(productID uint, quantity int) error {
	result := s.db.Model(&Product{}).
		Where("id = ? AND track_quantity = ?", productID, true).
		Update("quantity", quantity)

	if result.Error != nil {
		return fmt.Errorf("failed to update inventory: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found or inventory tracking disabled")
	}
	return nil
}

// buildOrderClause builds the ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"updated_at": true,
		"quantity":   true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

// generateSlug generates a URL-friendly slug from a name
func (s *Service) generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, slug)
	return strings.Trim(slug, "-")
}
