// internal/domain/bundle/service.go
package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/product"
	"gorm.io/gorm"
)

// ErrBundleUnavailable is returned when a bundle or any of its items cannot be
// fetched; callers must treat the bundle as non-purchasable rather than show a
// zero price
var ErrBundleUnavailable = errors.New("bundle unavailable")

// ErrBundleMispriced is returned when a bundle's configured price exceeds the
// sum of its item prices; this is a data error and is never clamped
var ErrBundleMispriced = errors.New("bundle priced above sum of items")

// Service handles bundle business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new bundle service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// BundleCreateRequest represents bundle creation data
type BundleCreateRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	FixedPrice  *int64                    `json:"fixed_price"`
	Discount    int64                     `json:"discount"`
	IsActive    bool                      `json:"is_active"`
	Items       []BundleItemCreateRequest `json:"items" binding:"required,min=1,dive"`
}

// BundleItemCreateRequest represents one item of a bundle creation request
type BundleItemCreateRequest struct {
	ProductID        uint  `json:"product_id" binding:"required"`
	ProductVariantID *uint `json:"product_variant_id"`
	Quantity         int   `json:"quantity" binding:"required,min=1"`
}

// BundleUpdateRequest represents bundle update data
type BundleUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	FixedPrice  *int64  `json:"fixed_price"`
	Discount    *int64  `json:"discount"`
	IsActive    *bool   `json:"is_active"`
}

// BundleResponse represents a bundle with its calculated pricing
type BundleResponse struct {
	Bundle      Bundle            `json:"bundle"`
	Calculation BundleCalculation `json:"calculation"`
}

// GetBundles retrieves all active bundles with their items
func (s *Service) GetBundles() ([]Bundle, error) {
	var bundles []Bundle
	err := s.db.Preload("Items").Where("is_active = ?", true).
		Order("name ASC").Find(&bundles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bundles: %w", err)
	}
	return bundles, nil
}

// GetBundle retrieves a single bundle by ID
func (s *Service) GetBundle(id uint) (*Bundle, error) {
	var b Bundle
	result := s.db.Preload("Items").Where("id = ?", id).First(&b)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: bundle %d not found", ErrBundleUnavailable, id)
		}
		return nil, fmt.Errorf("failed to retrieve bundle: %w", result.Error)
	}
	return &b, nil
}

// CalculateBundlePrice computes the derived pricing for a bundle: the sum of
// its item prices bought separately, the bundle price, and the savings
func (s *Service) CalculateBundlePrice(bundleID uint) (*BundleCalculation, error) {
	var b Bundle
	result := s.db.Preload("Items").Where("id = ? AND is_active = ?", bundleID, true).First(&b)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: bundle %d not found or inactive", ErrBundleUnavailable, bundleID)
		}
		return nil, fmt.Errorf("failed to retrieve bundle: %w", result.Error)
	}

	priced, err := s.resolveItems(&b)
	if err != nil {
		return nil, err
	}

	return calculate(&b, priced)
}

// resolveItems loads the product and variant for every bundle item; any item
// that cannot be resolved makes the whole bundle unavailable
func (s *Service) resolveItems(b *Bundle) ([]pricedItem, error) {
	priced := make([]pricedItem, 0, len(b.Items))

	for _, item := range b.Items {
		var prod product.Product
		result := s.db.Where("id = ? AND is_active = ?", item.ProductID, true).First(&prod)
		if result.Error != nil {
			return nil, fmt.Errorf("%w: product %d for bundle %d", ErrBundleUnavailable, item.ProductID, b.ID)
		}

		var variant *product.ProductVariant
		if item.ProductVariantID != nil {
			var v product.ProductVariant
			result := s.db.Where("id = ? AND product_id = ? AND is_active = ?",
				*item.ProductVariantID, item.ProductID, true).First(&v)
			if result.Error != nil {
				return nil, fmt.Errorf("%w: variant %d for bundle %d", ErrBundleUnavailable, *item.ProductVariantID, b.ID)
			}
			variant = &v
		}

		priced = append(priced, pricedItem{item: item, prod: &prod, variant: variant})
	}

	return priced, nil
}

// calculate derives the bundle pricing from resolved items
func calculate(b *Bundle, items []pricedItem) (*BundleCalculation, error) {
	var individualTotal int64
	for _, pi := range items {
		individualTotal += pi.prod.EffectivePrice(pi.variant) * int64(pi.item.Quantity)
	}

	bundlePrice := individualTotal - b.Discount
	if b.FixedPrice != nil {
		bundlePrice = *b.FixedPrice
	}
	if bundlePrice < 0 {
		bundlePrice = 0
	}

	if bundlePrice > individualTotal {
		return nil, fmt.Errorf("%w: bundle %d price %d exceeds item total %d",
			ErrBundleMispriced, b.ID, bundlePrice, individualTotal)
	}

	savings := individualTotal - bundlePrice
	savingsPct := 0.0
	if individualTotal > 0 {
		savingsPct, _ = decimal.NewFromInt(savings).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(individualTotal)).
			Round(2).
			Float64()
	}

	return &BundleCalculation{
		BundleID:          b.ID,
		IndividualTotal:   individualTotal,
		BundlePrice:       bundlePrice,
		Savings:           savings,
		SavingsPercentage: savingsPct,
	}, nil
}

// CreateBundle creates a new bundle with its items
func (s *Service) CreateBundle(req *BundleCreateRequest) (*Bundle, error) {
	// Validate every referenced product before writing anything
	for _, item := range req.Items {
		var prod product.Product
		if result := s.db.Where("id = ?", item.ProductID).First(&prod); result.Error != nil {
			return nil, fmt.Errorf("product %d not found", item.ProductID)
		}
	}

	b := Bundle{
		Name:        req.Name,
		Slug:        generateSlug(req.Name),
		Description: req.Description,
		FixedPrice:  req.FixedPrice,
		Discount:    req.Discount,
		IsActive:    req.IsActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
		for _, item := range req.Items {
			bundleItem := BundleItem{
				BundleID:         b.ID,
				ProductID:        item.ProductID,
				ProductVariantID: item.ProductVariantID,
				Quantity:         item.Quantity,
			}
			if err := tx.Create(&bundleItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	s.db.Preload("Items").First(&b, b.ID)
	return &b, nil
}

// UpdateBundle updates an existing bundle
func (s *Service) UpdateBundle(id uint, req *BundleUpdateRequest) (*Bundle, error) {
	var b Bundle
	result := s.db.Where("id = ?", id).First(&b)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("bundle not found")
		}
		return nil, fmt.Errorf("failed to find bundle: %w", result.Error)
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.FixedPrice != nil {
		updates["fixed_price"] = *req.FixedPrice
	}
	if req.Discount != nil {
		updates["discount"] = *req.Discount
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&b).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update bundle: %w", err)
	}

	s.db.Preload("Items").First(&b, b.ID)
	return &b, nil
}

// DeleteBundle soft deletes a bundle
func (s *Service) DeleteBundle(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Bundle{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bundle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("bundle not found")
	}
	return nil
}

// generateSlug generates a URL-friendly slug from a name
func generateSlug(name string) string {
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
