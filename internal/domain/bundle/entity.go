// internal/domain/bundle/entity.go
package bundle

import (
	"time"

	"github.com/your-org/shop-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Bundle represents a named group of products sold together, priced either at
// a fixed price or at a discount off the sum of its parts
type Bundle struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	FixedPrice  *int64         `json:"fixed_price"` // Cents; nil means Discount applies instead
	Discount    int64          `gorm:"default:0" json:"discount"` // Cents off the sum of item prices
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []BundleItem `gorm:"foreignKey:BundleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// BundleItem represents one constituent product of a bundle
type BundleItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	BundleID         uint      `gorm:"not null;index" json:"bundle_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	ProductVariantID *uint     `gorm:"index" json:"product_variant_id,omitempty"`
	Quantity         int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName overrides
func (Bundle) TableName() string     { return "bundles" }
func (BundleItem) TableName() string { return "bundle_items" }

// BundleCalculation is the derived pricing for a bundle view; it is computed
// on demand and never persisted
type BundleCalculation struct {
	BundleID          uint    `json:"bundle_id"`
	IndividualTotal   int64   `json:"individual_total"` // Sum of item prices bought separately
	BundlePrice       int64   `json:"bundle_price"`
	Savings           int64   `json:"savings"`
	SavingsPercentage float64 `json:"savings_percentage"`
}

// pricedItem is a bundle item with its product price resolved
type pricedItem struct {
	item    BundleItem
	prod    *product.Product
	variant *product.ProductVariant
}
