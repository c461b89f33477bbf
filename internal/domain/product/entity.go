// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents an item sold by the shop
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SKU               string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	Slug              string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description       string         `gorm:"type:text" json:"description"`
	Price             int64          `gorm:"not null" json:"price"` // Price in cents
	ComparePrice      int64          `json:"compare_price"`         // Original price for discounts
	CategoryID        uint           `gorm:"not null;index" json:"category_id"`
	ManufacturerID    *uint          `gorm:"index" json:"manufacturer_id"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	IsFeatured        bool           `gorm:"default:false" json:"is_featured"`
	TrackQuantity     bool           `gorm:"default:true" json:"track_quantity"`
	Quantity          int            `gorm:"default:0" json:"quantity"`
	LowStockThreshold int            `gorm:"default:5" json:"low_stock_threshold"`
	Tags              string         `gorm:"size:500" json:"tags"` // Comma-separated tags
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category     Category         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Manufacturer *Manufacturer    `gorm:"foreignKey:ManufacturerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"manufacturer,omitempty"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Manufacturer represents the maker of a product
type Manufacturer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Website     string         `gorm:"size:255" json:"website"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:ManufacturerID" json:"products,omitempty"`
}

// ProductVariant represents product variants (size, color, etc.)
type ProductVariant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	SKU       string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Price     int64          `json:"price"` // Override product price if set
	Quantity  int            `gorm:"default:0" json:"quantity"`
	Options   string         `gorm:"type:text" json:"options"` // JSON string for variant options
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (Category) TableName() string       { return "categories" }
func (Manufacturer) TableName() string   { return "manufacturers" }
func (ProductVariant) TableName() string { return "product_variants" }

// Business methods for Product

func (p *Product) IsInStock() bool {
	return p.Quantity > 0 || !p.TrackQuantity
}

func (p *Product) IsLowStock() bool {
	return p.TrackQuantity && p.Quantity <= p.LowStockThreshold
}

// EffectivePrice returns the unit price for a variant of this product, falling
// back to the product price when the variant has no override
func (p *Product) EffectivePrice(variant *ProductVariant) int64 {
	if variant != nil && variant.Price > 0 {
		return variant.Price
	}
	return p.Price
}

// AvailableQuantity returns the purchasable quantity for a variant of this product
func (p *Product) AvailableQuantity(variant *ProductVariant) int {
	if variant != nil {
		return variant.Quantity
	}
	return p.Quantity
}
