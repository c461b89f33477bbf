// internal/domain/cart/entity.go
package cart

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// LineItem is the storage-neutral representation of one cart line. Its ID is
// an opaque identifier generated when the line is created, distinct from the
// product, variant, and bundle references it carries.
type LineItem struct {
	ID               string    `json:"id"`
	ProductID        *uint     `json:"product_id,omitempty"`
	ProductVariantID *uint     `json:"product_variant_id,omitempty"`
	BundleID         *uint     `json:"bundle_id,omitempty"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	Price            int64     `json:"price"`          // Per-unit price after discounts, in cents
	OriginalPrice    int64     `json:"original_price"` // Per-unit price before discounts
	AppliedDiscounts []string  `json:"applied_discounts"`
	AddedAt          time.Time `json:"added_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SameReference reports whether this line refers to the same
// (product, variant, bundle) triple; matching lines are merged, never duplicated
func (li *LineItem) SameReference(productID, variantID, bundleID *uint) bool {
	return uintPtrEqual(li.ProductID, productID) &&
		uintPtrEqual(li.ProductVariantID, variantID) &&
		uintPtrEqual(li.BundleID, bundleID)
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CartLine is the database row backing a line item for authenticated users
type CartLine struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	ProductID        *uint          `gorm:"index" json:"product_id"`
	ProductVariantID *uint          `gorm:"index" json:"product_variant_id"`
	BundleID         *uint          `gorm:"index" json:"bundle_id"`
	Name             string         `gorm:"size:255" json:"name"`
	Quantity         int            `gorm:"not null;default:1" json:"quantity"`
	Price            int64          `gorm:"not null" json:"price"`
	OriginalPrice    int64          `gorm:"not null" json:"original_price"`
	AppliedDiscounts string         `gorm:"size:500" json:"applied_discounts"` // Comma-separated rule names
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartLine) TableName() string {
	return "cart_lines"
}

// toLineItem converts a database row to the storage-neutral form
func (cl *CartLine) toLineItem() LineItem {
	var discounts []string
	if cl.AppliedDiscounts != "" {
		discounts = strings.Split(cl.AppliedDiscounts, ",")
	}
	return LineItem{
		ID:               cl.ID,
		ProductID:        cl.ProductID,
		ProductVariantID: cl.ProductVariantID,
		BundleID:         cl.BundleID,
		Name:             cl.Name,
		Quantity:         cl.Quantity,
		Price:            cl.Price,
		OriginalPrice:    cl.OriginalPrice,
		AppliedDiscounts: discounts,
		AddedAt:          cl.CreatedAt,
		UpdatedAt:        cl.UpdatedAt,
	}
}

// fromLineItem converts a storage-neutral line to a database row for a user
func fromLineItem(userID uint, li LineItem) CartLine {
	return CartLine{
		ID:               li.ID,
		UserID:           userID,
		ProductID:        li.ProductID,
		ProductVariantID: li.ProductVariantID,
		BundleID:         li.BundleID,
		Name:             li.Name,
		Quantity:         li.Quantity,
		Price:            li.Price,
		OriginalPrice:    li.OriginalPrice,
		AppliedDiscounts: strings.Join(li.AppliedDiscounts, ","),
	}
}

// SessionCart is the JSON blob holding a guest cart in Redis
type SessionCart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int   `json:"item_count"`     // Number of distinct lines
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	SubTotal      int64 `json:"sub_total"`      // Sum of price * quantity, in cents
	Savings       int64 `json:"savings"`        // Sum of (original - price) * quantity
	TotalAmount   int64 `json:"total_amount"`
}
